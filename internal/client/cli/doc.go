// Package cli provides the interactive pharmcart command-line client.
//
// It wires configuration, the local state database, the HTTP transport and
// the application services behind a REPL. Typical flow: restore a persisted
// session, then browse inventory, edit cart quantities and upload stock
// files until the user exits.
//
// Key features:
//   - Register / Login (with remember-me) / Logout / WhoAmI
//   - Inventory browsing with search, category filter and paging
//   - Cart add and quantity edits with a per-item pending marker
//   - Bulk CSV inventory upload
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
