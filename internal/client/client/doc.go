// Package client is the transport layer of pharmcart.
//
// # Overview
//
// The package provides:
//  1. The Client interface describing the ordering API: Login, Signup,
//     ListInventory, AddCartItem, UpdateCartItem and UploadInventory.
//  2. HTTPClient, the HTTP/JSON implementation. It carries a base URL, an
//     optional token-bucket throttle, and a Credentials source read on every
//     request.
//  3. Decorate, the explicit request-decoration step that attaches
//     "Authorization: Bearer <token>" when a credential is active and strips
//     it otherwise.
//  4. InitDatabase and RunMigrations, which open and migrate the local
//     SQLite state database holding the durable session slot.
//
// # Error Handling
//
// Transport conditions are sentinel errors matched with errors.Is:
// ErrUnavailable (network failure, timeout, 5xx) and ErrUnauthorized (401,
// 403). Operations add their own sentinel on top: ErrInvalidCredentials,
// ErrRegistrationRejected, ErrFetchFailed, ErrMutationFailed and
// ErrUploadFailed. Any non-2xx answer is also available as *APIError.
// Nothing is retried.
package client
