package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/pharmcart/internal/client/client"
	"github.com/dmitrijs2005/pharmcart/internal/client/config"
	"github.com/dmitrijs2005/pharmcart/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pharmcart/internal/client/services"
	"github.com/dmitrijs2005/pharmcart/internal/client/session"
	"github.com/dmitrijs2005/pharmcart/internal/logging"
	"github.com/dmitrijs2005/pharmcart/internal/metrics"
)

type App struct {
	config    *config.Config
	db        *sql.DB
	api       client.Client
	sessions  *services.SessionManager
	inventory *services.InventoryComposer
	cart      *services.CartController
	cartOpts  []services.CartOption
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer
	now       func() time.Time
}

// NewApp opens the local state database and wires the transport and the
// services for cfg. Close releases what it opened.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, rec metrics.Recorder) (*App, error) {
	db, err := client.InitDatabase(ctx, cfg.StateDBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", cfg.StateDBPath, "error", err)
		return nil, err
	}

	sess := session.New()
	api, err := client.NewHTTPClient(cfg.APIBaseURL, sess,
		client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		client.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		client.WithRecorder(rec),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	durable := session.NewDurableSlot(metadata.NewSQLiteRepository(db))
	sessions := services.NewSessionManager(api, sess, durable, session.NewEphemeralSlot(), log)

	a := assemble(cfg, api, sessions, log, rec, bufio.NewReader(os.Stdin), os.Stdout)
	a.db = db
	return a, nil
}

// assemble builds an App around already constructed dependencies.
func assemble(cfg *config.Config, api client.Client, sessions *services.SessionManager, log logging.Logger, rec metrics.Recorder, reader *bufio.Reader, out io.Writer) *App {
	cartOpts := []services.CartOption{
		services.WithCartRecorder(rec),
		services.WithCartLogger(log),
	}
	if cfg.RollbackOnFailure {
		cartOpts = append(cartOpts, services.WithRollback(services.RollbackToConfirmed))
	}

	return &App{
		config:   cfg,
		api:      api,
		sessions: sessions,
		inventory: services.NewInventoryComposer(api,
			services.WithStaleTime(cfg.StaleTime),
			services.WithComposerLogger(log),
		),
		cart:     services.NewCartController(api, cartOpts...),
		cartOpts: cartOpts,
		log:      log,
		reader:   reader,
		out:      out,
		now:      time.Now,
	}
}

// Run restores a persisted session and serves the REPL until the user
// exits, input ends, or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	restored, err := a.sessions.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}

	fmt.Fprintln(a.out, "Welcome to pharmcart (type 'help' for commands)")
	if restored {
		fmt.Fprintln(a.out, "Session restored. Account tier unknown until next login.")
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

// Close detaches the cart and closes the state database.
func (a *App) Close() error {
	a.cart.Close()
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Session().Authenticated()
}

func (a *App) getStatus() string {
	sess := a.sessions.Session()
	if id, ok := sess.Identity(); ok {
		return fmt.Sprintf("(%s)", id.Email)
	}
	if sess.Authenticated() {
		return "(restored)"
	}
	return ""
}

// resetSessionState drops the cart lines and cached pages that belong to
// the previous credential.
func (a *App) resetSessionState() {
	a.cart.Close()
	a.cart = services.NewCartController(a.api, a.cartOpts...)
	a.inventory.Invalidate()
}
