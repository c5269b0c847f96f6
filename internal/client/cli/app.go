package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lingopal/lingopal-client/internal/client/api"
	"github.com/lingopal/lingopal-client/internal/client/boot"
	"github.com/lingopal/lingopal-client/internal/client/config"
	"github.com/lingopal/lingopal-client/internal/client/credentials"
	"github.com/lingopal/lingopal-client/internal/client/nav"
	"github.com/lingopal/lingopal-client/internal/client/storage"
	"github.com/lingopal/lingopal-client/internal/filex"
	"github.com/lingopal/lingopal-client/internal/logging"

	_ "modernc.org/sqlite"
)

// App is the interactive client. It owns the full wiring: storage
// backends, credential store, API clients, boot sequencer, connectivity
// watcher, and the deferred action queue bridging boot and the REPL.
type App struct {
	config  *config.Config
	creds   *credentials.Store
	api     *api.Client
	seq     *boot.Sequencer
	pending *nav.Queue
	watcher *boot.ConnectivityWatcher
	log     logging.Logger
	reader  *bufio.Reader
	db      *sql.DB

	mu     sync.Mutex
	result *boot.Result
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := filex.EnsureDir(c.DataDir); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := storage.OpenGeneral(ctx, filepath.Join(c.DataDir, "settings.db"))
	if err != nil {
		log.Error(ctx, "error initializing settings database", "err", err)
		return nil, err
	}

	backends := storage.NewSet(ctx, c.DataDir, db, log)

	deviceID := api.DeviceID(ctx, backends.General)
	refresher := api.NewRefreshClient(c.BackendBaseURL, c.RequestTimeout, deviceID, api.SystemLocale(), log)
	creds := credentials.NewStore(backends, refresher, log)
	apiClient := api.NewClient(c.BackendBaseURL, c.RequestTimeout, creds, log)

	app := &App{
		config:  c,
		creds:   creds,
		api:     apiClient,
		seq:     boot.NewSequencer(creds, apiClient, backends.General, log),
		pending: nav.NewQueue(),
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		db:      db,
	}
	app.watcher = boot.NewConnectivityWatcher(apiClient, c.OnlineCheckInterval, app.onConnChange, log)
	return app, nil
}

// Run executes the boot sequence and then hands control to the REPL. It
// blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	go a.watcher.Run(ctx)

	// The boot result lands on the deferred queue; the REPL flushes it
	// once the prompt is ready to display output.
	a.seq.Run(ctx, func(r boot.Result) {
		a.mu.Lock()
		a.result = &r
		a.mu.Unlock()
		a.pending.Enqueue(func() { printRoute(r) })
	})

	a.Root(ctx)
}

func (a *App) onConnChange(state boot.ConnState) {
	if state == boot.ConnOffline {
		printlnFn("Backend unreachable, working offline")
	} else {
		printlnFn("Backend reachable")
	}
}

func (a *App) isLoggedIn() bool {
	return a.creds.AccessToken() != ""
}

func (a *App) bootResult() *boot.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

func printRoute(r boot.Result) {
	if r.Authenticated && r.Profile != nil {
		printlnFn(fmt.Sprintf("Welcome back, %s", r.Profile.Name))
	}
	printlnFn(fmt.Sprintf("Initial screen: %s%s", r.Route.Name, routeParams(r.Route)))
}

func routeParams(r boot.Route) string {
	switch {
	case r.SkipToAuth:
		return " (skip to sign-in)"
	case r.Tab != "":
		return fmt.Sprintf(" (tab %s)", r.Tab)
	default:
		return ""
	}
}
