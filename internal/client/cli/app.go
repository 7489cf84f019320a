package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/attachments"
	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/compositor"
	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/client/conversations"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/preview"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophchat/internal/client/session"
	"github.com/dmitrijs2005/gophchat/internal/filex"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

const dbFileName = "gophchat.db"

// conversationLoader fills the conversation store for the signed-in user and
// delivers the messages sent from it.
type conversationLoader interface {
	Load(ctx context.Context, self models.User) error
	Deliver(ctx context.Context, conversationID string, msg models.Message) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	session    *session.Manager
	store      *conversations.Store
	loader     conversationLoader
	previews   *preview.Registry
	stager     *attachments.Stager
	draft      *compositor.Draft
	compositor *compositor.Compositor

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

// NewApp opens the local database under the data directory and wires the
// REST client, or the demo backend when cfg.Demo is set.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	dir, err := filex.EnsureSubdDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	tokens := session.NewTokenStore(metadata.NewSQLiteRepository(db))

	var app *App
	if cfg.Demo {
		app = newApp(cfg, logger, newDemoBackend(), tokens, nil, os.Stdin, os.Stdout)
	} else {
		api := client.NewRESTClient(cfg.ServerBaseURL, logger,
			client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
			client.WithRateLimit(cfg.RequestsPerSecond),
		)
		app = newApp(cfg, logger, api, tokens, api, os.Stdin, os.Stdout)
		api.SetTokenSource(app.session)
	}
	app.db = db
	return app, nil
}

// newApp assembles the components. A nil source selects the demo conversations.
func newApp(cfg *config.Config, logger logging.Logger, backend session.Backend, tokens session.TokenStore,
	source conversations.Source, in io.Reader, out io.Writer) *App {
	sm := session.NewManager(backend, tokens, logger)
	store := conversations.NewStore(sm, logger)
	previews := preview.NewRegistry()
	stager := attachments.NewStager(previews, logger)
	draft := &compositor.Draft{}

	var loader conversationLoader
	if source == nil {
		loader = demoLoader{store: store}
	} else {
		loader = conversations.NewLoader(source, store, logger)
	}

	return &App{
		config:     cfg,
		logger:     logger,
		session:    sm,
		store:      store,
		loader:     loader,
		previews:   previews,
		stager:     stager,
		draft:      draft,
		compositor: compositor.New(stager, store, draft, logger),
		reader:     bufio.NewReader(in),
		out:        out,
		now:        time.Now,
	}
}

// Run restores the previous session, if any, and serves the REPL until the
// user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	fmt.Fprintln(a.out, "Welcome to gophchat (type 'help' for commands)")

	if err := a.session.Bootstrap(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
		switch {
		case errors.Is(err, session.ErrNotAuthenticated):
			fmt.Fprintln(a.out, "Your session has expired, please log in again.")
		case errors.Is(err, session.ErrStaleSession):
			// superseded by a newer login or logout
		default:
			fmt.Fprintln(a.out, "Could not restore the session:", err)
		}
	}
	if a.isLoggedIn() {
		a.greet()
		a.refresh(ctx)
	}

	runREPL(ctx, a, a.status, a.reader)
}

// Close releases every preview and the local database.
func (a *App) Close(ctx context.Context) {
	a.stager.Clear()
	a.store.Reset()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error(ctx, "failed to close database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Authenticated()
}

func (a *App) status() string {
	u, ok := a.session.User()
	if !ok {
		return ""
	}
	s := u.Username
	if c, ok := a.store.Active(); ok {
		s += " @ " + c.Name
	}
	if n := a.stager.Len(); n > 0 {
		s += fmt.Sprintf(" +%d", n)
	}
	return " (" + s + ")"
}

// refresh reloads the conversation list for the current user.
func (a *App) refresh(ctx context.Context) {
	u, ok := a.session.User()
	if !ok {
		return
	}
	if err := a.loader.Load(ctx, u); err != nil {
		a.logger.Error(ctx, "failed to load conversations", "error", err)
		fmt.Fprintln(a.out, "Could not load conversations:", err)
	}
}
