package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/client/client"
	"github.com/dmitrijs2005/jobmarket/internal/client/config"
	"github.com/dmitrijs2005/jobmarket/internal/client/recent"
	"github.com/dmitrijs2005/jobmarket/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/jobmarket/internal/client/repositories/redisstore"
	"github.com/dmitrijs2005/jobmarket/internal/client/services"
	"github.com/dmitrijs2005/jobmarket/internal/logging"
	"github.com/redis/go-redis/v9"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	api         client.Client
	authService services.AuthService
	jobService  services.JobService

	// newStorage returns the recently-viewed storage for one visitor.
	newStorage func(visitor string) recent.Storage

	userName string
	reader   *bufio.Reader
	out      io.Writer

	modeMu sync.Mutex
	Mode   Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "development", "warn")

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	meta := metadata.NewSQLiteRepository(db, "")

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	app.newStorage = func(visitor string) recent.Storage { return meta.Namespace(visitor) }

	if c.RedisURL != "" {
		rc, err := redisstore.NewClient(ctx, c.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		app.redis = rc
		app.newStorage = func(visitor string) recent.Storage {
			return redisstore.NewRepository(rc, visitor, recent.Horizon)
		}
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	app.api = api
	app.authService = services.NewAuthService(api, meta)

	return app, nil
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), fmt.Sprintf("Switched to %s mode", mode))
	}
}

func (a *App) mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.Mode
}

func (a *App) isLoggedIn() bool {
	return a.jobService != nil
}

// startSession builds the per-visitor services after a successful login.
func (a *App) startSession(email string) {
	a.userName = email
	cache := recent.New(a.newStorage(email), recent.WithLogger(a.logger.With("module", "recent")))
	a.jobService = services.NewJobService(a.api, cache)
}

func (a *App) endSession() {
	a.userName = ""
	a.jobService = nil
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartOnlineStatusWatcher pings the server every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// Run starts the watcher and the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to jobmarket CLI (type 'help' for commands)")

	if a.config.OnlineCheckInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
