// Package server wires the jobmarket components together: the posting store
// chosen by configuration, the token service and access gateway, the
// discovery index with its event feed, account services and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dmitrijs2005/jobmarket/internal/logging"
	"github.com/dmitrijs2005/jobmarket/internal/server/access"
	"github.com/dmitrijs2005/jobmarket/internal/server/auth"
	"github.com/dmitrijs2005/jobmarket/internal/server/config"
	"github.com/dmitrijs2005/jobmarket/internal/server/discovery"
	"github.com/dmitrijs2005/jobmarket/internal/server/events"
	httpserver "github.com/dmitrijs2005/jobmarket/internal/server/http"
	"github.com/dmitrijs2005/jobmarket/internal/server/repositories/mongopostings"
	"github.com/dmitrijs2005/jobmarket/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/jobmarket/internal/server/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	mongo   *mongo.Client
	bus     *gochannel.GoChannel
	index   *discovery.Index
	indexer *events.Indexer
	server  *httpserver.Server
}

// NewApp connects to the configured stores, applies migrations and builds the
// HTTP server. Accounts always live in PostgreSQL; Store selects only where
// the discovery projection is kept.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.Environment, c.LogLevel)

	app := &App{config: c, logger: logger}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := app.openStore(ctx, m)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	tokens := auth.NewTokenService(c.AccessSecret, c.RefreshSecret, c.AccessTokenTTL, c.RefreshTokenTTL)
	gateway := access.NewGateway(tokens)

	app.index = discovery.NewIndex(store,
		discovery.WithSearchTimeout(c.SearchTimeout),
		discovery.WithLogger(logger.With("module", "discovery")),
	)

	app.bus = events.NewGoChannel(logger, 0)
	app.indexer = events.NewIndexer(app.bus, app.index, logger.With("module", "indexer"))
	publisher := events.NewPublisher(app.bus)

	users := services.NewUserService(db, m, tokens)

	app.server = httpserver.NewServer(c.EndpointAddrHTTP, logger, users, gateway, app.index, publisher)

	return app, nil
}

func (app *App) openStore(ctx context.Context, m repomanager.RepositoryManager) (discovery.Store, error) {
	switch app.config.Store {
	case config.StorePostgres:
		return m.Postings(app.db), nil

	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(app.config.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		app.mongo = client
		if err := client.Ping(ctx, nil); err != nil {
			return nil, fmt.Errorf("mongo ping: %w", err)
		}
		repo := mongopostings.NewMongoRepository(client.Database(app.config.MongoDatabase).Collection(mongopostings.CollectionName))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return repo, nil

	case config.StoreMemory:
		app.logger.Warn(ctx, "discovery index kept in memory, postings are lost on restart")
		return discovery.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store %q", app.config.Store)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run starts the indexer and the HTTP server and blocks until a signal or a
// fatal server error, then releases every resource.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.Store)

	app.initSignalHandler(cancelFunc)

	indexerDone, err := app.indexer.Start(ctx)
	if err != nil {
		app.Close(ctx)
		return err
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	// ctx is cancelled by now; the subscription ends with it
	cancelFunc()
	<-indexerDone
	closeErr := app.Close(context.Background())

	app.logger.Info(ctx, "App stopped")
	return closeErr
}

// Close releases the bus and the database connections. Safe to call on a
// partially built App.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if app.bus != nil {
		errs = append(errs, app.bus.Close())
	}
	if app.mongo != nil {
		errs = append(errs, app.mongo.Disconnect(ctx))
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}
