// Package http exposes the job marketplace over a gin router: account
// endpoints, job discovery and employer posting mutations.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/logging"
	"github.com/dmitrijs2005/jobmarket/internal/server/access"
	"github.com/dmitrijs2005/jobmarket/internal/server/auth"
	"github.com/dmitrijs2005/jobmarket/internal/server/discovery"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Register(ctx context.Context, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.Token, error)
}

type Authorizer interface {
	Authorize(token string, req access.Requirement) (*access.Subject, error)
}

// Discovery is the read side of discovery.Index.
type Discovery interface {
	Search(ctx context.Context, f discovery.Filter, s discovery.Sort, p discovery.Page) ([]discovery.Hit, error)
	Get(ctx context.Context, id string) (*models.Posting, error)
}

// Mutations announces posting changes to the index feed.
type Mutations interface {
	PublishUpsert(ctx context.Context, p *models.Posting) error
	PublishRemove(ctx context.Context, id string) error
}

type Server struct {
	address         string
	engine          *gin.Engine
	logger          logging.Logger
	shutdownTimeout time.Duration
}

type handler struct {
	users     UserService
	gateway   Authorizer
	discovery Discovery
	mutations Mutations
	logger    logging.Logger
	now       func() time.Time
}

func NewServer(address string, l logging.Logger, users UserService, gateway Authorizer, d Discovery, m Mutations) *Server {
	logger := l.With("module", "http_server")
	h := &handler{
		users:     users,
		gateway:   gateway,
		discovery: d,
		mutations: m,
		logger:    logger,
		now:       time.Now,
	}
	return &Server{
		address:         address,
		engine:          newRouter(h),
		logger:          logger,
		shutdownTimeout: 10 * time.Second,
	}
}

func newRouter(h *handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(h.logger))

	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	a := r.Group("/api/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/refresh", h.refresh)

	jobs := r.Group("/api/jobs")
	jobs.GET("", h.authenticate(""), h.searchJobs)
	jobs.GET("/:id", h.authenticate(""), h.getJob)
	jobs.POST("", h.authenticate(models.RoleEmployer), h.createJob)
	jobs.PUT("/:id", h.authenticate(""), h.updateJob)
	jobs.DELETE("/:id", h.authenticate(""), h.deleteJob)

	return r
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
