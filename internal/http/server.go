// Package http exposes the dashboard and the category/transaction API over gin.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"finance-dashboard/internal/cache"
	"finance-dashboard/internal/core"
	"finance-dashboard/internal/dashboard"
	"finance-dashboard/internal/events"
	applog "finance-dashboard/internal/log"
	"finance-dashboard/internal/store"
)

// DefaultCacheTTL matches how long the dashboard payload may be served stale.
const DefaultCacheTTL = 5 * time.Minute

// Repository is the storage the handlers use.
type Repository interface {
	dashboard.Reader
	Ping(ctx context.Context) error
	Driver() string

	CreateTransaction(ctx context.Context, t core.Transaction) (core.TransactionWithCategory, error)
	GetTransaction(ctx context.Context, id int64) (core.TransactionWithCategory, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.TransactionWithCategory, error)
	DeleteTransaction(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	DeleteCategory(ctx context.Context, id int64, policy store.DeletePolicy) (int64, error)
}

// Deps wires the server to its collaborators. Cache and Publisher are
// optional.
type Deps struct {
	Repo      Repository
	Cache     cache.Cache
	CacheTTL  time.Duration
	Publisher events.Publisher
	Logger    *applog.Logger
}

type Server struct {
	http.Server

	repo      Repository
	dashboard *dashboard.Aggregator
	cache     cache.Cache
	cacheTTL  time.Duration
	events    events.Publisher
	logger    *applog.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	c := deps.Cache
	if c == nil {
		c = cache.NewMemoryCache(cache.DefaultMemorySize)
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	pub := deps.Publisher
	if pub == nil {
		pub = events.NopPublisher{}
	}

	s := &Server{
		repo:      deps.Repo,
		dashboard: dashboard.NewAggregator(deps.Repo, deps.Logger),
		cache:     c,
		cacheTTL:  ttl,
		events:    pub,
		logger:    logger,
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID())
	r.Use(accessLog(s.logger))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", headerRequestID},
		ExposeHeaders:    []string{"Content-Length", headerRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthCheck)
	r.GET("/", s.getDashboard)

	api := r.Group("/api")
	api.GET("/dashboard", s.getDashboard)

	api.GET("/transactions", s.getTransactions)
	api.POST("/transactions", s.addTransaction)
	api.GET("/transactions/export", s.exportTransactions)
	api.GET("/transactions/:id", s.getTransaction)
	api.PUT("/transactions/:id", s.updateTransaction)
	api.DELETE("/transactions/:id", s.deleteTransaction)

	api.GET("/categories", s.getCategories)
	api.POST("/categories", s.addCategory)
	api.DELETE("/categories/:id", s.deleteCategory)

	return r
}

// invalidate drops every cached payload derived from storage.
func (s *Server) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyDashboard, cache.KeyTransactions); err != nil {
		s.logger.WarnContext(ctx, "Cache invalidation failed", applog.FieldError, err)
	}
}
