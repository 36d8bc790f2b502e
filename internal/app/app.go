package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/classifieds/internal/config"
	"github.com/simp-lee/classifieds/internal/domain"
	"github.com/simp-lee/classifieds/internal/middleware"
	"github.com/simp-lee/classifieds/internal/module/listing"
	"github.com/simp-lee/classifieds/internal/module/review"
	"github.com/simp-lee/classifieds/internal/module/user"
)

const shutdownTimeout = 5 * time.Second

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// models lists every table the board owns, in migration order.
func models() []any {
	return []any{&domain.User{}, &domain.Listing{}, &domain.Favorite{}, &domain.Review{}}
}

// New wires a ready-to-run App from cfg: logger, database, schema, the
// listing, review and user modules, and the middleware chain.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		closeDatabase(db, log.Logger)
	}()

	// Release deployments manage their schema out of band.
	if cfg.Server.Mode != gin.ReleaseMode {
		if err := db.AutoMigrate(models()...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	modules := buildModules(db, &cfg.Listing)

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(middlewareChain(&cfg.Server, log.Logger)...)

	if err := RegisterRoutes(engine, &RouteDeps{Modules: modules, DB: db}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// buildModules performs the manual dependency injection
// repository → service → handler → module for every feature area.
func buildModules(db *gorm.DB, lc *config.ListingConfig) []Module {
	userRepo := user.NewUserRepository(db)
	listingRepo := listing.NewListingRepository(db)
	reviewRepo := review.NewReviewRepository(db)

	listingSvc := listing.NewListingService(listingRepo, userRepo, domain.SystemClock{}, listing.Options{
		PageSize:         lc.PageSize,
		PromotedEvery:    lc.PromotedEvery,
		AllCategories:    lc.AllCategories,
		DailyPostLimit:   lc.DailyPostLimit,
		PlaceholderImage: lc.PlaceholderImage,
	})
	userSvc := user.NewUserService(userRepo, listingRepo)
	reviewSvc := review.NewReviewService(reviewRepo, listingRepo, userRepo)

	return []Module{
		listing.NewModule(listing.NewListingHandler(listingSvc)),
		review.NewModule(review.NewReviewHandler(reviewSvc)),
		user.NewModule(user.NewUserHandler(userSvc)),
	}
}

// middlewareChain returns the global middleware in execution order. The
// timeout and rate limit stages are only present when configured.
func middlewareChain(sc *config.ServerConfig, log *slog.Logger) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		middleware.Recovery(log),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{TrustUpstream: false}),
		middleware.Logger(log),
	}
	if d := requestTimeout(sc.Timeout); d > 0 {
		chain = append(chain, middleware.Timeout(d))
	}
	if sc.RateLimit.Enabled {
		chain = append(chain, middleware.RateLimit(sc.RateLimit.RPS, sc.RateLimit.Burst))
	}
	return chain
}

// requestTimeout parses server.timeout. Blank or invalid values disable the
// deadline; Load has already rejected invalid ones.
func requestTimeout(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func closeDatabase(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", slog.Any("error", err))
		return
	}
	log.Info("database connection closed")
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts the server down with a
// bounded grace period and releases the database and logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if a.db != nil {
		closeDatabase(a.db, log)
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}
