// Package server initializes and runs the RecipeHub API server.
// It opens the database, applies migrations, selects the image store,
// wires repositories and services into the HTTP router, and handles
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/recipehub/internal/logging"
	"github.com/dmitrijs2005/recipehub/internal/server/auth"
	"github.com/dmitrijs2005/recipehub/internal/server/config"
	"github.com/dmitrijs2005/recipehub/internal/server/httpapi"
	"github.com/dmitrijs2005/recipehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipehub/internal/server/services"
	"github.com/dmitrijs2005/recipehub/internal/server/storage"
	"github.com/dmitrijs2005/recipehub/internal/server/validation"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout          = 5 * time.Second
	rateLimiterSweepTick = 5 * time.Minute
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
	limiter *httpapi.RateLimiter
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	rm, err := repomanager.NewPostgresRepositoryManager(c.SearchStrategy)
	if err != nil {
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	images, err := storage.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("image storage init error: %w", err)
	}

	v := validation.New()
	tokens := auth.NewTokenIssuer(c.SecretKey, c.TokenIssuer, c.TokenAudience, c.AccessTokenValidityDuration)

	us, err := services.NewUserService(db, rm, tokens, v)
	if err != nil {
		return nil, err
	}

	limiter := httpapi.NewRateLimiter(c.AuthRateLimit, c.AuthRateBurst)

	handler := httpapi.NewRouter(httpapi.RouterConfig{
		Users:         us,
		Recipes:       services.NewRecipeService(db, rm, images, v, logger, c.MaxImageSize),
		Search:        services.NewSearchService(db, rm, v),
		Categories:    services.NewCategoryService(db, rm, v),
		Ratings:       services.NewRatingService(db, rm, v),
		Comments:      services.NewCommentService(db, rm, v),
		Tokens:        tokens,
		Images:        images.Handler(),
		UploadsPrefix: c.UploadsURLPrefix,
		MaxImageSize:  c.MaxImageSize,
		Metrics:       httpapi.NewMetrics(),
		AuthLimiter:   limiter,
		Logger:        logger,
	})

	return &App{config: c, logger: logger, db: db, handler: handler, limiter: limiter}, nil
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
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.handler, app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or the server fails, then
// closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.limiter.StartCleanup(ctx, rateLimiterSweepTick)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
