package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/internal/handler"
	"catalog-service/internal/hierarchy"
	mid "catalog-service/internal/middleware"
	"catalog-service/internal/product"
	"catalog-service/internal/repository"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		log.Info("Starting catalog-service", cfg.LogFields()...)

		prometheus.InitMetrics(cfg)
		log.Info("Prometheus metrics initialized",
			zap.String("metrics_prefix", cfg.Metrics.Prefix))

		if err := database.InitDB(&cfg.DB, log); err != nil {
			return err
		}
		db := database.GetDB()
		defer database.Close(db)

		e := newServer(cfg, db, log)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}

// newServer wires the catalog components into an echo instance
func newServer(cfg *config.Config, db *gorm.DB, log *zap.Logger) *echo.Echo {
	repo := repository.NewCatalogRepository(db)
	categories := hierarchy.NewManager(repo, log, hierarchy.WithMaxDepth(cfg.Catalog.MaxDepth))
	products := product.NewService(repo, categories, log)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	tokens := jwtutil.NewJWTUtil(&cfg.JWT)
	if !cfg.JWT.Enabled {
		log.Warn("Authentication disabled, catalog writes are open")
	}
	handler.New(categories, products, db, cfg.Catalog.DefaultPageLimit).
		Register(e, mid.RequirePermission(tokens, cfg.JWT.Enabled))

	return e
}
