package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pixel-news/config"
	"github.com/oksasatya/pixel-news/internal/container"
	pginfra "github.com/oksasatya/pixel-news/internal/infrastructure/postgres"
	"github.com/oksasatya/pixel-news/internal/infrastructure/search"
	"github.com/oksasatya/pixel-news/internal/interface/middleware"
	"github.com/oksasatya/pixel-news/internal/router"
	"github.com/oksasatya/pixel-news/pkg/helpers"
	"github.com/oksasatya/pixel-news/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	ctx := context.Background()
	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer c.Close()

	svc := router.BuildServices(c)
	if c.ES != nil {
		go prepareSearch(ctx, c, svc, logger)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID, "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(logger))
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, c, svc)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// prepareSearch creates the article index and backfills it from the approved listing.
func prepareSearch(ctx context.Context, c *container.Container, svc *router.Services, logger *logrus.Logger) {
	idx := search.NewArticleIndex(c.ES, c.Config.ESArticlesIndex)
	if err := idx.Ensure(ctx); err != nil {
		helpers.LogWarn(logger, "article index unavailable", err, logrus.Fields{"index": c.Config.ESArticlesIndex})
		return
	}
	n, err := svc.Articles.Reindex(ctx)
	if err != nil {
		helpers.LogWarn(logger, "article reindex failed", err, logrus.Fields{"indexed": n})
		return
	}
	helpers.LogInfo(logger, "article index ready", logrus.Fields{"indexed": n})
}
