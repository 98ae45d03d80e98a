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

	"github.com/Skotchmaster/videotube/internal/assets"
	"github.com/Skotchmaster/videotube/internal/config"
	"github.com/Skotchmaster/videotube/internal/db"
	"github.com/Skotchmaster/videotube/internal/events"
	"github.com/Skotchmaster/videotube/internal/handlers"
	"github.com/Skotchmaster/videotube/internal/logging"
	"github.com/Skotchmaster/videotube/internal/middleware/auth"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/search"
	"github.com/Skotchmaster/videotube/internal/service"
	"github.com/Skotchmaster/videotube/internal/toggle"
	"github.com/Skotchmaster/videotube/internal/tokens"
	httpserver "github.com/Skotchmaster/videotube/internal/transport/http"
	"github.com/Skotchmaster/videotube/internal/views"
)

func main() {
	cfg := config.Load()
	cfg.MustValid()

	logger := logging.New(cfg.LogLevel)
	ctx := logging.IntoContext(context.Background(), logger)

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}
	if err := db.Migrate(ctx, gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	var kafka *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka = events.NewKafkaPublisher(cfg.KafkaBrokers)
		publisher = kafka
	}

	store, err := assets.NewS3Store(ctx, cfg.S3, assets.NewFFProbe(cfg.FFProbePath))
	if err != nil {
		log.Fatalf("asset store: %v", err)
	}

	r := repo.New(gdb, cfg.StoreTimeout)
	users := repo.NewUsers(r)
	videos := repo.NewVideos(r)
	edges := repo.NewEdges(r)
	composer := views.NewComposer(r)
	orch := assets.NewOrchestrator(store, publisher, cfg.AssetTimeout)
	tok := tokens.NewService(tokens.Config{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}, users)

	userSvc := &service.UserService{Users: users, Tokens: tok, Assets: orch, Views: composer, Events: publisher}
	videoSvc := &service.VideoService{Videos: videos, Views: composer, Assets: orch, Events: publisher}
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("search index: %v", err)
		}
		index := search.NewIndex(es, cfg.ESIndex)
		if err := index.Ensure(ctx); err != nil {
			log.Fatalf("search index: %v", err)
		}
		videoSvc.Index = index
	}

	uploads := handlers.Uploads{Dir: cfg.StagingDir}
	deps := &httpserver.Deps{
		Identity:     &auth.Identity{Tokens: tok, Principals: userSvc},
		UserHandler:  &handlers.UserHandler{Users: userSvc, Uploads: uploads, CookieSecure: cfg.CookieSecure},
		VideoHandler: &handlers.VideoHandler{Videos: videoSvc, Uploads: uploads},
		EngagementHandler: &handlers.EngagementHandler{
			Engagement: &service.EngagementService{Toggle: toggle.New(edges, edges), Users: users, Views: composer, Events: publisher},
			Dashboard:  &service.DashboardService{Views: composer},
		},
		PlaylistHandler: &handlers.PlaylistHandler{Playlists: &service.PlaylistService{
			Playlists: repo.NewPlaylists(r), Videos: videos, Users: users, Views: composer,
		}},
		PostHandler:   &handlers.PostHandler{Posts: &service.PostService{R: r, Users: users, Videos: videos, Views: composer}},
		HealthHandler: &handlers.HealthHandler{DB: gdb},
	}

	e := httpserver.New(httpserver.Options{
		Logger:         logger,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadMB:    cfg.MaxUploadMB,
		AuthRatePerMin: cfg.AuthRatePerMin,
		CSRF:           cfg.CSRFEnabled,
		CookieSecure:   cfg.CookieSecure,
	}, deps)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http server started", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if kafka != nil {
		if err := kafka.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
