package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/staffdir/staffdir/internal/app"
	"github.com/staffdir/staffdir/internal/audit"
	"github.com/staffdir/staffdir/internal/auth"
	"github.com/staffdir/staffdir/internal/authz"
	"github.com/staffdir/staffdir/internal/directory"
	"github.com/staffdir/staffdir/internal/observability"
	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/staff"
	"github.com/staffdir/staffdir/internal/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	codec := token.NewCodec([]byte(cfg.TokenSecret))
	recorder := audit.NewRecorder(logger)

	gate := authz.NewService(authz.NewRepository()).WithDenialCounter(metrics)
	authService := auth.NewService(auth.NewRepository(pool))
	staffService := staff.NewService(pool, gate, staff.NewRepository(), recorder)
	directoryService := directory.NewService(pool, gate, directory.NewRepository(), recorder)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Authenticator:    authz.Authenticator{Codec: codec, Logger: logger},
		AuthHandler:      auth.NewHandler(logger, authService, codec),
		UsersHandler:     staff.NewHandler(logger, staffService),
		RulesHandler:     authz.NewHandler(logger, pool, gate, authz.NewRepository(), recorder),
		DirectoryHandler: directory.NewHandler(logger, directoryService),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
	logger.Info("stopped")
}
