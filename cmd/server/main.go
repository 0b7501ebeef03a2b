package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/bundlegate/internal/auth"
	"github.com/iudanet/bundlegate/internal/config"
	"github.com/iudanet/bundlegate/internal/controlplane"
	"github.com/iudanet/bundlegate/internal/gate"
	"github.com/iudanet/bundlegate/internal/middleware"
	"github.com/iudanet/bundlegate/internal/session/boltdb"
	"github.com/iudanet/bundlegate/internal/storage/sqlite"
	"github.com/iudanet/bundlegate/internal/telegram"
	"github.com/iudanet/bundlegate/internal/token"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Общее хранилище реестра и учетных данных
	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	// Состояние диалогов администраторов
	sessions, err := boltdb.New(ctx, cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.Error("failed to close session store", slog.Any("error", err))
		}
	}()

	tgClient := telegram.NewClient(cfg.TelegramToken)

	me, err := tgClient.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to reach telegram: %w", err)
	}
	logger.Info("bot authorized", slog.String("username", me.Username))

	machine := controlplane.NewMachine(
		logger,
		auth.NewService(logger, store),
		token.NewAuthority(cfg.JWTSecret, cfg.JWTTTL),
		store,
		sessions,
		tgClient,
		controlplane.Config{
			PageSize: cfg.AppsPerPage,
			Location: cfg.Location,
			BotName:  me.Username,
		},
	)
	poller := telegram.NewPoller(logger, tgClient, machine)

	gateHandler := gate.NewHandler(logger, store, cfg.AppIDHeader, cfg.OKResponse, cfg.BlockedResponse)
	mux := http.NewServeMux()
	mux.Handle("GET /", gateHandler)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           middleware.Recovery(logger)(middleware.Logging(logger)(mux)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("gate listening", slog.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("gate server failed: %w", err)
		}
	}()

	go func() {
		logger.Info("control-plane polling started")
		if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("poller failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		stop()
		logger.Error("component failed, shutting down", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down gate server: %w", err)
	}

	return nil
}

func printVersion() {
	fmt.Printf("BundleGate Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
