// Команда shortener запускает HTTP и, по желанию, gRPC сервер коротких ссылок.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tempizhere/surl/internal/analytics"
	"github.com/tempizhere/surl/internal/app"
	"github.com/tempizhere/surl/internal/auth"
	"github.com/tempizhere/surl/internal/clientip"
	"github.com/tempizhere/surl/internal/config"
	grpcserver "github.com/tempizhere/surl/internal/grpc"
	"github.com/tempizhere/surl/internal/log"
	"github.com/tempizhere/surl/internal/service"
	"github.com/tempizhere/surl/internal/slug"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		// логгер ещё не настроен, уровень из конфигурации недоступен
		logger, _ := log.NewLogger("info")
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		logger, _ = log.NewLogger("info")
		logger.Fatal("Failed to initialize logger", zap.String("level", cfg.LogLevel), zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// run собирает зависимости и обслуживает запросы до отмены ctx
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.JWTSecretGenerated {
		logger.Warn("SURL_JWT_SECRET is not set, owner cookies will not survive a restart")
	}
	if cfg.AdminToken == "change-me" {
		logger.Warn("SURL_ADMIN_TOKEN has the default value")
	}

	repo, err := app.NewRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close store", zap.Error(err))
		}
	}()

	resolver, err := clientip.NewResolver(cfg.ProxyTrustCIDRs)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.CookieTTL)
	if err != nil {
		return err
	}

	recorder := analytics.NewRecorder(repo, cfg.AnalyticsMode, cfg.IPAnonymize)
	dispatcher := analytics.NewDispatcher(recorder, cfg.AnalyticsWorkers, cfg.AnalyticsQueue, cfg.AnalyticsTimeout, logger)

	policy := slug.Derive(cfg.SlugRegex)
	reserved := slug.NewReservedSet(cfg.ReservedSlugs, app.SystemRoutes)
	svc := service.NewService(repo, policy, reserved, dispatcher, cfg.BaseURL, cfg.SlugMaxAttempts, logger)

	logger.Info("Slug policy",
		zap.Int("min_len", policy.MinLen()),
		zap.Int("max_len", policy.MaxLen()),
		zap.Int("alphabet", len(policy.Alphabet())),
		zap.Strings("reserved", reserved.Words()))

	handler := app.NewRouter(app.NewApp(svc, dispatcher, cfg.ForceStatus301, logger), app.RouterConfig{
		Resolver:   resolver,
		Tokens:     tokens,
		AdminToken: cfg.AdminToken,
		Logger:     logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var (
		grpcListener net.Listener
		stopGRPC     func()
	)
	if cfg.GRPCAddr != "" {
		grpcListener, err = net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server",
			zap.String("address", cfg.Addr),
			zap.String("base_url", cfg.BaseURL),
			zap.String("analytics_mode", cfg.AnalyticsMode.String()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if grpcListener != nil {
		gs := grpcserver.NewGRPCServer(grpcserver.NewServer(svc, dispatcher, logger), cfg.AdminToken, logger)
		stopGRPC = gs.GracefulStop
		g.Go(func() error {
			logger.Info("Starting gRPC server", zap.String("address", cfg.GRPCAddr))
			if err := gs.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", zap.Error(err))
		}
		if stopGRPC != nil {
			stopGRPC()
		}
		if err := dispatcher.Close(shutdownCtx); err != nil {
			logger.Warn("Analytics queue not drained", zap.Error(err))
		}
		logger.Info("Analytics stopped",
			zap.Int64("dropped", dispatcher.Dropped()),
			zap.Int64("failed", dispatcher.Failed()))
		return nil
	})

	return g.Wait()
}
