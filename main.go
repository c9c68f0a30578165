package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"erp-bff/internal/aggregate"
	"erp-bff/internal/audit"
	"erp-bff/internal/auth"
	"erp-bff/internal/config"
	"erp-bff/internal/http"
	"erp-bff/internal/proxy"
	"erp-bff/internal/rbac"
	"erp-bff/internal/rbac/presets"
	"erp-bff/internal/repository/postgres"
	"erp-bff/pkg/logger"
	"erp-bff/pkg/metrics"
	"erp-bff/pkg/password"

	"github.com/joho/godotenv"
)

const (
	envFilePath      = ".env"
	serverAddrPrefix = ":"
	signalBufferSize = 1
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	if err := godotenv.Load(envFilePath); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	appLogger, err := logger.New(os.Stdout, level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	slog.SetDefault(appLogger)

	ctx := context.Background()

	db, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		appLogger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	appLogger.Info("database connection established")

	userRepo := postgres.NewUserRepository(db)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	checker := rbac.MustNew(presets.ERP())
	identity := auth.NewIdentityProvider(userRepo, password.New(password.Cost), tokens, checker, appLogger)

	m := metrics.New()
	auditLogger := audit.NewLogger(appLogger)
	client := proxy.NewClient(map[proxy.Service]string{
		proxy.ServiceAsset:    cfg.Upstreams.AssetServiceURL,
		proxy.ServiceEmployee: cfg.Upstreams.EmployeeServiceURL,
		proxy.ServiceInvoice:  cfg.Upstreams.InvoiceServiceURL,
	}, cfg.Upstreams.Timeout, m, appLogger)

	server := http.NewServer(&http.ServerDependencies{
		Config:         cfg,
		Logger:         appLogger,
		Metrics:        m,
		DB:             db,
		Identity:       identity,
		AuthMiddleware: auth.NewMiddleware(tokens, cfg.Auth.CookieName),
		CSRF:           auth.NewCSRF(cfg.Auth.JWTSecret),
		Checker:        checker,
		Proxy:          proxy.NewHandler(client, auditLogger, appLogger),
		Analytics:      aggregate.NewHandler(client),
		AuditLogger:    auditLogger,
	})

	go func() {
		appLogger.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(serverAddrPrefix + cfg.Server.Port); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			appLogger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	appLogger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		return
	}

	appLogger.Info("server exited gracefully")
}
