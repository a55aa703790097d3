package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/application/orchestrator"
	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/application/service"
	"github.com/garyjia/ai-procurement/internal/config"
	"github.com/garyjia/ai-procurement/internal/infrastructure/external/lark"
	"github.com/garyjia/ai-procurement/internal/infrastructure/external/openai"
	"github.com/garyjia/ai-procurement/internal/infrastructure/persistence/repository"
	httpserver "github.com/garyjia/ai-procurement/internal/interfaces/http"
	"github.com/garyjia/ai-procurement/internal/inventory"
	"github.com/garyjia/ai-procurement/internal/purchaseorder"
	"github.com/garyjia/ai-procurement/internal/vendor"
	"github.com/garyjia/ai-procurement/pkg/database"
	"github.com/garyjia/ai-procurement/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// Local credentials from .env, ignored when absent
	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting AI Procurement Workflow Engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Database and migrations
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	workflowRepo := repository.NewWorkflowRepository(db.DB, logger)
	auditRepo := repository.NewAuditLogRepository(db.DB, logger)
	checkpointStore := repository.NewCheckpointRepository(db.DB, logger)

	// Decision stages
	forecaster := openai.NewForecaster(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.Temperature,
		cfg.Forecast.HorizonDays,
		logger,
	)
	optimizer := inventory.NewOptimizer(inventory.Config{
		LeadTimeDays:  cfg.Optimization.LeadTimeDays,
		ServiceFactor: cfg.Optimization.ServiceFactor,
	}, logger)
	vendorSelector := vendor.NewSelector(cfg.Vendors.Catalog, cfg.Vendors.Weights, logger)
	poGenerator := purchaseorder.NewGenerator(cfg.PurchaseOrder.OutputDir, logger)

	// Reviewer notification
	notifier := buildNotifier(cfg, logger)

	engine := orchestrator.New(
		workflowRepo,
		auditRepo,
		checkpointStore,
		forecaster,
		optimizer,
		vendorSelector,
		poGenerator,
		logger,
		orchestrator.WithThresholds(cfg.Approval.Thresholds()),
		orchestrator.WithNotifier(notifier),
	)

	auditService := service.NewAuditQueryService(auditRepo, logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, engine, auditService, newHTTPLogger(logger))

	// Serve until interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// buildNotifier picks the Lark notifier when configured, otherwise a
// log-only fallback
func buildNotifier(cfg *config.Config, logger *zap.Logger) port.ApprovalNotifier {
	if !cfg.Lark.Enabled {
		return lark.NewNoopNotifier(logger)
	}

	client := lark.NewClient(lark.Config{
		AppID:           cfg.Lark.AppID,
		AppSecret:       cfg.Lark.AppSecret,
		ManagerOpenID:   cfg.Lark.ManagerOpenID,
		ExecutiveOpenID: cfg.Lark.ExecutiveOpenID,
	}, logger)

	return lark.NewNotifier(client, logger)
}

// httpLogger adapts zap to the HTTP adapter's logger interface
type httpLogger struct {
	sugar *zap.SugaredLogger
}

func newHTTPLogger(logger *zap.Logger) *httpLogger {
	return &httpLogger{sugar: logger.Sugar()}
}

func (l *httpLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *httpLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
