package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/tsystem/tracker/internal/api/http"
	"github.com/tsystem/tracker/internal/api/http/handlers"
	"github.com/tsystem/tracker/internal/auth"
	"github.com/tsystem/tracker/internal/config"
	"github.com/tsystem/tracker/internal/observability"
	"github.com/tsystem/tracker/internal/persistence"
	"github.com/tsystem/tracker/internal/random"
	"github.com/tsystem/tracker/internal/repository"
	"github.com/tsystem/tracker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	commentRepo := repository.NewTicketCommentRepository(pool)
	txManager := repository.NewTxManager(pool)

	guard := service.NewOwnershipGuard(projectRepo)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	projectService := service.NewProjectService(guard, projectRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Guard:       guard,
		TicketRepo:  ticketRepo,
		UserRepo:    userRepo,
		HistoryRepo: historyRepo,
		Tx:          txManager,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		Guard:       guard,
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
	})
	exportService := service.NewExportService(service.ExportDependencies{
		UserRepo:    userRepo,
		ProjectRepo: projectRepo,
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		HistoryRepo: historyRepo,
		Cache:       redis,
		CacheTTL:    cfg.Export.CacheTTL(),
		Logger:      logger,
	})
	generatorService := service.NewGeneratorService(authService, projectService, ticketService, commentService, random.NewCryptoSeeded())

	if err := authService.EnsureAdmin(ctx, cfg.Auth); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Projects:       handlers.NewProjectsHandler(projectService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Admin:          handlers.NewAdminHandler(exportService, generatorService),
		AuthMiddleware: authMiddleware,
		Registry:       registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
