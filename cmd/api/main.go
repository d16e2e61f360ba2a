package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/ai"
	httptransport "github.com/sibarconnect/inbox-service/internal/api/http"
	"github.com/sibarconnect/inbox-service/internal/api/http/handlers"
	"github.com/sibarconnect/inbox-service/internal/auth"
	"github.com/sibarconnect/inbox-service/internal/config"
	"github.com/sibarconnect/inbox-service/internal/events"
	"github.com/sibarconnect/inbox-service/internal/media"
	"github.com/sibarconnect/inbox-service/internal/observability"
	"github.com/sibarconnect/inbox-service/internal/persistence"
	"github.com/sibarconnect/inbox-service/internal/provider"
	"github.com/sibarconnect/inbox-service/internal/realtime"
	"github.com/sibarconnect/inbox-service/internal/repository"
	"github.com/sibarconnect/inbox-service/internal/service"
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
	chatRepo := repository.NewChatRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	tagRepo := repository.NewTagRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	pinSnoozeRepo := repository.NewPinSnoozeRepository(pool)
	summaryRepo := repository.NewSummaryRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	metrics := observability.NewMetrics()
	hub := realtime.NewHub(logger, metrics)
	bridge := events.NewBridge(hub, cfg.Events.QueueSize, logger)
	go bridge.Run(ctx)

	providerClient := provider.NewYCloudClient(cfg.Provider, logger)
	mediaStorage := media.NewLocalStorage(cfg.Media, logger)
	summarizer := ai.NewGeminiSummarizer(cfg.AI, logger)

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: userRepo})
	chatService := service.NewChatService(service.ChatDependencies{
		ChatRepo:      chatRepo,
		MessageRepo:   messageRepo,
		TagRepo:       tagRepo,
		NoteRepo:      noteRepo,
		PinSnoozeRepo: pinSnoozeRepo,
		AuditRepo:     auditRepo,
		Publisher:     bridge,
		Logger:        logger,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		ChatRepo:    chatRepo,
		MessageRepo: messageRepo,
		CompanyRepo: companyRepo,
		Provider:    providerClient,
		Media:       mediaStorage,
		Publisher:   bridge,
		Logger:      logger,
	})
	appointmentService := service.NewAppointmentService(service.AppointmentDependencies{
		AppointmentRepo: appointmentRepo,
		ChatRepo:        chatRepo,
	})
	summaryService := service.NewSummaryService(service.SummaryDependencies{
		SummaryRepo: summaryRepo,
		MessageRepo: messageRepo,
		ChatRepo:    chatRepo,
		Summarizer:  summarizer,
	})
	importService := service.NewImportService(service.ImportDependencies{
		ChatRepo:    chatRepo,
		MessageRepo: messageRepo,
		Logger:      logger,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 32 * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Chats:          handlers.NewChatsHandler(chatService),
		Messages:       handlers.NewMessagesHandler(messageService, importService),
		TagsNotes:      handlers.NewTagsNotesHandler(chatService),
		Appointments:   handlers.NewAppointmentsHandler(appointmentService),
		Summaries:      handlers.NewSummariesHandler(summaryService),
		Webhooks:       handlers.NewWebhooksHandler(messageService, companyRepo, redis, logger),
		Realtime:       handlers.NewRealtimeHandler(hub, authService.TokenManager(), logger),
		AuthMiddleware: authMiddleware,
		MediaDir:       cfg.Media.BaseDir,
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
