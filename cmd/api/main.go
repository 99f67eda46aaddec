package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/notification"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/repository/memory"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
)

const shutdownTimeout = 15 * time.Second

// storage is the repository set for the selected driver.
type storage struct {
	tx           repository.Transactor
	tickets      repository.TicketRepository
	activities   repository.TicketActivityRepository
	statusEvents repository.TicketStatusEventRepository
	policies     repository.PolicyRepository
	references   repository.ReferenceRepository
	customers    repository.CustomerRepository
	employees    repository.EmployeeRepository
	feedbacks    repository.FeedbackRepository
	sequence     repository.TicketSequence
	suppressor   repository.AlertSuppressor
	health       map[string]handlers.Pinger
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer store.close()

	pool, err := worker.NewPool(cfg.Notification.WorkerPoolSize, metrics, logger)
	if err != nil {
		logger.Fatal("failed to create worker pool", zap.Error(err))
	}
	defer pool.Release(shutdownTimeout)

	dispatcher := events.NewInMemoryDispatcher(logger)
	if cfg.Broker.AMQPURL != "" {
		publisher, err := events.NewRabbitPublisher(cfg.Broker.AMQPURL, cfg.Broker.Exchange)
		if err != nil {
			logger.Warn("amqp unavailable, integration events disabled", zap.Error(err))
		} else {
			defer publisher.Close() //nolint:errcheck
			events.ForwardTo(dispatcher, publisher, pool, logger)
			logger.Info("forwarding ticket events to amqp", zap.String("exchange", cfg.Broker.Exchange))
		}
	}

	mailer := notification.NewMailer(cfg.Notification, metrics, logger)
	pusher := notification.NewPusher(cfg.Notification, metrics, logger)

	resolver := service.NewPolicyResolver(store.policies, cfg.Ticket.SpecificityKeywords, logger)
	numbers := service.NewTicketNumberGenerator(store.sequence, cfg.Ticket.NumberPrefix, cfg.Ticket.Location())

	ticketService := service.NewTicketService(service.TicketDependencies{
		Tx:              store.tx,
		TicketRepo:      store.tickets,
		ActivityRepo:    store.activities,
		StatusEventRepo: store.statusEvents,
		PolicyRepo:      store.policies,
		ReferenceRepo:   store.references,
		CustomerRepo:    store.customers,
		Resolver:        resolver,
		Numbers:         numbers,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Config:          cfg.Ticket,
		Logger:          logger,
	})
	notifier := service.NewEscalationNotifier(service.NotifierDependencies{
		TicketRepo:      store.tickets,
		ActivityRepo:    store.activities,
		PolicyRepo:      store.policies,
		ReferenceRepo:   store.references,
		CustomerRepo:    store.customers,
		EmployeeRepo:    store.employees,
		Mailer:          mailer,
		Pusher:          pusher,
		Metrics:         metrics,
		Logger:          logger,
		SendConcurrency: cfg.Notification.SendConcurrency,
	})
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, notifier, pool, cfg.Notification.TaskTimeout, logger))

	feedbackService := service.NewFeedbackService(store.feedbacks, store.tickets, store.policies, logger, nil)
	referenceService := service.NewReferenceService(store.references, store.policies)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		CustomerRepo: store.customers,
		EmployeeRepo: store.employees,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.customers, store.employees)

	var scheduler *worker.SLAScheduler
	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	if cfg.SLA.Enabled {
		monitor := service.NewSLAMonitor(service.SLAMonitorDependencies{
			TicketRepo:   store.tickets,
			ActivityRepo: store.activities,
			EmployeeRepo: store.employees,
			Suppressor:   store.suppressor,
			Pusher:       pusher,
			Dispatcher:   dispatcher,
			Metrics:      metrics,
			Config:       cfg.SLA,
			Logger:       logger,
		})
		scheduler = worker.NewSLAScheduler(monitor, cfg.SLA.WarningScanInterval, cfg.SLA.OverdueScanInterval, logger)
		scheduler.Start(schedulerCtx)
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store.health),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Feedback:       handlers.NewFeedbackHandler(feedbackService),
		Reference:      handlers.NewReferenceHandler(referenceService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	stopScheduler()
	if scheduler != nil {
		scheduler.Wait()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		return openMemory(cfg, logger)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			pg.Close()
			return nil, err
		}
	}
	redis := persistence.NewRedis(ctx, cfg.Redis, logger)

	pool := pg.PoolHandle()
	tickets := repository.NewTicketRepository(pool)
	return &storage{
		tx:           persistence.NewTxManager(pool),
		tickets:      tickets,
		activities:   repository.NewTicketActivityRepository(pool),
		statusEvents: repository.NewTicketStatusEventRepository(pool),
		policies:     repository.NewPolicyRepository(pool),
		references:   repository.NewReferenceRepository(pool),
		customers:    repository.NewCustomerRepository(pool),
		employees:    repository.NewEmployeeRepository(pool),
		feedbacks:    repository.NewFeedbackRepository(pool),
		sequence:     repository.NewRedisSequence(redis.Client, cfg.Ticket.NumberPrefix, tickets, logger),
		suppressor:   repository.NewRedisAlertSuppressor(redis.Client),
		health:       map[string]handlers.Pinger{"postgres": pg, "redis": redis},
		close: func() {
			redis.Close()
			pg.Close()
		},
	}, nil
}

func openMemory(cfg *config.Config, logger *zap.Logger) (*storage, error) {
	hash, err := auth.HashPassword(cfg.Storage.DemoPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	store := memory.NewStore()
	memory.SeedDemo(store, hash)
	logger.Warn("using in-memory storage; data is lost on restart")

	tickets := store.Tickets()
	return &storage{
		tx:           store,
		tickets:      tickets,
		activities:   store.Activities(),
		statusEvents: store.StatusEvents(),
		policies:     store.Policies(),
		references:   store.References(),
		customers:    store.Customers(),
		employees:    store.Employees(),
		feedbacks:    store.Feedbacks(),
		sequence:     repository.NewCountingSequence(tickets),
		suppressor:   store.AlertSuppressor(),
		health:       map[string]handlers.Pinger{},
		close:        func() {},
	}, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
