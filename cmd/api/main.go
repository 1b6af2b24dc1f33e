package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/order-service/internal/api/http"
	"github.com/spec-kit/order-service/internal/api/http/handlers"
	"github.com/spec-kit/order-service/internal/config"
	"github.com/spec-kit/order-service/internal/notify"
	"github.com/spec-kit/order-service/internal/observability"
	"github.com/spec-kit/order-service/internal/persistence"
	"github.com/spec-kit/order-service/internal/repository"
	"github.com/spec-kit/order-service/internal/service"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	readiness := []handlers.Dependency{{Name: "postgres", Pinger: pg}}

	queue, closeQueue, queueDep := newQueue(ctx, cfg.Notification, logger)
	defer closeQueue()
	if queueDep != nil {
		readiness = append(readiness, *queueDep)
	}

	topic, err := notify.NewPubSubTopic(ctx, cfg.Notification.GCPProjectID, cfg.Notification.CustomerTopic, cfg.Notification.Region)
	if err != nil {
		logger.Fatal("failed to init pubsub topic", zap.Error(err))
	}
	defer topic.Close() //nolint:errcheck

	email, err := notify.NewSMTPEmail(cfg.Notification.SMTPAddr, cfg.Notification.EmailFrom, cfg.Notification.SMTPUsername, cfg.Notification.SMTPPassword)
	if err != nil {
		logger.Fatal("failed to init smtp sender", zap.Error(err))
	}

	pool := pg.PoolHandle()
	orderRepo := repository.NewOrderRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	notifications, err := service.NewNotificationService(service.NotificationDependencies{
		Queue:  queue,
		Email:  email,
		Topic:  topic,
		Logger: logger.Named("notifications"),
	})
	if err != nil {
		logger.Fatal("failed to init notifications", zap.Error(err))
	}

	orderService, err := service.NewOrderService(service.OrderDependencies{
		OrderRepo:     orderRepo,
		UserRepo:      userRepo,
		Notifications: notifications,
		Logger:        logger.Named("orders"),
		Recorder:      metrics,
	})
	if err != nil {
		logger.Fatal("failed to init order service", zap.Error(err))
	}

	queryService, err := service.NewOrderQueryService(orderRepo, userRepo, cfg.Orders.LookupConcurrency)
	if err != nil {
		logger.Fatal("failed to init order query service", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness...),
		Orders:   handlers.NewOrdersHandler(orderService, queryService),
		Gatherer: registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func newQueue(ctx context.Context, cfg config.NotificationConfig, logger *zap.Logger) (notify.QueueSender, func(), *handlers.Dependency) {
	switch cfg.QueueDriver {
	case config.QueueDriverKafka:
		queue, err := notify.NewKafkaQueue(cfg.QueueBrokers(), cfg.QueueName)
		if err != nil {
			logger.Fatal("failed to init kafka queue", zap.Error(err))
		}
		logger.Info("order queue ready", zap.String("driver", cfg.QueueDriver), zap.String("topic", cfg.QueueName))
		return queue, func() { _ = queue.Close() }, nil
	default:
		rdb, err := persistence.NewRedis(ctx, cfg.QueueURL, logger)
		if err != nil {
			logger.Fatal("failed to init redis", zap.Error(err))
		}
		queue, err := notify.NewRedisQueue(rdb.Client, cfg.QueueName)
		if err != nil {
			logger.Fatal("failed to init redis queue", zap.Error(err))
		}
		logger.Info("order queue ready", zap.String("driver", cfg.QueueDriver), zap.String("list", cfg.QueueName))
		return queue, rdb.Close, &handlers.Dependency{Name: "redis", Pinger: rdb}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
