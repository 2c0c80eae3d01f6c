package cmd

import (
	"log/slog"
	"strings"

	"orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/kafka"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/catalogrepo"
	"orderflow/internal/adapters/out/postgres/identityrepo"
	"orderflow/internal/adapters/out/redis"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config      Config
	gormDB      *gorm.DB
	uowFactory  postgres.GormUnitOfWorkFactory
	catalog     *catalogrepo.GormProductCatalog
	identity    *identityrepo.GormIdentityProvider
	publisher   *kafka.NotificationPublisher
	dedupStore  *redis.KeyedStore
	verifier    services.WebhookVerifier
	deliveryFee kernel.Money
	logger      *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	verifier, err := services.NewWebhookVerifier(config.WebhookSecrets)
	if err != nil {
		return CompositionRoot{}, err
	}

	deliveryFee, err := kernel.NewMoney(config.DeliveryFee)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		catalog:     catalogrepo.NewGormProductCatalog(gormDB),
		identity:    identityrepo.NewGormIdentityProvider(gormDB),
		publisher:   kafka.NewNotificationPublisher(strings.Split(config.KafkaHost, ","), config.KafkaNotificationTopic, logger),
		dedupStore:  redis.NewKeyedStore(redis.NewClient(config.RedisAddr)),
		verifier:    verifier,
		deliveryFee: deliveryFee,
		logger:      logger,
	}, nil
}

// Close releases outbound adapter resources. Call on shutdown after the
// HTTP server and jobs have stopped.
func (c *CompositionRoot) Close() error {
	return c.publisher.Close()
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderStockUoWFactory = FuncOrderStockUoWFactory(func() commands.OrderStockUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.catalog, c.identity, c.publisher, c.deliveryFee)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.OrderStockTaskUoWFactory = FuncOrderStockTaskUoWFactory(func() commands.OrderStockTaskUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.identity, c.publisher)
}

func (c *CompositionRoot) CreateRateOrderCommandHandler() commands.RateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateInitiatePaymentCommandHandler() commands.InitiatePaymentCommandHandler {
	var f commands.OrderPaymentUoWFactory = FuncOrderPaymentUoWFactory(func() commands.OrderPaymentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewInitiatePaymentCommandHandler(f, c.config.CheckoutRedirectBaseURL)
}

func (c *CompositionRoot) CreateReconcilePaymentCommandHandler() commands.ReconcilePaymentCommandHandler {
	var f commands.OrderPaymentUoWFactory = FuncOrderPaymentUoWFactory(func() commands.OrderPaymentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReconcilePaymentCommandHandler(f, c.dedupStore, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	var f commands.OrderTaskUoWFactory = FuncOrderTaskUoWFactory(func() commands.OrderTaskUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignCourierCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateAdvanceDeliveryCommandHandler() commands.AdvanceDeliveryCommandHandler {
	var f commands.OrderStockTaskUoWFactory = FuncOrderStockTaskUoWFactory(func() commands.OrderStockTaskUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAdvanceDeliveryCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateStartAssignmentCommandHandler() commands.StartAssignmentCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewStartAssignmentCommandHandler(f)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCustomerOrdersQueryHandler() queries.GetCustomerOrdersQueryHandler {
	return queries.NewGetCustomerOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *http.Server {
	return http.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.CreateRateOrderCommandHandler(),
		c.CreateInitiatePaymentCommandHandler(),
		c.CreateReconcilePaymentCommandHandler(),
		c.CreateAssignCourierCommandHandler(),
		c.CreateAdvanceDeliveryCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetCustomerOrdersQueryHandler(),
		c.verifier,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateStartAssignmentCommandHandler(), c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncOrderStockUoWFactory func() commands.OrderStockUoW

func (f FuncOrderStockUoWFactory) Create() commands.OrderStockUoW {
	return f()
}

type FuncOrderStockTaskUoWFactory func() commands.OrderStockTaskUoW

func (f FuncOrderStockTaskUoWFactory) Create() commands.OrderStockTaskUoW {
	return f()
}

type FuncOrderPaymentUoWFactory func() commands.OrderPaymentUoW

func (f FuncOrderPaymentUoWFactory) Create() commands.OrderPaymentUoW {
	return f()
}

type FuncOrderTaskUoWFactory func() commands.OrderTaskUoW

func (f FuncOrderTaskUoWFactory) Create() commands.OrderTaskUoW {
	return f()
}
