package cmd

import (
	"fmt"
	"log/slog"
	"time"

	httpadapter "tableorder/internal/adapters/in/http"
	"tableorder/internal/adapters/out/cache"
	"tableorder/internal/adapters/out/postgres"
	"tableorder/internal/adapters/out/postgres/menurepo"
	"tableorder/internal/adapters/out/rabbitmq"
	"tableorder/internal/core/application/usecases/commands"
	"tableorder/internal/core/application/usecases/queries"
	"tableorder/internal/core/domain/model/order"
	"tableorder/internal/core/ports"
	"tableorder/internal/jobs"
	"tableorder/internal/notify"
	"tableorder/internal/pkg/keylock"
	"tableorder/internal/pkg/retry"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	// lockIdle is how long an order lock stays unused before the sweep drops it.
	lockIdle = 5 * time.Minute

	// idempotencyLockSlack is added to the request budget when an idempotency key
	// is marked in flight.
	idempotencyLockSlack = 5 * time.Second
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	bus      *notify.Bus
	locks    *keylock.KeyedMutex
	registry *prometheus.Registry

	idempotency ports.IdempotencyStore
	// memoryKeys is set when idempotency keys live in process memory and need sweeping.
	memoryKeys *cache.MemoryIdempotencyStore

	logger *slog.Logger
}

// NewCompositionRoot wires the process-wide singletons. rdb may be nil, in which
// case idempotency keys are kept in memory.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, rdb redis.Cmdable, logger *slog.Logger) *CompositionRoot {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	root := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		bus: notify.NewBus(
			notify.WithBufferSize(cfg.BusBufferSize),
			notify.WithLogger(logger),
			notify.WithMetrics(notify.NewMetrics(registry)),
		),
		locks:    keylock.New(),
		registry: registry,
		logger:   logger,
	}

	if rdb != nil {
		root.idempotency = cache.NewRedisIdempotencyStore(rdb)
	} else {
		root.memoryKeys = cache.NewMemoryIdempotencyStore()
		root.idempotency = root.memoryKeys
	}

	return root
}

func (c *CompositionRoot) Bus() *notify.Bus {
	return c.bus
}

func (c *CompositionRoot) MenuRepository() *menurepo.GormMenuRepository {
	return menurepo.NewGormMenuRepository(c.gormDB)
}

func (c *CompositionRoot) CreateSubmitOrderCommandHandler() (commands.SubmitOrderCommandHandler, error) {
	policy, err := order.NewTaxPolicy(c.cfg.TaxRate, c.cfg.DecimalPlaces)
	if err != nil {
		return commands.SubmitOrderCommandHandler{}, fmt.Errorf("tax policy: %w", err)
	}

	var f commands.SubmissionUoWFactory = FuncSubmissionUoWFactory(func() commands.SubmissionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSubmitOrderCommandHandler(f, c.bus,
		commands.WithTaxPolicy(policy),
		commands.WithSubmitRetry(c.retryConfig()),
		commands.WithIdempotency(c.idempotency, c.cfg.IdempotencyTTL),
		commands.WithIdempotencyLockTTL(c.idempotencyLockTTL()),
		commands.WithSubmitLogger(c.logger),
	), nil
}

func (c *CompositionRoot) CreateTransitionOrderStatusCommandHandler() commands.TransitionOrderStatusCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTransitionOrderStatusCommandHandler(f, c.locks, c.bus,
		commands.WithTransitionRetry(c.retryConfig()),
		commands.WithTransitionLogger(c.logger),
	)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

// CreateRouter builds the echo instance serving REST, websocket and metrics.
func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	submit, err := c.CreateSubmitOrderCommandHandler()
	if err != nil {
		return nil, err
	}

	auth, err := httpadapter.NewAuthenticator(c.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	server := httpadapter.NewServer(
		submit,
		c.CreateTransitionOrderStatusCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetActiveOrdersQueryHandler(),
		c.MenuRepository(),
		c.logger,
	)

	return httpadapter.NewRouter(httpadapter.RouterConfig{
		Server:         server,
		Stream:         httpadapter.NewStreamHandler(c.bus, c.logger),
		Auth:           auth,
		Metrics:        httpadapter.NewMetrics(c.registry),
		Gatherer:       c.registry,
		RequestTimeout: c.cfg.RequestTimeout,
		Logger:         c.logger,
	}), nil
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	var keys jobs.ExpiredKeySweeper
	if c.memoryKeys != nil {
		keys = c.memoryKeys
	}

	return jobs.NewJobManager(c.logger,
		jobs.NewOrderLockSweepJob(c.locks, keys, c.cfg.LockSweepSchedule, lockIdle, c.logger),
	)
}

// CreateEventRelay declares the exchange on ch and returns the relay.
func (c *CompositionRoot) CreateEventRelay(ch rabbitmq.Channel) (*rabbitmq.EventRelay, error) {
	return rabbitmq.NewEventRelay(ch, c.cfg.AMQPExchange, rabbitmq.WithRelayLogger(c.logger))
}

func (c *CompositionRoot) retryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.Attempts = c.cfg.PersistenceRetries + 1
	return cfg
}

// idempotencyLockTTL outlives one submission: the request deadline plus the
// backoff of its persistence retries.
func (c *CompositionRoot) idempotencyLockTTL() time.Duration {
	return c.cfg.RequestTimeout + c.retryConfig().Backoff() + idempotencyLockSlack
}

type FuncSubmissionUoWFactory func() commands.SubmissionUoW

func (f FuncSubmissionUoWFactory) Create() commands.SubmissionUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
