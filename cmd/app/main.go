package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tableorder/cmd"
	"tableorder/internal/adapters/out/postgres"
	"tableorder/internal/pkg/logging"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger, logCloser, err := logging.New(logging.Config{
		Service:  "tableorder",
		FilePath: configs.LogFile,
		Level:    configs.LogLevel,
	}, os.Stdout)
	if err != nil {
		log.Fatalf("Error configuring logging: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, configs, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		stop()
		_ = logCloser.Close()
		os.Exit(1) //nolint:gocritic // deferred calls were run above
	}
}

func run(ctx context.Context, configs cmd.Config, logger *slog.Logger) error {
	db, err := openDatabase(configs)
	if err != nil {
		return err
	}
	if err = postgres.Migrate(db); err != nil {
		return err
	}

	var rdb *redis.Client
	if configs.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: configs.RedisAddr})
		defer rdb.Close()
		if err = rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
	}

	app := cmd.NewCompositionRoot(configs, db, redisCmdable(rdb), logger)

	if configs.SeedMenu {
		n, seedErr := cmd.SeedMenu(ctx, app.MenuRepository())
		if seedErr != nil {
			return seedErr
		}
		logger.Info("menu seeded", "items", n)
	}

	app.Bus().Initialize()
	defer app.Bus().Shutdown()

	router, err := app.CreateRouter()
	if err != nil {
		return err
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		logger.Info("http server listening", "addr", srv.Addr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	})

	if configs.AMQPURL != "" {
		conn, dialErr := amqp.Dial(configs.AMQPURL)
		if dialErr != nil {
			return fmt.Errorf("connect to rabbitmq: %w", dialErr)
		}
		defer conn.Close()

		ch, chErr := conn.Channel()
		if chErr != nil {
			return fmt.Errorf("open rabbitmq channel: %w", chErr)
		}
		defer ch.Close()

		relay, relayErr := app.CreateEventRelay(ch)
		if relayErr != nil {
			return relayErr
		}
		g.Go(func() error {
			return relay.Run(gctx, app.Bus())
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Closing the bus first ends websocket streams, which Shutdown does not wait on.
		app.Bus().Shutdown()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch configs.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(configs.SQLitePath)
	default:
		dialector = gormpostgres.Open(configs.PostgresDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", configs.DBDriver, err)
	}
	return db, nil
}

// redisCmdable keeps a nil *redis.Client from becoming a non-nil interface.
func redisCmdable(rdb *redis.Client) redis.Cmdable {
	if rdb == nil {
		return nil
	}
	return rdb
}
