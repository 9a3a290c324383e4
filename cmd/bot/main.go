// Command bot runs the nutrisnap backend: the subscription ledger,
// entitlement gate, usage metering, nutrition pipeline and payment
// settlement behind the JSON API the chat transport consumes.
//
// Every collaborator is constructed here and injected explicitly.
// Configuration comes from the environment (or a local .env file),
// one Config struct per infrastructure package.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nutrisnap/nutrisnap/pkg/calendar"
	"github.com/nutrisnap/nutrisnap/pkg/config"
	"github.com/nutrisnap/nutrisnap/pkg/httpserver"
	"github.com/nutrisnap/nutrisnap/pkg/logger"
	"github.com/nutrisnap/nutrisnap/pkg/mongo"
	"github.com/nutrisnap/nutrisnap/pkg/pg"
	"github.com/nutrisnap/nutrisnap/pkg/photostore"
	"github.com/nutrisnap/nutrisnap/pkg/redis"
	"github.com/nutrisnap/nutrisnap/pkg/vision"
	"github.com/nutrisnap/nutrisnap/svc/analysis"
	"github.com/nutrisnap/nutrisnap/svc/entitlement"
	"github.com/nutrisnap/nutrisnap/svc/goals"
	"github.com/nutrisnap/nutrisnap/svc/metering"
	"github.com/nutrisnap/nutrisnap/svc/payment"
	"github.com/nutrisnap/nutrisnap/svc/subscription"
)

type appConfig struct {
	Environment   string `env:"APP_ENV" envDefault:"production"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"nutrisnap"`
	PlansPath     string `env:"PLANS_PATH"`                       // optional YAML override for the built-in plan table
	PhotoStorage  string `env:"PHOTO_STORAGE" envDefault:"local"` // local or s3
	PhotoDir      string `env:"PHOTO_LOCAL_DIR" envDefault:"data/photos"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("bot exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var app appConfig
	if err := config.Load(&app); err != nil {
		return fmt.Errorf("load app config: %w", err)
	}

	log := logger.New(logger.WithEnvironment(app.Environment, "nutrisnap"))
	logger.SetAsDefault(log)

	// Storage backends.
	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return fmt.Errorf("load postgres config: %w", err)
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	var mongoCfg mongo.Config
	if err := config.Load(&mongoCfg); err != nil {
		return fmt.Errorf("load mongo config: %w", err)
	}
	db, err := mongo.NewWithDatabase(ctx, mongoCfg, app.MongoDatabase)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return fmt.Errorf("load redis config: %w", err)
	}
	rdb, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = rdb.Close() }()

	// Plan policy, ledger, metering and the gate.
	table := entitlement.DefaultTable()
	if app.PlansPath != "" {
		table, err = entitlement.LoadTable(app.PlansPath)
		if err != nil {
			return fmt.Errorf("load plan table: %w", err)
		}
		log.InfoContext(ctx, "plan table loaded", slog.String("path", app.PlansPath))
	}

	ledger := subscription.NewLedger(
		subscription.NewMongoStore(db),
		subscription.WithLogger(log),
	)
	meter := metering.NewMeter(ledger, table, metering.WithLogger(log))
	gate := entitlement.NewGate(table, ledger, meter, entitlement.WithLogger(log))

	// Payments: receipts in Postgres, charge dedup in Redis,
	// activation through the ledger.
	paySvc := payment.NewService(
		ledger,
		payment.NewPgRepository(pool),
		payment.NewRedisDeduper(rdb),
		payment.WithLogger(log),
	)

	var paddleCfg payment.PaddleConfig
	if err := config.Load(&paddleCfg); err != nil {
		return fmt.Errorf("load paddle config: %w", err)
	}
	paddle, err := payment.NewPaddleProvider(paddleCfg, paySvc, log)
	if err != nil {
		return fmt.Errorf("init paddle provider: %w", err)
	}

	// Nutrition pipeline collaborators.
	var visionCfg vision.Config
	if err := config.Load(&visionCfg); err != nil {
		return fmt.Errorf("load vision config: %w", err)
	}
	visionClient, err := vision.NewClient(visionCfg)
	if err != nil {
		return fmt.Errorf("init vision client: %w", err)
	}

	goalsSvc := goals.NewService(
		goals.NewMongoStore(db),
		goals.WithAdvisor(goals.NewModelAdvisor(visionClient)),
		goals.WithLogger(log),
	)

	analysisSvc := analysis.NewService(
		analysis.NewMongoStore(db),
		analysis.NewRedisDraftCache(rdb),
		analysis.WithLogger(log),
	)

	var calCfg calendar.Config
	if err := config.Load(&calCfg); err != nil {
		return fmt.Errorf("load calendar config: %w", err)
	}
	calSvc, err := calendar.NewService(calCfg, calendar.NewMongoTokenStore(db), calendar.WithLogger(log))
	if err != nil {
		return fmt.Errorf("init calendar service: %w", err)
	}

	photos, err := newPhotoStore(ctx, app)
	if err != nil {
		return fmt.Errorf("init photo store: %w", err)
	}

	handlers := &api{
		ledger:   ledger,
		gate:     gate,
		meter:    meter,
		payments: paySvc,
		paddle:   paddle,
		goals:    goalsSvc,
		analysis: analysisSvc,
		vision:   visionClient,
		calendar: calSvc,
		photos:   photos,
		log:      log,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool),
		mongo.Healthcheck(db.Client()),
		redis.Healthcheck(rdb),
	))
	router.Post("/webhooks/paddle", paddle.WebhookHandler())
	handlers.routes(router)

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return fmt.Errorf("load http config: %w", err)
	}
	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("http server started", slog.String("addr", httpCfg.Addr))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("http server stopped")
		}),
	)
	return srv.Run(ctx, router)
}

func newPhotoStore(ctx context.Context, app appConfig) (photostore.Store, error) {
	switch app.PhotoStorage {
	case "s3":
		var s3Cfg photostore.S3Config
		if err := config.Load(&s3Cfg); err != nil {
			return nil, err
		}
		return photostore.NewS3Store(ctx, s3Cfg)
	default:
		return photostore.NewLocalStore(app.PhotoDir)
	}
}
