package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskhive/taskhive/modules/account"
	"github.com/taskhive/taskhive/modules/tags"
	"github.com/taskhive/taskhive/modules/tasks"
	"github.com/taskhive/taskhive/pkg/auth"
	"github.com/taskhive/taskhive/pkg/config"
	"github.com/taskhive/taskhive/pkg/httpserver"
	"github.com/taskhive/taskhive/pkg/jwt"
	"github.com/taskhive/taskhive/pkg/logger"
	"github.com/taskhive/taskhive/pkg/pg"
	"github.com/taskhive/taskhive/pkg/redis"
	"github.com/taskhive/taskhive/pkg/requestid"
)

type appConfig struct {
	Logger    logger.Config
	HTTP      httpserver.Config
	PG        pg.Config
	Redis     redis.Config
	JWT       jwt.Config
	Account   account.Config
	Google    auth.GoogleConfig
	GitHub    auth.GitHubConfig
	Microsoft auth.MicrosoftConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger, logger.WithService("taskhive"))
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	db, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pg.Migrate(ctx, db, cfg.PG, log); err != nil {
		return err
	}

	cache, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	tokens, err := jwt.New(cfg.JWT)
	if err != nil {
		return err
	}

	registry := auth.NewRegistry(cfg.Google, cfg.GitHub, cfg.Microsoft)
	flow := auth.NewFlowEngine(registry)
	authSvc := auth.NewService(account.NewUserStorage(db), tokens, flow, auth.WithLogger(log))

	accountSvc := account.NewService(authSvc, tokens,
		account.NewRedisStateStore(cache, cfg.Account.StateTTL),
		account.WithLogger(log))
	tasksSvc := tasks.NewService(tasks.NewTaskStorage(db), tokens, tasks.WithLogger(log))
	tagsSvc := tags.NewService(tags.NewTagStorage(db), tokens, tags.WithLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(httpserver.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Mount("/", accountSvc.Handle())
	r.Mount("/tasks", tasksSvc.Handle())
	r.Mount("/tags", tagsSvc.Handle())
	r.Get("/health", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(db),
		redis.Healthcheck(cache),
	))

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}
