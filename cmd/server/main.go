package main

import (
	"context"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	authmodule "github.com/campushare/campushare/modules/auth"

	"github.com/campushare/campushare/internal/storage/postgres"
	"github.com/campushare/campushare/pkg/auth"
	"github.com/campushare/campushare/pkg/bearer"
	"github.com/campushare/campushare/pkg/config"
	"github.com/campushare/campushare/pkg/httpserver"
	"github.com/campushare/campushare/pkg/logger"
	"github.com/campushare/campushare/pkg/mailer"
	"github.com/campushare/campushare/pkg/pg"
	"github.com/campushare/campushare/pkg/redis"
	"github.com/campushare/campushare/pkg/session"
)

type appConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// SessionSecret doubles as the bearer signing secret when JWT_SECRET is
	// not set separately.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// UseRedisSessions selects the distributed session store. The choice is
	// made once at startup; the store never changes while requests flow.
	UseRedisSessions bool `env:"USE_REDIS_SESSIONS" envDefault:"false"`

	// EnableGoogleOAuth and EnableGitHubOAuth mount the provider flows.
	// Their credential env vars are only required when enabled.
	EnableGoogleOAuth bool `env:"ENABLE_GOOGLE_OAUTH" envDefault:"false"`
	EnableGitHubOAuth bool `env:"ENABLE_GITHUB_OAUTH" envDefault:"false"`

	// UsePostmark switches outbound email from the on-disk dev sender to the
	// Postmark transactional API.
	UsePostmark bool `env:"USE_POSTMARK" envDefault:"false"`
}

func main() {
	ctx := context.Background()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	isProduction := appCfg.Environment == "production"

	log := logger.New(
		logger.WithEnvironment(appCfg.Environment, "campushare"),
	)
	logger.SetAsDefault(log)

	// Database.
	var pgCfg pg.Config
	config.MustLoad(&pgCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		log.Error("failed to apply migrations", logger.Error(err))
		os.Exit(1)
	}

	store := postgres.New(pool)

	// Session store. Chosen synchronously before any request is served; on
	// Redis connection failure we fail startup instead of silently running a
	// different store than configured.
	var sessionCfg session.Config
	config.MustLoad(&sessionCfg)
	sessionCfg.SecureCookies = isProduction

	probes := []func(context.Context) error{pg.Healthcheck(pool)}

	var sessionStore session.Store
	if appCfg.UseRedisSessions {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)

		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.Error("failed to connect to redis", logger.Error(err))
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()

		sessionStore = session.NewRedisStore(client)
		probes = append(probes, redis.Healthcheck(client))
	} else {
		sessionStore = session.NewMemoryStore(sessionCfg.CleanupInterval)
	}

	sessions := session.New(
		session.WithStore(sessionStore),
		session.WithConfig(sessionCfg),
		session.WithManagerLogger(log),
	)
	defer func() { _ = sessions.Close() }()

	// Bearer tokens.
	var bearerCfg bearer.Config
	config.MustLoad(&bearerCfg)
	if bearerCfg.SigningSecret == "" {
		bearerCfg.SigningSecret = appCfg.SessionSecret
	}

	tokens, err := bearer.NewIssuer(bearerCfg)
	if err != nil {
		log.Error("failed to create token issuer", logger.Error(err))
		os.Exit(1)
	}

	// Outbound email.
	var mailerCfg mailer.Config
	config.MustLoad(&mailerCfg)

	var sender mailer.EmailSender
	if appCfg.UsePostmark {
		sender, err = mailer.NewPostmarkClient(mailerCfg)
		if err != nil {
			log.Error("failed to create postmark client", logger.Error(err))
			os.Exit(1)
		}
	} else {
		sender = mailer.NewDevSender(mailerCfg.DevOutputDir)
	}

	// Domain services.
	var moduleCfg authmodule.Config
	config.MustLoad(&moduleCfg)

	passwords := auth.NewPasswordService(store.Users, auth.WithPasswordLogger(log))
	verification := auth.NewVerificationService(store.Tokens, store.Users, sender, moduleCfg.FrontendOrigin, auth.WithVerificationLogger(log))
	linker := auth.NewLinker(store.Users, auth.WithLinkerLogger(log))

	moduleOpts := []authmodule.Option{authmodule.WithLogger(log)}
	states := auth.NewMemoryStateStore()

	if appCfg.EnableGoogleOAuth {
		var googleCfg auth.GoogleOAuthConfig
		config.MustLoad(&googleCfg)
		google := auth.NewOAuthService(auth.NewGoogleAdapter(googleCfg), linker, states, auth.WithOAuthLogger(log))
		moduleOpts = append(moduleOpts, authmodule.WithGoogle(google))
	}
	if appCfg.EnableGitHubOAuth {
		var githubCfg auth.GitHubOAuthConfig
		config.MustLoad(&githubCfg)
		github := auth.NewOAuthService(auth.NewGitHubAdapter(githubCfg), linker, states, auth.WithOAuthLogger(log))
		moduleOpts = append(moduleOpts, authmodule.WithGitHub(github))
	}

	module := authmodule.New(moduleCfg, passwords, verification, linker, sessions, tokens, moduleOpts...)

	// HTTP surface.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Get("/health", httpserver.HealthCheckHandler(log, probes...))
	r.Mount("/", module.Router())

	var serverCfg httpserver.Config
	config.MustLoad(&serverCfg)

	server := httpserver.New(serverCfg, log)
	if err := server.Run(ctx, r); err != nil {
		log.Error("http server exited with error", logger.Error(err))
		os.Exit(1)
	}
}
