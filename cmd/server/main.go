package main

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	chimw "github.com/go-chi/chi/v5/middleware"

	framework "github.com/dfiliuk-tech/hw-2"
	"github.com/dfiliuk-tech/hw-2/middlewares"
	"github.com/dfiliuk-tech/hw-2/pkg/auth"
	"github.com/dfiliuk-tech/hw-2/pkg/cookie"
	"github.com/dfiliuk-tech/hw-2/pkg/db"
	"github.com/dfiliuk-tech/hw-2/pkg/logger"
	"github.com/dfiliuk-tech/hw-2/pkg/metrics"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

const appName = "hw-2"

var buildVersion string

//go:embed routes.yaml
var routesYAML []byte

// defaultUsers are seeded into an empty users table.
var defaultUsers = []auth.Seed{
	{Username: "admin", Password: "admin123", Roles: []string{auth.RoleAdmin}},
	{Username: "user", Password: "user123", Roles: []string{auth.RoleUser}},
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log, middlewares.RequestIDExtractor(), sessionIDExtractor()).
		With(slog.String("env", cfg.Env))

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx, conn, cfg.Database.Driver, auth.Migrations, cfg.Database.MigrationsTable, log); err != nil {
		_ = conn.Close()
		return err
	}

	provider := auth.NewDatabaseProvider(auth.NewRepository(conn, cfg.Database.Driver), auth.WithLogger(log))
	if _, err := provider.EnsureUsers(ctx, defaultUsers...); err != nil {
		_ = conn.Close()
		return fmt.Errorf("seed users: %w", err)
	}

	runOpts := []framework.RunOption{
		framework.Logger(log),
		framework.ShutdownTimeout(cfg.ShutdownTimeout),
		framework.WithReadinessCheck("database", db.Healthcheck(conn)),
		framework.ShutdownHook(db.Shutdown(conn)),
		framework.WithHTTPMiddleware(chimw.RealIP),
	}

	store, storeOpts, err := openSessionStore(ctx, cfg)
	if err != nil {
		_ = conn.Close()
		return err
	}
	runOpts = append(runOpts, storeOpts...)

	var m *metrics.ServerMetrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		m.SetBuildInfo(appName, version(), runtime.Version())
		runOpts = append(runOpts,
			framework.WithMetricsHandler(m.Handler()),
			framework.WithHTTPMiddleware(m.Middleware),
		)
	}

	app, err := newApp(cfg, log, provider, store, m)
	if err != nil {
		_ = conn.Close()
		return err
	}

	return app.Run(cfg.Addr, runOpts...)
}

// newApp wires the security layer, middleware and demo controllers.
func newApp(cfg Config, log *slog.Logger, provider auth.Provider, store session.Store, m *metrics.ServerMetrics) (*framework.App, error) {
	sessionOpts := []framework.SessionOption{
		framework.WithSessionCookieName(cfg.CookieName),
		framework.WithSessionTTL(cfg.SessionTTL),
		framework.WithSessionLogger(log),
		framework.WithSessionCookies(cookie.New(
			cookie.WithSecret(cfg.CookieSecret),
			cookie.WithSecure(cfg.SessionSecure),
		)),
	}
	appOpts := []framework.Option{
		framework.WithLogger(log),
		framework.WithVerboseErrors(cfg.VerboseErrors),
		framework.WithLoginPath(cfg.LoginPath),
	}

	recoverOpts := []middlewares.RecoverOption{middlewares.WithRecoverLogger(log)}
	if m != nil {
		sessionOpts = append(sessionOpts, framework.WithSessionCreatedHook(func(context.Context, *session.Session) {
			m.IncSessionCreated()
		}))
		recoverOpts = append(recoverOpts, middlewares.WithRecoverHook(func(context.Context, *middlewares.PanicError) {
			m.IncPanic()
		}))
		appOpts = append(appOpts, framework.WithRouteObserver(func(ctx context.Context, route framework.Route) {
			metrics.SetRoute(ctx, route.Pattern())
		}))
	}

	security := framework.NewSecurity(provider, framework.NewSessionManager(store, sessionOpts...),
		framework.WithCSRFTokenName(cfg.CSRFTokenName),
		framework.WithCSRFTokenTTL(cfg.CSRFTokenTTL),
		framework.WithPublicRoutes(cfg.PublicRoutes...),
		framework.WithSecurityLogger(log),
	)

	registry := framework.NewRegistry()
	newControllers(security, provider, m).register(registry)

	specs, err := framework.LoadRoutes(bytes.NewReader(routesYAML))
	if err != nil {
		return nil, err
	}

	appOpts = append(appOpts,
		framework.WithRouter(framework.NewRouter(registry)),
		framework.WithRoutes(specs...),
		framework.WithSecurity(security),
		framework.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(recoverOpts...),
			middlewares.Timeout(cfg.RequestTimeout, middlewares.WithTimeoutLogger(log)),
		),
	)
	return framework.New(appOpts...)
}

// openSessionStore builds the configured store and the run options that
// check and close it.
func openSessionStore(ctx context.Context, cfg Config) (session.Store, []framework.RunOption, error) {
	if cfg.SessionStore == storeRedis {
		client, err := session.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store := session.NewRedisStore(client, cfg.Redis.Prefix)
		return store, []framework.RunOption{
			framework.WithReadinessCheck("sessions", store.Ping),
			framework.ShutdownHook(func(context.Context) error { return client.Close() }),
		}, nil
	}

	store := session.NewMemoryStore()
	return store, []framework.RunOption{
		framework.ShutdownHook(func(context.Context) error { return store.Close() }),
	}, nil
}

// sessionIDExtractor adds the request session's ID to log records.
func sessionIDExtractor() logger.ContextExtractor {
	return logger.StringExtractor("session_id", func(ctx context.Context) string {
		if s := session.FromContext(ctx); s != nil {
			return s.ID
		}
		return ""
	})
}

func version() string {
	if buildVersion == "" {
		return "dev"
	}
	return buildVersion
}
