package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"

	"github.com/shandysiswandi/authgate/internal/credential/outbound/store"
	"github.com/shandysiswandi/authgate/internal/pkg/authz"
	"github.com/shandysiswandi/authgate/internal/pkg/clock"
	"github.com/shandysiswandi/authgate/internal/pkg/config"
	"github.com/shandysiswandi/authgate/internal/pkg/hash"
	"github.com/shandysiswandi/authgate/internal/pkg/instrument"
	"github.com/shandysiswandi/authgate/internal/pkg/jwt"
	"github.com/shandysiswandi/authgate/internal/pkg/router"
	"github.com/shandysiswandi/authgate/internal/pkg/uid"
	"github.com/shandysiswandi/authgate/internal/pkg/validator"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()

	pwHash, err := hash.New(
		a.config.GetString("hash.password.algorithm"),
		a.config.GetInt("hash.password.cost"),
		a.config.GetString("hash.password.pepper"),
	)
	if err != nil {
		slog.Error("failed to init password hash", "error", err)
		os.Exit(1)
	}
	a.hash = pwHash

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator
}

// initJWT builds one HS512 instance that serves as both issuer and verifier,
// so the two can never disagree on secret, issuer or audience.
func (a *App) initJWT() {
	sym, err := jwt.NewHS512(jwt.Config{
		Secret:   []byte(a.config.GetString("jwt.secret")),
		Type:     a.config.GetString("jwt.type"),
		Issuer:   a.config.GetString("jwt.issuer"),
		Audience: a.config.GetString("jwt.audience"),
		TTL:      a.config.GetMinute("jwt.ttl_minutes"),
		Prefix:   a.config.GetString("jwt.prefix"),
		Clock:    a.clock,
	})
	if errors.Is(err, jwt.ErrWeakSigningSecret) {
		slog.Error("jwt.secret is too short for HS512", "min_bytes", jwt.MinSecretLength)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = sym
}

func (a *App) initCredentialStore() {
	driver := strings.ToLower(strings.TrimSpace(a.config.GetString("credential.store.driver")))

	switch driver {
	case store.DriverPostgres:
		a.initDatabase()
		if err := store.Migrate(a.ctx, a.dbConn); err != nil {
			slog.Error("failed to migrate credential schema", "error", err)
			os.Exit(1)
		}
	case store.DriverRedis:
		a.initCache()
	}

	st, err := store.NewFromDriver(driver, store.FactoryOptions{
		Postgres:   a.dbConn,
		Redis:      a.cacheConn,
		Instrument: a.ins,
	})
	if err != nil {
		slog.Error("failed to init credential store", "error", err, "driver", driver)
		os.Exit(1)
	}

	slog.Info("credential store ready", "driver", driver)
	a.store = st
}

func (a *App) initDatabase() {
	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	if err := a.waitReachable("database", pool.Ping); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

func (a *App) initCache() {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	if err := a.waitReachable("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
}

// waitReachable retries ping with exponential backoff until it succeeds or the
// configured attempts run out.
func (a *App) waitReachable(name string, ping func(context.Context) error) error {
	attempts := a.config.GetInt("app.startup.retry_attempts")
	if attempts <= 0 {
		attempts = 5
	}

	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(uint64(attempts-1), b) //nolint:gosec // attempts is positive

	return retry.Do(a.ctx, b, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := ping(pingCtx); err != nil {
			slog.Warn("dependency not reachable yet", "name", name, "error", err)
			return retry.RetryableError(fmt.Errorf("%s: %w", name, err))
		}
		return nil
	})
}

func (a *App) initAuthorizer() {
	en, err := authz.New(a.policyTable())
	if err != nil {
		slog.Error("failed to init route authorization", "error", err)
		os.Exit(1)
	}

	a.config.OnChange(func() {
		if err := en.Reload(a.policyTable()); err != nil {
			slog.Error("route authorization reload rejected, keeping current table", "error", err)
			return
		}
		slog.Info("route authorization reloaded")
	})

	a.authorizer = en
}

// policyTable returns the configured policy rows and role links, falling back
// to the built-in table for whichever is empty.
func (a *App) policyTable() (rules, roleLinks []string) {
	rules = a.config.GetStrings("authorization.policies")
	if len(rules) == 0 {
		rules = authz.DefaultRules()
	}

	roleLinks = a.config.GetStrings("authorization.role_links")
	if len(roleLinks) == 0 {
		roleLinks = authz.DefaultRoleLinks()
	}

	return rules, roleLinks
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Verifier:   a.jwt,
		Authorizer: a.authorizer,
		Instrument: a.ins,
	})

	a.router.PublicGET("/health", a.health)
	a.router.PublicGET("/api/v1/health", a.health)

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				if a.dbConn != nil {
					a.dbConn.Close()
				}

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
