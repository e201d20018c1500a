package main

import (
	"context"
	"flag"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/caregate/internal/app"
	"github.com/dropDatabas3/caregate/internal/audit"
	"github.com/dropDatabas3/caregate/internal/authz"
	"github.com/dropDatabas3/caregate/internal/config"
	"github.com/dropDatabas3/caregate/internal/email"
	httpx "github.com/dropDatabas3/caregate/internal/http"
	"github.com/dropDatabas3/caregate/internal/observability/logger"
	"github.com/dropDatabas3/caregate/internal/rate"
	"github.com/dropDatabas3/caregate/internal/security/token"
	"github.com/dropDatabas3/caregate/internal/store/cache"
	"github.com/dropDatabas3/caregate/internal/store/pg"
	"github.com/dropDatabas3/caregate/internal/support"
)

const version = "0.3.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "caregate:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "ruta del archivo de configuración")
	flag.Parse()

	// .env es opcional (dev local)
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "caregate",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ===== STORAGE =====
	if cfg.Storage.DSN == "" {
		return fmt.Errorf("DATABASE_URL / storage.dsn es requerido")
	}
	connLifetime, err := config.MustDuration("storage.postgres.conn_max_lifetime", orDefault(cfg.Storage.Postgres.ConnMaxLifetime, "30m"))
	if err != nil {
		return err
	}
	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
		MaxConns:        int32(cfg.Storage.Postgres.MaxConns),
		MinConns:        int32(cfg.Storage.Postgres.MinConns),
		ConnMaxLifetime: connLifetime,
	})
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer store.Close()
	log.Info("postgres conectado")

	// ===== REDIS (opcional: solo si hay addr) =====
	var redisClient *rdb.Client
	if cfg.Redis.Addr != "" {
		redisClient = rdb.NewClient(&rdb.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis no responde, siguiendo sin él", logger.Err(err))
		} else {
			log.Info("redis conectado", logger.Any("addr", cfg.Redis.Addr))
		}
		defer func() { _ = redisClient.Close() }()
	}

	// ===== RATE LIMITING =====
	var apiLimiter, sensitiveLimiter rate.Limiter
	if cfg.Rate.Enabled {
		window, err := config.MustDuration("rate.window", cfg.Rate.Window)
		if err != nil {
			return err
		}
		sensWindow, err := config.MustDuration("rate.sensitive.window", cfg.Rate.Sensitive.Window)
		if err != nil {
			return err
		}
		if cfg.Rate.Driver == "redis" && redisClient != nil {
			apiLimiter = rate.NewRedisLimiter(redisClient, cfg.Redis.Prefix+"rate", cfg.Rate.Max, window)
			sensitiveLimiter = rate.NewRedisLimiter(redisClient, cfg.Redis.Prefix+"rate:sens", cfg.Rate.Sensitive.Max, sensWindow)
		} else {
			apiLimiter = rate.NewMemoryLimiter(cfg.Rate.Max, window)
			sensitiveLimiter = rate.NewMemoryLimiter(cfg.Rate.Sensitive.Max, sensWindow)
		}
		log.Info("rate limiting activo", logger.Any("driver", cfg.Rate.Driver))
	}

	// ===== AUTH =====
	tokenTTL, err := config.MustDuration("auth.service_token.ttl", cfg.Auth.ServiceToken.TTL)
	if err != nil {
		return err
	}
	tokens := token.New(config.ServiceTokenSecret(), cfg.Auth.ServiceToken.Issuer, cfg.Auth.ServiceToken.Audience)
	tokens.TokenTTL = tokenTTL

	// El resolver lee una sesión por request: va detrás de un read-through
	// cache corto para no castigar a postgres con el hot path.
	sessions := cache.NewSessions(store.Sessions(), cache.DefaultSessionTTL)

	resolver := &authz.Resolver{
		Sessions:   sessions,
		Users:      store.Users(),
		Tokens:     tokens,
		CookieName: cfg.Auth.Session.CookieName,
	}
	tenants := &authz.TenantChecker{
		Grants: store.SupportRequests(),
		Env:    cfg.App.Env,
	}

	// ===== AUDIT =====
	audit.RegisterMetrics(prometheus.DefaultRegisterer)
	auditor := &audit.Emitter{Repo: store.Audit()}

	// ===== SUPPORT ACCESS =====
	var notifier support.Notifier
	if cfg.SMTP.Host != "" {
		notifier = &email.SupportNotifier{
			Sender: email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.TLSMode),
		}
	}
	accessTTL, err := config.MustDuration("support.access_ttl", cfg.Support.AccessTTL)
	if err != nil {
		return err
	}
	supportSvc := &support.Service{
		Requests:  store.SupportRequests(),
		Users:     store.Users(),
		Audit:     auditor,
		Notify:    notifier,
		AccessTTL: accessTTL,
	}
	impersonator := &support.Impersonator{
		Users:     store.Users(),
		Directory: store.Directory(),
		Audit:     auditor,
	}

	// ===== CONTAINER + SERVER =====
	container := &app.Container{
		Cfg:              cfg,
		Users:            store.Users(),
		Sessions:         sessions,
		Profiles:         store.Profiles(),
		Resolver:         resolver,
		Tenants:          tenants,
		Support:          supportSvc,
		Impersonator:     impersonator,
		Audit:            auditor,
		Limiter:          apiLimiter,
		SensitiveLimiter: sensitiveLimiter,
		Ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := store.Ping(pingCtx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			if redisClient != nil {
				if err := redisClient.Ping(pingCtx).Err(); err != nil {
					return fmt.Errorf("redis: %w", err)
				}
			}
			return nil
		},
	}

	srv := httpx.NewServer(cfg.Server.Addr, httpx.NewRouter(container))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server escuchando", logger.Any("addr", cfg.Server.Addr), logger.Any("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout, err := config.MustDuration("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
		if err != nil {
			timeout = 15 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		log.Info("apagando http server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
