package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"bizreviews/internal/db"
	"bizreviews/internal/mailer"
	"bizreviews/internal/ratelimiter"
	"bizreviews/internal/store"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "1.0.0"

//	@title			Directory Reviews API
//	@description	Review intake and moderation for the business directory.

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization

func envString(key, fallback string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		fmt.Printf("Invalid %s, defaulting to %d\n", key, fallback)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
		fmt.Printf("Invalid %s, defaulting to %t\n", key, fallback)
	}
	return fallback
}

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerWindow: envInt("RATELIMITER_REQUESTS_COUNT", 3),
		Window:            time.Duration(envInt("RATELIMITER_WINDOW_SECONDS", 3600)) * time.Second,
		Enabled:           envBool("RATE_LIMITER_ENABLED", true),
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

// bootstrapAdminCredential creates the admin identity with the configured
// default password when no credential record exists yet. The record is flagged
// for mandatory rotation and a warning is logged until it happens.
func bootstrapAdminCredential(ctx context.Context, logger *zap.SugaredLogger, storage store.Storage, username, password string) error {
	cred, err := storage.Credentials.Get(ctx)
	if err == nil {
		if cred.MustRotate {
			logger.Warnw("admin credential still uses the bootstrap default, rotate it", "username", cred.Username)
		}
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	cred = &store.AdminCredential{
		Username:   username,
		MustRotate: true,
	}
	if err := cred.Password.Set(password); err != nil {
		return err
	}
	if err := storage.Credentials.Create(ctx, cred); err != nil {
		return err
	}

	logger.Warnw("bootstrap admin credential created with the default password, rotate it immediately", "username", username)
	return nil
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config{
		addr:        envString("ADDR", ":8080"),
		env:         envString("ENV", "development"),
		frontendURL: envString("FRONTEND_URL", "http://localhost:3000"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(envInt("DB_MAX_CONNS", 25)),
			maxIdleTime: envString("DB_MAX_IDLE_TIME", "15m"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			session: sessionConfig{
				ttl:               time.Hour * 24,
				bootstrapUser:     envString("ADMIN_USER", "admin"),
				bootstrapPassword: envString("ADMIN_PASSWORD", "change-me-now"),
			},
		},
		mail: mailConfig{
			enabled:    envBool("MAIL_ENABLED", false),
			host:       os.Getenv("MAIL_HOST"),
			port:       envInt("MAIL_PORT", 587),
			username:   os.Getenv("MAIL_USERNAME"),
			password:   os.Getenv("MAIL_PASSWORD"),
			fromEmail:  os.Getenv("MAIL_FROM_EMAIL"),
			adminEmail: os.Getenv("MAIL_ADMIN_EMAIL"),
		},
		rateLimiter: LoadRateLimiterConfig(),
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	if cfg.db.addr == "" {
		logger.Fatal("DB_ADDR is required")
	}

	// Database
	pool, err := db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal(err)
	}

	storage := store.NewStorage(pool)

	if err := bootstrapAdminCredential(ctx, logger, storage,
		cfg.auth.session.bootstrapUser, cfg.auth.session.bootstrapPassword); err != nil {
		logger.Fatal(err)
	}

	// Rate limiter state lives in the database so the window survives restarts.
	rateLimiter := ratelimiter.NewSlidingWindowLimiter(storage.RateLimit, cfg.rateLimiter)

	smtp := mailer.NewSMTPClient(
		cfg.mail.host,
		cfg.mail.port,
		cfg.mail.username,
		cfg.mail.password,
		cfg.mail.fromEmail,
	)

	app := &application{
		config:      cfg,
		logger:      logger,
		store:       storage,
		mailer:      smtp,
		rateLimiter: rateLimiter,
	}

	app.sweepExpiredSessions(time.Hour)

	// Metrics at /v1/metrics (prometheus) and /v1/debug/vars (expvar)
	prometheus.MustRegister(db.NewPoolStatsCollector(pool))
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
