package main

// @title EasyProspect API
// @version 1.0
// @description B2B company contact marketplace: search, quote, preview and buy contact lists with credits.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"

	"github.com/easyprospect/api/config"
	apierrors "github.com/easyprospect/api/pkg/api/errors"
	"github.com/easyprospect/api/pkg/api/handlers"
	"github.com/easyprospect/api/pkg/auth"
	"github.com/easyprospect/api/pkg/billing"
	"github.com/easyprospect/api/pkg/cache"
	"github.com/easyprospect/api/pkg/companies"
	"github.com/easyprospect/api/pkg/credits"
	"github.com/easyprospect/api/pkg/database"
	"github.com/easyprospect/api/pkg/email"
	"github.com/easyprospect/api/pkg/export"
	"github.com/easyprospect/api/pkg/jobs"
	"github.com/easyprospect/api/pkg/lists"
	"github.com/easyprospect/api/pkg/logger"
	custommiddleware "github.com/easyprospect/api/pkg/middleware"
	"github.com/easyprospect/api/pkg/quote"
	"github.com/easyprospect/api/pkg/secrets"
	"github.com/easyprospect/api/pkg/users"
)

func main() {
	// Load configuration
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel)
	apierrors.Log = appLog
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Resolve credentials from the secrets backend
	secretStore, err := secrets.NewManager(secrets.AutoDetectConfig())
	if err != nil {
		log.Fatalf("❌ Failed to initialize secrets manager: %v", err)
	}
	if err := secrets.Apply(context.Background(), secretStore, cfg); err != nil {
		log.Fatalf("❌ Failed to load secrets: %v", err)
	}
	defer secretStore.Close()

	// Initialize Sentry for error tracking
	var extra []echo.MiddlewareFunc
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.APIEnvironment,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.APIEnvironment)
			defer sentry.Flush(2 * time.Second)
			// Repanic so the Recover middleware still answers
			extra = append(extra, sentryecho.New(sentryecho.Options{Repanic: true}))
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	pool := database.DefaultPoolConfig()
	pool.MaxOpenConns = cfg.DBMaxOpenConns
	pool.MaxIdleConns = cfg.DBMaxIdleConns
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL, pool, &database.SSLConfig{
		Mode:         cfg.DBSSLMode,
		CertPath:     cfg.DBSSLCert,
		KeyPath:      cfg.DBSSLKey,
		RootCertPath: cfg.DBSSLRootCert,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(ctx)
		cancel()
		if err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}

	// Redis is optional: quotes and stats fall back to the database, but
	// logout cannot revoke tokens without it
	var redisClient *cache.Client
	var blacklist *auth.TokenBlacklist
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, running without cache: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			blacklist = auth.NewTokenBlacklist(redisClient)
		}
	}

	// Services
	companyRepo := companies.NewRepository(db.DB)
	companyService := companies.NewService(companyRepo, redisClient, appLog)
	quoteService := quote.NewService(companyRepo, redisClient, appLog)
	ledger := credits.NewLedger(db.DB, appLog)
	exportService := export.NewService(db.DB, companyRepo, ledger, quoteService, appLog)
	listService := lists.NewService(lists.NewRepository(db.DB), appLog)
	userService := users.NewService(users.NewRepository(db.DB), cfg.SignupCredits, appLog)
	emailService := email.NewService(cfg.EmailFrom, cfg.EmailFromName, cfg.FrontendURL, cfg.SendGridAPIKey)

	var billingHandler *handlers.BillingHandler
	if cfg.StripeSecretKey != "" {
		billingService := billing.NewService(&billing.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			PriceSmall:    cfg.StripePriceSmall,
			PriceMedium:   cfg.StripePriceMedium,
			PriceLarge:    cfg.StripePriceLarge,
			SuccessURL:    cfg.FrontendURL + "/creditos?status=success",
			CancelURL:     cfg.FrontendURL + "/creditos?status=cancelled",
			BaseURL:       cfg.FrontendURL,
		}, ledger, userService)
		billingService.SetEmailSender(billing.NewEmailServiceAdapter(emailService))
		billingHandler = handlers.NewBillingHandler(billingService, userService)
		log.Printf("✅ Stripe billing enabled")
	} else {
		log.Printf("ℹ️  Stripe billing disabled (no secret key configured)")
	}

	rateLimiter := custommiddleware.NewRateLimiter(custommiddleware.RateLimits{
		RequestsPerMinute: cfg.RateLimitRequestsPerMinute,
		Burst:             cfg.RateLimitBurst,
	})
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go rateLimiter.Cleanup(bgCtx, 10*time.Minute)

	srv := &server{
		jwtSecret:   cfg.JWTSecret,
		blacklist:   blacklist,
		origins:     cfg.CORSAllowedOrigins,
		rateLimiter: rateLimiter,
		environment: cfg.APIEnvironment,
		health:      handlers.NewHealthHandler(db, redisClient),
		companies:   handlers.NewCompanyHandler(companyService, quoteService),
		exports:     handlers.NewExportHandler(exportService, emailService, appLog),
		credits:     handlers.NewCreditHandler(ledger),
		lists:       handlers.NewListHandler(listService),
		auth: handlers.NewAuthHandler(userService, handlers.TokenConfig{
			Secret:          cfg.JWTSecret,
			ExpirationHours: cfg.JWTExpirationHours,
		}, blacklist, emailService, appLog),
		billing: billingHandler,
		extra:   extra,
	}
	e := srv.router()

	// Scheduled jobs
	cronManager := jobs.NewCronManager(jobs.NewDataMonitor(companyService, redisClient, appLog), cfg.StatsRefreshSchedule, appLog)
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to configure cron jobs: %v", err)
	}
	cronManager.Start()

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 EasyProspect API starting on %s", address)
	log.Printf("📝 Log level: %s", cfg.LogLevel)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🌍 CORS: %v", cfg.CORSAllowedOrigins)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Stats refresh: %s", cfg.StatsRefreshSchedule)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	// Stop cron jobs
	<-cronManager.Stop().Done()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
