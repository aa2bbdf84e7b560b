package main

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/easyprospect/api/pkg/api/handlers"
	custommw "github.com/easyprospect/api/pkg/api/middleware"
	"github.com/easyprospect/api/pkg/auth"
	"github.com/easyprospect/api/pkg/metrics"
	custommiddleware "github.com/easyprospect/api/pkg/middleware"
)

// server holds what the router needs
type server struct {
	jwtSecret   string
	blacklist   *auth.TokenBlacklist
	origins     []string
	rateLimiter *custommiddleware.RateLimiter
	environment string

	health    *handlers.HealthHandler
	companies *handlers.CompanyHandler
	exports   *handlers.ExportHandler
	credits   *handlers.CreditHandler
	lists     *handlers.ListHandler
	auth      *handlers.AuthHandler
	billing   *handlers.BillingHandler

	// extra global middleware, sentry when configured
	extra []echo.MiddlewareFunc
}

func (s *server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d (%s)", v.Method, v.URI, v.Status, v.Latency.Round(time.Millisecond))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(s.extra...)
	e.Use(metrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(s.origins)))
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))
	if s.rateLimiter != nil {
		e.Use(s.rateLimiter.Middleware())
	}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "EasyProspect API",
			"status":      "running",
			"environment": s.environment,
			"timestamp":   time.Now().Unix(),
		})
	})
	e.GET("/health", s.health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")
	v1.GET("/health", s.health.Check)

	requireAuth := custommw.JWTMiddleware(s.jwtSecret, s.blacklist)
	optionalAuth := custommw.OptionalJWT(s.jwtSecret, s.blacklist)
	requireAdmin := custommiddleware.RequireAdmin()
	// responses carrying contact data are never cached
	noStore := custommiddleware.SecurityHeaders(custommiddleware.SecurityHeadersConfig{NoStore: true})

	// Authentication
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", s.auth.Register)
	authGroup.POST("/login", s.auth.Login)
	authGroup.POST("/logout", s.auth.Logout, requireAuth)
	authGroup.GET("/me", s.auth.Me, requireAuth)

	// Companies
	companiesGroup := v1.Group("/companies")
	companiesGroup.GET("", s.companies.Search)
	companiesGroup.GET("/stats", s.companies.Stats)
	companiesGroup.GET("/:id", s.companies.Get)
	companiesGroup.POST("", s.companies.Create, requireAuth, requireAdmin)

	// Exports
	exportsGroup := v1.Group("/exports")
	exportsGroup.GET("/preview", s.exports.Preview)
	exportsGroup.GET("/csv", s.exports.PublicCSV)
	exportsGroup.GET("/document", s.exports.PublicDocument)
	exportsGroup.POST("/purchase", s.exports.Purchase, requireAuth, noStore)

	// Credits
	userGroup := v1.Group("/user", requireAuth)
	userGroup.GET("/credits", s.credits.Balance)
	userGroup.GET("/downloads", s.credits.Downloads)

	// Lists
	listsGroup := v1.Group("/lists")
	listsGroup.GET("", s.lists.Search, optionalAuth)
	listsGroup.GET("/:id", s.lists.Get, optionalAuth)
	listsGroup.POST("", s.lists.Create, requireAuth, requireAdmin)
	listsGroup.PUT("/:id", s.lists.Update, requireAuth, requireAdmin)
	listsGroup.DELETE("/:id", s.lists.Delete, requireAuth, requireAdmin)

	// Billing
	if s.billing != nil {
		billingGroup := v1.Group("/billing")
		billingGroup.GET("/packs", s.billing.Packs)
		billingGroup.POST("/checkout", s.billing.Checkout, requireAuth)
		v1.POST("/webhooks/stripe", s.billing.Webhook)
	}

	return e
}
