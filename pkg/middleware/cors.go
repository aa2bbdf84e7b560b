package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// AllowedMethods are the HTTP methods browsers may use cross-origin
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
}

// AllowedHeaders are the request headers browsers may send cross-origin
var AllowedHeaders = []string{
	"Origin",
	"Content-Type",
	"Accept",
	"Authorization",
}

// ExposedHeaders lets the frontend read the balance left after a purchase
var ExposedHeaders = []string{
	"Content-Disposition",
	"X-Credits-Remaining",
	"X-Total-Count",
}

// CORSConfig returns the CORS configuration for the given frontend origins
func CORSConfig(origins []string) middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     AllowedMethods,
		AllowHeaders:     AllowedHeaders,
		ExposeHeaders:    ExposedHeaders,
		AllowCredentials: true,
	}
}
