package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSPolicy builds the allow-list cross-origin policy. Only the listed origins receive
// Access-Control-Allow-Origin; credentials are never allowed.
func CORSPolicy(origins []string, maxAge int) cors.Config {
	return cors.Config{
		AllowOrigins:     strings.Join(origins, ", "),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: false,
		MaxAge:           maxAge,
	}
}

// CORSMiddleware returns the Fiber handler enforcing CORSPolicy.
func CORSMiddleware(origins []string, maxAge int) fiber.Handler {
	return cors.New(CORSPolicy(origins, maxAge))
}
