package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses unless the handler did.
// Saved locations must always be revalidated: clients rebuild their list from the server
// and a stale copy would hide locations saved elsewhere.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/health" || path == "/ready" || path == "/metrics":
			ttl = "no-store"
		case strings.HasPrefix(path, "/api/locations"):
			ttl = "no-cache" // revalidate with ETag
		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
