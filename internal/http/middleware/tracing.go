package middleware

import (
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
)

// untraced paths are probes and scrapes.
var untraced = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/metrics": true,
}

// Tracing starts a server span per request using the global tracer provider.
func Tracing(serverName string) fiber.Handler {
	return otelfiber.Middleware(
		otelfiber.WithServerName(serverName),
		otelfiber.WithNext(func(c *fiber.Ctx) bool {
			return untraced[c.Path()]
		}),
	)
}
