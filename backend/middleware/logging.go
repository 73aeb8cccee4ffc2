package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LoggingMiddleware logs one line per request. colors tints the method and
// status for terminals.
func LoggingMiddleware(logger *log.Logger, colors bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()

		var statusColor, methodColor, reset string
		if colors {
			statusColor, methodColor, reset = getStatusColor(status), getMethodColor(method), "\033[0m"
		}

		user := "-"
		if id, ok := c.Locals(LocalUserID).(string); ok && id != "" {
			user = id
		}

		logger.Printf("%s %s%s%s %s %s%d%s %v user=%s",
			c.IP(),
			methodColor, method, reset,
			c.Path(),
			statusColor, status, reset,
			time.Since(start),
			user,
		)
		if err != nil {
			logger.Printf("request error: %v", err)
		}

		return err
	}
}

func getStatusColor(status int) string {
	switch {
	case status >= 500:
		return "\033[31m"
	case status >= 400:
		return "\033[33m"
	case status >= 300:
		return "\033[36m"
	case status >= 200:
		return "\033[32m"
	default:
		return "\033[37m"
	}
}

func getMethodColor(method string) string {
	switch method {
	case fiber.MethodGet:
		return "\033[34m"
	case fiber.MethodPost:
		return "\033[33m"
	case fiber.MethodPut:
		return "\033[36m"
	case fiber.MethodDelete:
		return "\033[31m"
	case fiber.MethodPatch:
		return "\033[32m"
	default:
		return "\033[37m"
	}
}
