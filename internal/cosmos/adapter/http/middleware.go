package http

import (
	"strings"
	"time"

	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/logger"
	"cosmos-admin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const (
	requestIDLocal = "requestid"
	// mutations a single client may issue per minute
	mutationsPerMinute = 120
)

// RequestID assigns every request an id, echoed in X-Request-ID and sent to
// the service as the activity id.
func RequestID() []fiber.Handler {
	return []fiber.Handler{
		requestid.New(requestid.Config{
			Header:     fiber.HeaderXRequestID,
			Generator:  uuid.NewString,
			ContextKey: requestIDLocal,
		}),
		func(c *fiber.Ctx) error {
			if id, ok := c.Locals(requestIDLocal).(string); ok && id != "" {
				c.SetUserContext(utils.WithRequestID(c.UserContext(), id))
			}
			return c.Next()
		},
	}
}

// Protect requires a valid bearer token and records its subject as the caller.
func Protect(tokens *TokenService, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return writeError(c, log, errors.NewAuthenticationError("authentication required"))
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			log.WithContext(c.UserContext()).Warnf("Rejected admin token: %v", err)
			return writeError(c, log, errors.NewAuthenticationError("invalid token"))
		}

		c.SetUserContext(utils.WithSubject(c.UserContext(), claims.Subject))
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// CORS allows browser tooling on any origin. Credentials are bearer tokens only.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders: fiber.HeaderXRequestID,
		MaxAge:        86400,
	})
}

// SecurityHeaders adds security headers
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		return c.Next()
	}
}

// MutationLimiter rate limits the requests that change resources or
// provisioned throughput. Reads are not limited.
func MutationLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead
		},
		Max:               mutationsPerMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		// the remote address; forwarding headers are set by the client
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}
