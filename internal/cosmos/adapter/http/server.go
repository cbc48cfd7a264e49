package http

import (
	"context"
	"time"

	"cosmos-admin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the fiber application. When tokens is nil the routes are open.
func NewApp(h *Handler, tokens *TokenService, log logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "cosmos-admin",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(CORS())
	app.Use(SecurityHeaders())
	for _, mw := range RequestID() {
		app.Use(mw)
	}

	app.Get("/health", h.Health)
	if tokens != nil {
		app.Use(Protect(tokens, log))
	}
	app.Use(MutationLimiter())
	h.RegisterRoutes(app)
	return app
}

// Serve listens on addr until ctx is cancelled.
func Serve(ctx context.Context, app *fiber.App, addr string, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Admin HTTP surface listening on %s", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutting down admin HTTP surface")
		return app.ShutdownWithTimeout(5 * time.Second)
	}
}
