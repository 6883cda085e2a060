package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Server is the optional status API.
type Server struct {
	app  *fiber.App
	addr string
	log  zerolog.Logger
}

// NewServer builds the Fiber app with the routes registered. Manual
// refreshes are allowed once every 10 seconds with a burst of 3.
func NewServer(port string, states Snapshotter, jobs Runner, log zerolog.Logger) *Server {
	app := NewApp()
	app.Use(logger.New())
	app.Use(recover.New())

	RegisterRoutes(app, states, jobs, rate.NewLimiter(rate.Every(10*time.Second), 3))

	return &Server{
		app:  app,
		addr: ":" + port,
		log:  log.With().Str("component", "api").Logger(),
	}
}

// NewApp returns a Fiber app with the JSON error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               "smart-mirror",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})
}

// Start listens in the background.
func (s *Server) Start() {
	s.log.Info().Str("addr", s.addr).Msg("status api listening")
	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			s.log.Error().Err(err).Msg("fiber server stopped")
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
