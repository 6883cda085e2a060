package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/i474232898/smart-mirror/internal/display"
	"github.com/i474232898/smart-mirror/internal/scheduler"
	"github.com/i474232898/smart-mirror/internal/store"
)

var validate = validator.New()

// Snapshotter returns what the mirror currently shows.
type Snapshotter interface {
	Snapshot() (display.State, error)
}

// Runner triggers a refresh job by name.
type Runner interface {
	RunNow(name string) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. Manual
// refreshes share limiter across all sections.
func RegisterRoutes(app *fiber.App, states Snapshotter, jobs Runner, limiter *rate.Limiter) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "smart-mirror",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/display", func(c *fiber.Ctx) error {
		state, err := states.Snapshot()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "nothing displayed yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read display state")
		}
		return c.JSON(state)
	})

	v1.Post("/refresh/:section", func(c *fiber.Ctx) error {
		req := refreshRequest{Section: c.Params("section")}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if !limiter.Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "refresh rate exceeded")
		}

		if err := jobs.RunNow(req.Section); err != nil {
			if errors.Is(err, scheduler.ErrUnknownJob) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to trigger refresh")
		}

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"section": req.Section,
			"status":  "scheduled",
		})
	})
}

// refreshRequest holds the path parameters of a manual refresh.
type refreshRequest struct {
	Section string `validate:"required,oneof=clock weather news"`
}
