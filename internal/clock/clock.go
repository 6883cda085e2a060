package clock

import (
	"context"
	"time"

	"github.com/i474232898/smart-mirror/internal/display"
)

const (
	timeLayout    = "15:04"
	secondsLayout = "05"
	dateLayout    = "Monday, January 02"
)

// Refresher publishes the wall clock once per run.
type Refresher struct {
	name string
	pub  display.Publisher
	now  func() time.Time
}

// NewRefresher creates a Refresher greeting name (e.g. "User!").
func NewRefresher(name string, pub display.Publisher) *Refresher {
	return &Refresher{
		name: name,
		pub:  pub,
		now:  time.Now,
	}
}

// Refresh formats the current local time and publishes it.
func (r *Refresher) Refresh(ctx context.Context) error {
	return r.pub.Publish(ctx, Format(r.now(), r.name))
}

// Format builds the clock fields for t.
func Format(t time.Time, name string) display.ClockUpdate {
	return display.ClockUpdate{
		Time:     t.Format(timeLayout),
		Seconds:  t.Format(secondsLayout),
		Date:     t.Format(dateLayout),
		Greeting: Greeting(t.Hour()) + ", " + name,
	}
}

// Greeting returns the salutation for an hour of the day.
func Greeting(hour int) string {
	switch {
	case hour < 12:
		return "Good Morning"
	case hour < 18:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}
