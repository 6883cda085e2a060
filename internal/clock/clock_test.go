package clock

import (
	"context"
	"testing"
	"time"

	"github.com/i474232898/smart-mirror/internal/display"
)

type capturePublisher struct {
	updates []display.Update
}

func (p *capturePublisher) Publish(_ context.Context, u display.Update) error {
	p.updates = append(p.updates, u)
	return nil
}

func TestFormat(t *testing.T) {
	ts := time.Date(2024, time.July, 4, 9, 5, 7, 0, time.Local)

	got := Format(ts, "Ada!")

	want := display.ClockUpdate{
		Time:     "09:05",
		Seconds:  "07",
		Date:     "Thursday, July 04",
		Greeting: "Good Morning, Ada!",
	}
	if got != want {
		t.Fatalf("Format() = %+v, want %+v", got, want)
	}
}

func TestGreeting(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, "Good Morning"},
		{11, "Good Morning"},
		{12, "Good Afternoon"},
		{17, "Good Afternoon"},
		{18, "Good Evening"},
		{23, "Good Evening"},
	}
	for _, tc := range cases {
		if got := Greeting(tc.hour); got != tc.want {
			t.Errorf("Greeting(%d) = %q, want %q", tc.hour, got, tc.want)
		}
	}
}

// TestRefreshOncePerSecond checks that consecutive runs one second apart
// publish one update each, with the seconds field advancing.
func TestRefreshOncePerSecond(t *testing.T) {
	pub := &capturePublisher{}
	r := NewRefresher("User!", pub)

	start := time.Date(2024, time.January, 1, 17, 59, 58, 0, time.Local)
	tick := 0
	r.now = func() time.Time {
		t := start.Add(time.Duration(tick) * time.Second)
		tick++
		return t
	}

	for i := 0; i < 3; i++ {
		if err := r.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}

	if len(pub.updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(pub.updates))
	}

	wantSeconds := []string{"58", "59", "00"}
	for i, u := range pub.updates {
		cu := u.(display.ClockUpdate)
		if cu.Seconds != wantSeconds[i] {
			t.Errorf("update %d seconds = %q, want %q", i, cu.Seconds, wantSeconds[i])
		}
	}

	last := pub.updates[2].(display.ClockUpdate)
	if last.Time != "18:00" || last.Greeting != "Good Evening, User!" {
		t.Fatalf("unexpected rollover update: %+v", last)
	}
}
