package news

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/i474232898/smart-mirror/internal/display"
)

// Headline is one news item as the mirror shows it.
type Headline struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
}

// Source returns the current top headline.
type Source interface {
	Name() string
	TopHeadline(ctx context.Context) (Headline, error)
}

// Debug is a Source that always returns a canned headline.
type Debug struct{}

func (Debug) Name() string { return "debug" }

func (Debug) TopHeadline(context.Context) (Headline, error) {
	return Headline{
		Title:     "A kid in Alaska chews on gummy bears as his daily snack.",
		Publisher: "CNN",
	}, nil
}

// StripPublisher removes one trailing " - <publisher>" from title.
func StripPublisher(title, publisher string) string {
	if publisher == "" {
		return title
	}
	return strings.TrimSuffix(title, " - "+publisher)
}

// SplitPublisher splits "Title - Publisher" at the last separator. It is used
// when a feed item carries no explicit source.
func SplitPublisher(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i < 0 {
		return title, ""
	}
	return title[:i], title[i+3:]
}

// Refresher publishes the news section of the display.
type Refresher struct {
	source Source
	pub    display.Publisher
	log    zerolog.Logger
}

// NewRefresher creates a new Refresher.
func NewRefresher(source Source, pub display.Publisher, log zerolog.Logger) *Refresher {
	return &Refresher{
		source: source,
		pub:    pub,
		log:    log.With().Str("component", "news").Str("source", source.Name()).Logger(),
	}
}

// Refresh fetches the top headline and publishes it. On error nothing is
// published, so the previous headline stays on screen.
func (r *Refresher) Refresh(ctx context.Context) error {
	h, err := r.source.TopHeadline(ctx)
	if err != nil {
		return err
	}

	update := display.NewsUpdate{
		Headline:  StripPublisher(h.Title, h.Publisher),
		Publisher: " - " + h.Publisher,
	}
	r.log.Debug().Str("headline", update.Headline).Msg("news refreshed")

	return r.pub.Publish(ctx, update)
}
