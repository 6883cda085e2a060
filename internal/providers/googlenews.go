package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed/rss"
	"github.com/sony/gobreaker"

	"github.com/i474232898/smart-mirror/internal/geo"
	"github.com/i474232898/smart-mirror/internal/news"
)

// ErrNoHeadlines is returned when the feed has no items.
var ErrNoHeadlines = errors.New("news feed has no items")

// GoogleNewsSource implements news.Source on the Google News RSS feeds.
// The location feed is used when the country resolves to a name, the
// top-stories feed otherwise.
type GoogleNewsSource struct {
	name     string
	baseURL  string
	language string
	region   string
	loc      geo.Location
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewGoogleNewsSource(cfg HTTPClientConfig, loc geo.Location) *GoogleNewsSource {
	return &GoogleNewsSource{
		name:     "googlenews",
		baseURL:  "https://news.google.com/rss",
		language: "en",
		region:   "US",
		loc:      loc,
		httpCfg:  cfg,
		circuit:  newCircuitBreaker("googlenews"),
	}
}

func (s *GoogleNewsSource) Name() string {
	return s.name
}

func (s *GoogleNewsSource) TopHeadline(ctx context.Context) (news.Headline, error) {
	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, getRequest(s.feedURL()))
	if err != nil {
		return news.Headline{}, err
	}
	defer resp.Body.Close()

	parser := rss.Parser{}
	feed, err := parser.Parse(resp.Body)
	if err != nil {
		return news.Headline{}, fmt.Errorf("parse news feed: %w", err)
	}
	if len(feed.Items) == 0 {
		return news.Headline{}, ErrNoHeadlines
	}

	item := feed.Items[0]
	title := strings.TrimSpace(item.Title)

	var publisher string
	if item.Source != nil {
		publisher = strings.TrimSpace(item.Source.Title)
	}
	if publisher == "" {
		_, publisher = news.SplitPublisher(title)
	}

	return news.Headline{
		Title:     title,
		Publisher: publisher,
	}, nil
}

func (s *GoogleNewsSource) feedURL() string {
	values := url.Values{}
	values.Set("hl", s.language+"-"+s.region)
	values.Set("gl", s.region)
	values.Set("ceid", s.region+":"+s.language)

	name, err := s.loc.CountryName()
	if err != nil {
		return s.baseURL + "?" + values.Encode()
	}
	return s.baseURL + "/headlines/section/geo/" + url.PathEscape(name) + "?" + values.Encode()
}
