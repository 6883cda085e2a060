package providers

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/sony/gobreaker"
)

// IconFetcher implements weather.IconFetcher. Decoded icons are kept per URL
// for the lifetime of the process; the icon set is small and fixed.
type IconFetcher struct {
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker

	mu    sync.Mutex
	cache map[string]image.Image
}

func NewIconFetcher(cfg HTTPClientConfig) *IconFetcher {
	return &IconFetcher{
		httpCfg: cfg,
		circuit: newCircuitBreaker("icons"),
		cache:   make(map[string]image.Image),
	}
}

func (f *IconFetcher) FetchIcon(ctx context.Context, url string) (image.Image, error) {
	f.mu.Lock()
	img, ok := f.cache[url]
	f.mu.Unlock()
	if ok {
		return img, nil
	}

	resp, err := doRequestWithResilience(ctx, f.httpCfg, f.circuit, getRequest(url))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	img, _, err = image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode icon %s: %w", url, err)
	}

	f.mu.Lock()
	f.cache[url] = img
	f.mu.Unlock()

	return img, nil
}
