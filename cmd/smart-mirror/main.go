package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	httpapi "github.com/i474232898/smart-mirror/internal/api/http"
	"github.com/i474232898/smart-mirror/internal/assistant"
	"github.com/i474232898/smart-mirror/internal/clock"
	"github.com/i474232898/smart-mirror/internal/config"
	"github.com/i474232898/smart-mirror/internal/display"
	"github.com/i474232898/smart-mirror/internal/geo"
	"github.com/i474232898/smart-mirror/internal/gui"
	"github.com/i474232898/smart-mirror/internal/logging"
	"github.com/i474232898/smart-mirror/internal/news"
	"github.com/i474232898/smart-mirror/internal/providers"
	"github.com/i474232898/smart-mirror/internal/scheduler"
	"github.com/i474232898/smart-mirror/internal/store"
	"github.com/i474232898/smart-mirror/internal/weather"
)

func main() {
	envFile := pflag.StringP("env", "e", ".env", "path to an env file")
	windowed := pflag.BoolP("windowed", "w", false, "run in a window instead of fullscreen")
	pflag.Parse()

	envErr := godotenv.Load(*envFile)

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logging.NewConsole("info").Fatal().Err(err).Msg("failed to load config")
	}

	log := logging.NewConsole(cfg.LogLevel)
	if envErr != nil {
		log.Info().Err(envErr).Str("file", *envFile).Msg("no env file loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpCfg := providers.DefaultHTTPConfig(&http.Client{
		Timeout: cfg.HTTPTimeout,
	})

	loc, err := locator(cfg, httpCfg).Locate(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve location")
	}
	log.Info().
		Str("location", loc.Key()).
		Float64("latitude", loc.Latitude).
		Float64("longitude", loc.Longitude).
		Msg("location resolved")

	table, err := codeTable(cfg.WeatherTablePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load weather codes")
	}

	// The window and the state it shows; only the coordinator touches either.
	app := fyneapp.NewWithID("io.github.i474232898.smart-mirror")
	mirror := gui.New(app, *windowed)
	memStore := store.NewMemoryStore()
	coord := display.NewCoordinator(memStore, mirror, fyne.Do, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		coord.Run(ctx)
	}()

	// Refresh loops.
	sched := scheduler.New(ctx, log)
	mustRegister(log, sched.Register("clock", time.Second, clock.NewRefresher(cfg.Username, coord).Refresh))

	weatherRefresher := weather.NewRefresher(
		providers.NewOpenMeteoProvider(httpCfg),
		providers.NewIconFetcher(httpCfg),
		table, loc, coord, log,
	)
	mustRegister(log, sched.Register("weather", cfg.WeatherInterval, weatherRefresher.Refresh))

	var source news.Source = providers.NewGoogleNewsSource(httpCfg, loc)
	if cfg.Debug {
		source = news.Debug{}
	}
	mustRegister(log, sched.Register("news", cfg.NewsInterval, news.NewRefresher(source, coord, log).Refresh))

	sched.Start()
	defer sched.Stop()

	var srv *httpapi.Server
	if cfg.EnableStatusAPI {
		srv = httpapi.NewServer(cfg.StatusPort, memStore, sched, log)
		srv.Start()
	}

	if cfg.EnableAssistant {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runAssistant(ctx, cfg, coord, log)
		}()
	}

	// Signals close the window; closing the window ends the process.
	go func() {
		<-ctx.Done()
		fyne.Do(app.Quit)
	}()

	mirror.Window().ShowAndRun()
	stop()
	log.Info().Msg("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}
	wg.Wait()
}

func mustRegister(log zerolog.Logger, err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule job")
	}
}

// locator tries configured coordinates, then the configured city, then the
// public IP address.
func locator(cfg *config.AppConfig, httpCfg providers.HTTPClientConfig) geo.Locator {
	var chain geo.Chain
	if cfg.HasCoordinates() {
		static := geo.Static{
			Latitude:  *cfg.Latitude,
			Longitude: *cfg.Longitude,
			City:      cfg.LocationCity,
		}
		if len(cfg.LocationCountry) == 2 {
			static.CountryCode = strings.ToUpper(cfg.LocationCountry)
		} else {
			static.Country = cfg.LocationCountry
		}
		chain = append(chain, static)
	}
	if cfg.LocationCity != "" && cfg.GeocoderAPIKey != "" {
		chain = append(chain, providers.NewGeocodingLocator(cfg.GeocoderAPIKey, cfg.LocationCity, cfg.LocationCountry))
	}
	return append(chain, providers.NewIPInfoLocator(httpCfg))
}

func codeTable(path string) (*weather.CodeTable, error) {
	if path == "" {
		return weather.DefaultCodeTable()
	}
	return weather.LoadCodeTableFile(path)
}

// runAssistant blocks until ctx is done. A setup failure disables the
// assistant; the rest of the mirror keeps running.
func runAssistant(ctx context.Context, cfg *config.AppConfig, pub display.Publisher, log zerolog.Logger) {
	loop, release, err := assistant.Build(ctx, assistant.Options{
		CredentialsPath: cfg.CredentialsPath,
		Device: assistant.DeviceInfo{
			ID:       cfg.AssistantDeviceID,
			ModelID:  cfg.AssistantDeviceModelID,
			Language: cfg.AssistantLanguage,
		},
		Trigger:          cfg.AssistantTrigger,
		WhisperModelPath: cfg.WhisperModelPath,
		ChimePath:        cfg.TriggerSoundPath,
	}, log)
	if err != nil {
		log.Error().Err(err).Str("credentials", cfg.CredentialsPath).Msg("assistant disabled")
		log.Error().Msg("run google-oauthlib-tool to initialize new OAuth 2.0 credentials")
		return
	}
	defer release()

	loop.OnUtterance(func(u assistant.Utterance) {
		if err := pub.Publish(ctx, display.AssistantUpdate{Text: u.Text()}); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("failed to publish assistant update")
		}
	})
	if err := loop.Start(ctx); err != nil {
		log.Error().Err(err).Msg("failed to start assistant")
		return
	}

	<-ctx.Done()
	loop.Stop()
}

