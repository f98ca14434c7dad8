package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"piperoute/internal/backend"
	"piperoute/internal/cache"
	"piperoute/internal/config"
	"piperoute/internal/geo"
	"piperoute/internal/geocode"
	"piperoute/internal/logger"
	"piperoute/internal/session"
	"piperoute/internal/ui"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// Options are the command line flags; each also reads its environment variable
type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile   string  `short:"c" long:"config"        env:"PIPEROUTE_CONFIG"      description:"Path to configuration file" default:"piperoute.yaml"`
	Desktop      bool    `long:"desktop"                 env:"PIPEROUTE_DESKTOP"     description:"Use the local desktop backend instead of the web backend"`
	BackendURL   string  `short:"b" long:"backend-url"   env:"PIPEROUTE_BACKEND_URL" description:"Web backend base URL"`
	SpawnBackend string  `long:"spawn-backend"           env:"PIPEROUTE_BACKEND_EXE" description:"Start this backend executable (desktop mode)"`
	CacheDir     string  `long:"cache"                   env:"PIPEROUTE_CACHE_DIR"   description:"Cache directory for map data (default: ~/.piperoute/data)"`
	NoBasemap    bool    `long:"no-basemap"                                          description:"Skip downloading and drawing map outlines"`
	Radius       float64 `short:"r" long:"radius"                                    description:"Initial map radius in miles"`
	Aspect       float64 `short:"a" long:"aspect"                                    description:"Character aspect ratio, adjust for font width (1.0-4.0)"`
	Downloads    string  `long:"downloads"                                           description:"Directory for reports and exports"`
}

func main() {
	// a missing .env is normal
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	closer, err := opts.Logger.Setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer closer.Close()

	configOpt := parser.FindOptionByLongName("config")
	requireConfig := configOpt != nil && configOpt.IsSet() && !configOpt.IsSetDefault()

	if err := run(opts, requireConfig); err != nil {
		log.Error().Err(err).Msg("piperoute failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}

	fmt.Println("\nGoodbye!")
}

func run(opts Options, requireConfig bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(opts.ConfigFile, requireConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.SpawnBackend != "" && !cfg.Desktop {
		return errors.New("--spawn-backend requires --desktop")
	}

	basemap := geo.Basemap{}
	if !opts.NoBasemap {
		basemap = loadBasemap(ctx, opts.CacheDir)
	}

	base, err := backend.ResolveBase(cfg.Desktop, cfg.Backend.URL, cfg.Backend.DesktopURL)
	if err != nil {
		return err
	}
	client, err := backend.New(base, backend.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		return err
	}
	log.Info().Str("base_url", base).Bool("desktop", cfg.Desktop).Msg("Backend selected")

	var proc *backend.Process
	if opts.SpawnBackend != "" {
		fmt.Printf("Starting backend %s...\n", opts.SpawnBackend)
		proc, err = backend.StartProcess(ctx, opts.SpawnBackend, nil, client, backend.DefaultHealthCheck)
		if err != nil {
			return fmt.Errorf("failed to start backend: %w", err)
		}
	}
	defer shutdown(client, proc)

	if err := client.OpenSession(ctx); err != nil {
		log.Warn().Err(err).Msg("Backend session not opened")
	}
	profileName := backendName(ctx, client, proc)

	geocoder := geocode.New(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, geocode.WithTimeout(cfg.Geocoder.Timeout))

	sess := session.New(ctx, geocoder, client, session.Options{
		DownloadDir:     cfg.Downloads,
		StartSites:      cfg.Sites.Start,
		EndSites:        cfg.Sites.End,
		RevalidateSites: cfg.Sites.Revalidate,
	})
	defer sess.Close()

	fmt.Printf("Starting piperoute (radius: %.0f miles, aspect: %.1f)...\n", cfg.Map.RadiusMiles, cfg.Map.AspectRatio)
	screen, err := ui.NewScreen()
	if err != nil {
		return err
	}
	app := ui.NewApp(screen, sess, basemap, ui.Options{
		Center:      cfg.Map.Center,
		RadiusMiles: cfg.Map.RadiusMiles,
		AspectRatio: cfg.Map.AspectRatio,
		Backend:     profileName,
	})

	// Run with panic recovery to ensure terminal is always restored
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("UI panic")
				fmt.Fprintf(os.Stderr, "\nPanic: %v\n", r)
			}
		}()

		err = app.Run(ctx)
	}()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func applyOverrides(cfg *config.Config, opts Options) {
	if opts.Desktop {
		cfg.Desktop = true
	}
	if opts.BackendURL != "" {
		cfg.Backend.URL = opts.BackendURL
	}
	if opts.Radius != 0 {
		cfg.Map.RadiusMiles = opts.Radius
	}
	if opts.Aspect != 0 {
		cfg.Map.AspectRatio = opts.Aspect
	}
	if opts.Downloads != "" {
		cfg.Downloads = opts.Downloads
	}
}

// loadBasemap fetches and reads the map outlines. The map works without them,
// so failures are reported and skipped.
func loadBasemap(ctx context.Context, cacheDir string) geo.Basemap {
	fmt.Println("Initializing map data cache...")
	manager, err := cache.NewManager(cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: map outlines disabled: %v\n", err)
		return geo.Basemap{}
	}

	fmt.Println("Checking Natural Earth data...")
	if err := manager.EnsureData(ctx, cache.BasemapFiles); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	fmt.Println("Loading map outlines...")
	basemap := geo.NewShapefileLoader(manager.GetCacheDir()).LoadBasemap(geo.DefaultBasemapLayers)
	fmt.Printf("Loaded %d outlines\n", basemap.Count())
	return basemap
}

// backendName returns the profile name shown in the panel, or "" if the
// backend does not answer
func backendName(ctx context.Context, client *backend.Client, proc *backend.Process) string {
	if proc != nil && proc.Profile() != nil {
		return proc.Profile().Name
	}

	profile, err := client.Profile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Backend profile unavailable")
		return ""
	}
	log.Info().Str("name", profile.Name).Msg("Backend profile")
	return profile.Name
}

// shutdown ends the backend session and stops a spawned backend
func shutdown(client *backend.Client, proc *backend.Process) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if proc != nil {
		if err := proc.Terminate(ctx); err != nil {
			log.Warn().Err(err).Msg("Backend shutdown failed")
		}
		return
	}

	if err := client.CloseSession(ctx); err != nil {
		log.Warn().Err(err).Msg("Backend session not closed")
	}
}
