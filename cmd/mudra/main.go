package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tracker"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML, JSON or TOML config file")
	addr := flag.String("addr", "", "listen address, overrides server.addr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudra: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := logging.New(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("mudra stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	logger.Info().
		Str("signal", cfg.Signal.Source).
		Str("shape", cfg.Particles.Shape).
		Int("count", cfg.Particles.Count).
		Msg("mudra - hand gesture particles")

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	registry := hook.NewRegistry(cfg.Hooks.Dir, logger)
	if err := registry.Discover(); err != nil {
		logger.Warn().Err(err).Str("dir", cfg.Hooks.Dir).Msg("hook discovery failed")
	}

	remote := cfg.Signal.Source == config.SignalRemote
	cell := &gesture.StateCell{}

	var tr app.Tracker
	if !remote {
		detCfg := cfg.Detector
		tr = tracker.New(tracker.Config{
			Camera: capture.NewCamera(),
			OpenDetector: func() (detector.Detector, error) {
				return detector.NewMediaPipeDetector(detCfg, logger)
			},
			Cell:            cell,
			MotionThreshold: cfg.Camera.MotionThreshold,
			Mirror:          cfg.Camera.Mirror,
			Logger:          logger,
		})
	}

	a, err := app.New(app.Config{
		Selection: app.Selection{
			Shape: shape.Kind(cfg.Particles.Shape),
			Color: cfg.Particles.Color,
			Count: cfg.Particles.Count,
			Text:  cfg.Particles.Text,
		},
		FPS:          cfg.Render.FPS,
		Debounce:     cfg.Debounce,
		Morph:        cfg.Morph,
		Seed:         cfg.Particles.Seed,
		FontPath:     cfg.Font.Path,
		Source:       cfg.Camera.Source,
		Remote:       remote,
		Cell:         cell,
		Tracker:      tr,
		Store:        st,
		HookRegistry: registry,
		HookExecutor: hook.NewExecutor(cfg.Hooks.Timeout),
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer a.Close()

	if !remote {
		if err := a.StartTracking(); err != nil {
			logger.Warn().Err(err).Msg("hand tracking not started")
		}
	}

	staticDir := cfg.Server.StaticDir
	if staticDir == "" || !isDir(staticDir) {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		logger.Info().Str("dir", staticDir).Msg("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		App:       a,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ctx, cfg.Server.Addr)
		stop()
	}()

	if cfg.Tray.Enabled {
		t := tray.New(tray.Config{
			App:       a,
			ViewerURL: viewerURL(cfg.Server.Addr),
			Logger:    logger,
		})
		t.OnQuit(stop)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		// The tray owns the main goroutine until it quits.
		t.Run()
		stop()
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	err = <-serveErr
	wg.Wait()
	a.StopTracking()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// viewerURL turns a listen address into a browsable URL.
func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if isDir(p) {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if isDir(homeWebDir) {
		return homeWebDir
	}

	return ""
}
