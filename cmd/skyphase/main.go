package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"skyphase/internal/api"
	"skyphase/pkg/config"
	"skyphase/pkg/logging"
	"skyphase/pkg/phase"
	"skyphase/pkg/probe"
	"skyphase/pkg/recorder"
	"skyphase/pkg/sim"
	"skyphase/pkg/sim/mocksim"
	"skyphase/pkg/sim/xplane"
	"skyphase/pkg/telemetry"
	"skyphase/pkg/tracker"
	"skyphase/pkg/version"
)

var (
	configPath = flag.String("config", "configs/skyphase.yaml", "Path to config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.Save(*configPath, config.DefaultConfig()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// .env is optional; it feeds env fallbacks like XPLANE_HOST.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("SkyPhase started", "version", version.Version)

	provider, err := initProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize sim provider: %w", err)
	}

	stats := tracker.New()
	sampler := telemetry.NewSampler(provider, samplerConfig(cfg), stats)

	profiles, err := initProfiles(cfg)
	if err != nil {
		return err
	}
	bus := phase.NewBus()
	detector := phase.NewDetector(profiles, bus)
	detector.SetCategory(cfg.Phase.Category)
	if cfg.Phase.Departure.IsSet() {
		d := cfg.Phase.Departure
		detector.SetDeparture(d.Lat, d.Lon, d.Heading)
	}
	if cfg.Phase.Arrival.IsSet() {
		a := cfg.Phase.Arrival
		detector.SetArrival(a.Lat, a.Lon, a.Heading)
	}

	// The sampler never consults the detector directly: the detected phase
	// drives the poll interval through the transition bus.
	if cfg.Sampler.Adaptive {
		bus.Subscribe(func(tr phase.Transition) {
			sampler.SetInterval(phase.PollInterval(tr.To))
		})
	}

	statusH := api.NewStatusHandler(detector.History)
	statusH.SetCategory(cfg.Phase.Category)
	hub := api.NewWSHub(statusH)
	bus.Subscribe(statusH.UpdateTransition)
	bus.Subscribe(hub.OnTransition)

	var rec *recorder.Recorder
	if cfg.Recorder.Enabled {
		db, err := recorder.Init(cfg.Recorder.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize recorder: %w", err)
		}
		defer db.Close()
		rec = recorder.New(db, cfg.Recorder.Interval.Std())
		bus.Subscribe(rec.OnTransition)
	}

	// The recording session opens on the first published snapshot so the
	// sessions row carries a real capture time and aircraft identity
	// instead of an empty pre-cycle snapshot.
	var startSession sync.Once
	sampler.OnSnapshot(func(s telemetry.Snapshot) {
		detector.Process(s)
		statusH.UpdateSnapshot(s)
		if s.AircraftCategory != "" {
			statusH.SetCategory(s.AircraftCategory)
		}
		if rec != nil {
			startSession.Do(func() {
				if _, err := rec.StartSession(s); err != nil {
					slog.Error("Failed to start recording session", "error", err)
				}
			})
			rec.OnSnapshot(s)
		}
	})

	// Startup checks. The provider check fails only on endpoint
	// misconfiguration; a simulator that is not up yet still passes and
	// the sampler serves stale snapshots until data flows.
	results := probe.Run(ctx, []probe.Probe{
		{
			Name:     "sim provider",
			Critical: true,
			Check:    func(context.Context) error { return provider.Connect() },
		},
	})
	if err := probe.Analyze(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	if err := sampler.Start(); err != nil {
		return fmt.Errorf("failed to start sampler: %w", err)
	}
	defer sampler.Stop()

	if rec != nil {
		defer func() {
			// No session means no snapshot ever arrived; nothing to end.
			if err := rec.EndSession(); err != nil && !errors.Is(err, recorder.ErrNoSession) {
				slog.Error("Failed to end recording session", "error", err)
			}
		}()
	}

	return runServer(ctx, cfg, statusH, hub, rec)
}

func initProvider(cfg *config.Config) (sim.Provider, error) {
	switch cfg.Sim.Provider {
	case "mock":
		slog.Info("Using mock sim provider")
		return mocksim.New(), nil
	case "xplane", "":
		slog.Info("Using X-Plane provider",
			"host", cfg.Sim.XPlane.Host, "port", cfg.Sim.XPlane.Port)
		return xplane.New(cfg.Sim.XPlane.Host, cfg.Sim.XPlane.Port), nil
	default:
		return nil, fmt.Errorf("unknown sim provider: %q", cfg.Sim.Provider)
	}
}

func samplerConfig(cfg *config.Config) telemetry.Config {
	return telemetry.Config{
		Interval:         cfg.Sampler.Interval.Std(),
		MinInterval:      cfg.Sampler.MinInterval.Std(),
		PayloadInterval:  cfg.Sampler.PayloadInterval.Std(),
		IdentityInterval: cfg.Sampler.IdentityInterval.Std(),
		StopTimeout:      cfg.Sampler.StopTimeout.Std(),
	}
}

func initProfiles(cfg *config.Config) (*phase.ProfileTable, error) {
	if cfg.Phase.ProfilesPath == "" {
		return phase.DefaultTable(), nil
	}
	profiles, err := phase.LoadTable(cfg.Phase.ProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load aircraft profiles: %w", err)
	}
	return profiles, nil
}

func runServer(ctx context.Context, cfg *config.Config, statusH *api.StatusHandler, hub *api.WSHub, rec *recorder.Recorder) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	var exp api.Exporter
	if rec != nil {
		exp = rec
	}
	srv := api.NewServer(cfg.Server.Address, statusH, hub, exp, shutdownFunc)

	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
