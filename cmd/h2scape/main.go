package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/h2scape/engine"
	"github.com/Carmen-Shannon/h2scape/engine/facility"
	"github.com/Carmen-Shannon/h2scape/engine/renderer"
	"github.com/Carmen-Shannon/h2scape/engine/terminal"
	"github.com/Carmen-Shannon/h2scape/engine/window"
	"github.com/Carmen-Shannon/h2scape/internal/config"
	"github.com/Carmen-Shannon/h2scape/internal/logging"
	"github.com/Carmen-Shannon/h2scape/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type flags struct {
	configPath   string
	profile      string
	backend      string
	primary      int
	electrolysis int
	metricsAddr  string
}

// GLFW must run on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:          "h2scape",
		Short:        "Procedural green-hydrogen facility viewer",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *f)
			if err != nil {
				return err
			}
			return run(cfg, f.configPath)
		},
	}
	bindFlags(cmd, f)
	return cmd
}

func bindFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "TOML or YAML config file, watched for count changes")
	cmd.Flags().StringVar(&f.profile, "profile", "", "facility profile (wind|solar)")
	cmd.Flags().StringVar(&f.backend, "backend", "", "renderer backend (wgpu|terminal)")
	cmd.Flags().IntVar(&f.primary, "primary", 0, "number of power source units")
	cmd.Flags().IntVar(&f.electrolysis, "electrolysis", 0, "number of electrolysis units")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "HTTP address for Prometheus /metrics")
}

// loadConfig reads the config file, if any, and applies the flags the user set over it.
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	set := cmd.Flags().Changed
	if set("profile") {
		cfg.Profile = f.profile
	}
	if set("backend") {
		cfg.Renderer.Backend = f.backend
	}
	if set("primary") {
		cfg.Params.PrimaryUnitCount = f.primary
	}
	if set("electrolysis") {
		cfg.Params.ElectrolysisUnitCount = f.electrolysis
	}
	if set("metrics-addr") {
		cfg.Metrics.Addr = f.metricsAddr
	}
	return cfg, cfg.Validate()
}

func run(cfg config.Config, configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, _ := renderer.ParseBackendType(cfg.Renderer.Backend)

	// the terminal backend owns the screen, so logs and stdout spans go to a file or nowhere
	out, closeOut, err := outputFor(cfg, backend)
	if err != nil {
		return err
	}
	defer closeOut()

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: out})

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
		Output:      out,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewEngineCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, collector, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	profile, _ := facility.ProfileByName(cfg.Profile)
	options := []engine.EngineBuilderOption{
		engine.WithProfile(profile),
		engine.WithParameters(cfg.Params.Facility()),
		engine.WithFrameRate(float64(cfg.Engine.FrameRate)),
		engine.WithMaxUnitCount(cfg.Engine.MaxUnitCount),
		engine.WithWorkers(cfg.Engine.Workers),
		engine.WithProfiling(cfg.Engine.Profiling),
		engine.WithLogger(log),
		engine.WithMetrics(collector),
	}
	if cfg.Engine.Seed != 0 {
		options = append(options, engine.WithSeed(cfg.Engine.Seed))
	}

	switch backend {
	case renderer.BackendTypeTerminal:
		return runTerminal(ctx, cfg, configPath, options, log)
	default:
		return runWindow(ctx, cfg, configPath, options, log)
	}
}

func runTerminal(ctx context.Context, cfg config.Config, configPath string, options []engine.EngineBuilderOption, log logging.Logger) error {
	var eng engine.Engine
	term, err := terminal.NewTerminal(terminal.WithOnClose(func() {
		if eng != nil {
			eng.Unmount()
		}
	}))
	if err != nil {
		return err
	}
	defer term.Close()

	eng = engine.NewEngine(append(options, engine.WithRendererFactory(func(engine.MountTarget) (renderer.Renderer, error) {
		return renderer.NewTerminalRenderer(term.Screen()), nil
	}))...)
	dispose, err := eng.Mount(term)
	if err != nil {
		return fmt.Errorf("mount engine: %w", err)
	}
	defer dispose()

	go watchConfig(ctx, configPath, cfg, eng, log)
	term.Run(ctx)
	return nil
}

func runWindow(ctx context.Context, cfg config.Config, configPath string, options []engine.EngineBuilderOption, log logging.Logger) error {
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)

	var rendererOptions []renderer.RendererBuilderOption
	if !cfg.Renderer.VSync {
		rendererOptions = append(rendererOptions, renderer.WithPresentMode(renderer.PresentModeUncapped))
	}
	if !cfg.Renderer.MSAA {
		rendererOptions = append(rendererOptions, renderer.WithMSAA(renderer.MSAAOff))
	}

	eng := engine.NewEngine(append(options, engine.WithRendererFactory(func(engine.MountTarget) (renderer.Renderer, error) {
		return renderer.NewWGPURenderer(win, rendererOptions...), nil
	}))...)
	dispose, err := eng.Mount(win)
	if err != nil {
		_ = win.Close()
		return fmt.Errorf("mount engine: %w", err)
	}

	go watchConfig(ctx, configPath, cfg, eng, log)

	// the surface must be released before the window is destroyed
	win.SetUpdateCallback(func() {
		if ctx.Err() != nil {
			dispose()
			_ = win.Close()
		}
	})
	win.ProcessMessages()
	dispose()
	_ = win.Close()
	return nil
}

// watchConfig applies facility count changes from the config file until ctx is done.
func watchConfig(ctx context.Context, path string, current config.Config, eng engine.Engine, log logging.Logger) {
	if path == "" {
		return
	}
	err := config.Watch(ctx, path, log, func(next config.Config) {
		if next.Profile != current.Profile || next.Renderer.Backend != current.Renderer.Backend {
			log.Warn(ctx, "profile and backend changes apply on restart",
				logging.String("profile", next.Profile),
				logging.String("backend", next.Renderer.Backend),
			)
		}
		if err := eng.SetParameters(ctx, next.Params.Facility()); err != nil {
			log.Error(ctx, "applying config change failed", logging.Err(err))
		}
	})
	if err != nil {
		log.Warn(ctx, "config hot reload disabled", logging.Err(err))
	}
}

func outputFor(cfg config.Config, backend renderer.RendererBackendType) (io.Writer, func(), error) {
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}
	if backend == renderer.BackendTypeTerminal {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}

func serveMetrics(addr string, collector *observability.EngineCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
