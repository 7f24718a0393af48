package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/duelo/internal/adapters/discovery"
	"github.com/okian/duelo/internal/adapters/repository"
	"github.com/okian/duelo/internal/adapters/term"
	"github.com/okian/duelo/internal/app"
	"github.com/okian/duelo/internal/config"
	"github.com/okian/duelo/internal/domain/matchmaking"
	"github.com/okian/duelo/pkg/logger"
	"github.com/okian/duelo/pkg/metrics"
)

const metricsReadHeaderTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "duelo:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	var (
		extensions = flag.String("e", "", "file extensions to include, comma-separated (e.g. \"py,js,ts\")")
		knockout   = flag.Bool("k", false, "knockout mode: eliminate losers until one remains")
		power      = flag.Float64("p", 1.0, "power-law exponent favoring under-played entrants")
		poolSize   = flag.Int("n", 0, "limit the knockout pool to this many competitors")
		topSkew    = flag.Int("s", 0, "competitors drawn by the fixed top-skew curation phase")
	)
	flag.Parse()

	dir := "."
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}

	if *power <= 0 {
		return errors.New("power must be positive (e.g. 0.5, 1.0, 2.0)")
	}
	if *poolSize != 0 && *poolSize < 2 {
		return errors.New("pool size must be at least 2")
	}
	if *topSkew < 0 || (*poolSize > 0 && *topSkew > *poolSize) {
		return errors.New("top-skew size must be between 0 and the pool size")
	}
	if *topSkew > 0 && *poolSize == 0 {
		return errors.New("top-skew requires a pool size (-n)")
	}

	if err := logger.Init(); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		manager := metrics.NewManager()
		metrics.Install(manager)
		go serveMetrics(ctx, log, cfg.MetricsAddr, manager)
	}

	pattern, err := discovery.ExtensionsPattern(*extensions)
	if err != nil {
		return fmt.Errorf("bad extension list: %w", err)
	}

	store, err := repository.Open(filepath.Join(dir, cfg.DBName))
	if err != nil {
		return err
	}
	defer store.Close()

	scanner := discovery.NewScanner(dir, pattern, cfg.DBName)
	renderer := term.NewRenderer(os.Stdout, term.WithColor(cfg.Color))
	prompter := term.NewPrompter(os.Stdin, os.Stdout)

	svc := app.New(store, scanner, matchmaking.NewSelector(), renderer, prompter,
		app.WithLogger(log),
		app.WithLeaderboardSize(cfg.LeaderboardSize),
	)

	err = svc.Run(ctx, app.Params{
		Dir:      dir,
		Pattern:  pattern,
		Knockout: *knockout,
		Power:    *power,
		PoolSize: *poolSize,
		TopSkew:  *topSkew,
	})
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stdout, "\nGoodbye!")
		return nil
	}
	return err
}

// serveMetrics exposes the Prometheus endpoint until the context ends.
func serveMetrics(ctx context.Context, log logger.Logger, addr string, manager *metrics.Manager) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", manager.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn(ctx, "metrics server failed", logger.Error(err))
	}
}
