package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/quakewatch/pkg/config"
	"github.com/umputun/quakewatch/pkg/dispatch"
	"github.com/umputun/quakewatch/pkg/feed"
	"github.com/umputun/quakewatch/pkg/fetcher"
	"github.com/umputun/quakewatch/pkg/metrics"
	"github.com/umputun/quakewatch/pkg/notify"
	"github.com/umputun/quakewatch/pkg/scheduler"
	"github.com/umputun/quakewatch/pkg/store"
	"github.com/umputun/quakewatch/server"
)

// Opts with all CLI options
type Opts struct {
	Config       string        `short:"c" long:"config" env:"CONFIG" default:"quakewatch.yml" description:"configuration file"`
	Listen       string        `short:"l" long:"listen" env:"LISTEN" description:"status server listen address, overrides config"`
	Interval     time.Duration `short:"i" long:"interval" env:"INTERVAL" description:"poll interval, overrides config"`
	NotSkipFirst bool          `long:"not-skip-first" env:"NOT_SKIP_FIRST" description:"dispatch bulletins already in the feed at startup"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	SetupLog(opts.Debug)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run loads configuration, wires all components and blocks until ctx is canceled
// or the poll loop fails to start
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg, opts)

	// secrets are known only after config is loaded
	SetupLog(opts.Debug, cfg.Secrets()...)
	log.Printf("[INFO] starting quakewatch version %s, feed %s", revision, cfg.Feed.URL)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	logger := lgr.Default()

	general, emergency := buildTargets(cfg, logger)
	router := notify.NewRouter(notify.RouterConfig{General: general, Emergency: emergency, Logger: logger})
	gNames, eNames := router.Targets()
	log.Printf("[INFO] general targets %v, emergency targets %v, escalation locations %v",
		gNames, eNames, cfg.Notify.Locations)

	var history *store.Store
	if cfg.Store.Path != "" {
		history, err = store.New(ctx, store.Config{DSN: store.DSN(cfg.Store.Path)})
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer func() {
			if err := history.Close(); err != nil {
				log.Printf("[WARN] failed to close history store: %v", err)
			}
		}()
		log.Printf("[INFO] history store %s", cfg.Store.Path)
	}

	procCfg := dispatch.ProcessorConfig{
		Fetcher: fetcher.New(fetcher.Config{
			Attempts:  cfg.Fetch.Attempts,
			Delay:     cfg.Fetch.Delay,
			Timeout:   cfg.Fetch.Timeout,
			UserAgent: cfg.Feed.UserAgent,
			Logger:    logger,
		}),
		Notifier:  router,
		Locations: cfg.Notify.Locations,
		Logger:    logger,
		Metrics:   m,
	}
	if history != nil {
		procCfg.Archive = history
	}
	proc := dispatch.NewProcessor(procCfg)

	dispatcher := dispatch.New(dispatch.Config{
		Handlers:   proc.Handlers(),
		MaxWorkers: cfg.Poll.MaxWorkers,
		Logger:     logger,
		Metrics:    m,
	})

	poller := feed.NewPoller(feed.Config{
		URL:       cfg.Feed.URL,
		Timeout:   cfg.Feed.Timeout,
		UserAgent: cfg.Feed.UserAgent,
		Logger:    logger,
		Metrics:   m,
	})

	sched := scheduler.NewScheduler(scheduler.Params{
		Poller:     poller,
		Dispatcher: dispatcher,
		Interval:   cfg.Poll.Interval,
		SkipFirst:  cfg.Poll.SkipFirst,
		Logger:     logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })

	if cfg.Server.Listen != "" {
		params := server.Params{Status: sched, Gatherer: reg}
		if history != nil {
			params.History = history
		}
		srv := server.New(server.Config{
			Listen:  cfg.Server.Listen,
			Timeout: cfg.Server.Timeout,
			BaseURL: cfg.Server.BaseURL,
			Version: revision,
			Debug:   opts.Debug,
		}, params)
		g.Go(func() error { return srv.Run(gctx) })
	}

	return g.Wait()
}

// applyOverrides sets values given on the command line over the loaded config
func applyOverrides(cfg *config.Config, opts Opts) {
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.Interval > 0 {
		cfg.Poll.Interval = opts.Interval
	}
	if opts.NotSkipFirst {
		cfg.Poll.SkipFirst = false
	}
}

// buildTargets makes delivery targets from config. Without any configured target bulletins go to the log.
func buildTargets(cfg *config.Config, logger lgr.L) (general, emergency []notify.Target) {
	httpCfg := notify.HTTPConfig{Timeout: cfg.Notify.Timeout, Every: cfg.Notify.Every}

	if cfg.Notify.Log || !cfg.HasTargets() {
		if !cfg.HasTargets() {
			logger.Logf("[WARN] no notification targets configured, bulletins go to the log")
		}
		general = append(general, notify.NewLog(logger))
	}

	for i, u := range cfg.Notify.Discord.General {
		general = append(general, notify.NewDiscord(fmt.Sprintf("discord-general-%d", i+1), u, httpCfg))
	}
	for i, tok := range cfg.Notify.LINE.General {
		general = append(general, notify.NewLINE(fmt.Sprintf("line-general-%d", i+1), cfg.Notify.LINE.Endpoint, tok, httpCfg))
	}
	for i, u := range cfg.Notify.Discord.Emergency {
		emergency = append(emergency, notify.NewDiscord(fmt.Sprintf("discord-emergency-%d", i+1), u, httpCfg))
	}
	for i, tok := range cfg.Notify.LINE.Emergency {
		emergency = append(emergency, notify.NewLINE(fmt.Sprintf("line-emergency-%d", i+1), cfg.Notify.LINE.Endpoint, tok, httpCfg))
	}
	return general, emergency
}

// SetupLog configures lgr and the standard logger, secrets are masked in the output
func SetupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
