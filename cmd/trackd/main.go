package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"trackd/internal/config"
	"trackd/internal/demo"
	"trackd/internal/httpapi"
	"trackd/internal/track"
	"trackd/pkg/types"
)

func main() {
	defaultAddr := ":8080"
	if v := os.Getenv("TRACKD_ADDR"); v != "" {
		defaultAddr = v
	}
	addr := flag.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	cfgPath := flag.String("config", "", "Optional config file (.yaml/.json/.toml)")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	demoEnabled := flag.Bool("demo", true, "Run the built-in simulation sources")
	updateMS := flag.Int("update-interval-ms", 0, "Minimum gap between notifications per attribute (0 = default 50)")
	flag.Parse()

	var cfg config.Config
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	// file config wins where set; flags fill the gaps
	if cfg.Addr == "" {
		cfg.Addr = *addr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = *logLevel
	}
	if cfg.UpdateIntervalMS == 0 {
		cfg.UpdateIntervalMS = *updateMS
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
	track.SetLogger(logger)
	httpapi.SetLogger(logger)

	mediator := track.NewMediator()

	// console observer: relays every routed event into the structured log
	track.NewObserver(mediator, func(trackable, key string, value any, kind types.EventKind) {
		logger.Debug().Str("trackable", trackable).Str("key", key).
			Interface("value", value).Str("kind", string(kind)).Msg("event")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDemo := *demoEnabled
	if *cfgPath != "" {
		runDemo = cfg.Demo.Enabled
	}
	if runDemo {
		runner, err := demo.New(mediator, demo.Config{
			Tick:           time.Duration(cfg.Demo.TickMS) * time.Millisecond,
			Width:          cfg.Demo.Width,
			Height:         cfg.Demo.Height,
			Gravity:        cfg.Demo.Gravity,
			UpdateInterval: time.Duration(cfg.UpdateIntervalMS) * time.Millisecond,
		})
		if err != nil {
			log.Fatalf("failed to start demo: %v", err)
		}
		go func() {
			if err := runner.Run(ctx); err != nil && err != context.Canceled {
				logger.Error().Err(err).Msg("demo loop stopped")
			}
		}()
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(mediator)}
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("trackd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}
