package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/app"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/config"
	"github.com/Jasraj-Jassar/Art-WP-Text-Bot/internal/logger"
)

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		// No logger yet; exit immediately.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}
	cfg, err = flags.Apply(cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString("flag error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	// Ensure logger flush; ignore sync error (common on some platforms).
	defer func() { _ = log.Sync() }()

	application := app.New(cfg, flags, log)
	if err := application.Run(context.Background()); err != nil {
		log.Fatal("app run failed", zap.Error(err))
	}
}
