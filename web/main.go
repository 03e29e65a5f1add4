package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
	"github.com/df07/go-blackhole-raytracer/pkg/renderer"
	"github.com/df07/go-blackhole-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	configPath := flag.String("config", "", "Config file (.toml or .yaml)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	scene, err := renderer.LoadScene(cfg.Sky)
	if err != nil {
		logger.Error("failed to load scene", "error", err)
		os.Exit(1)
	}

	if err := server.NewServer(*port, cfg, scene, logger).Start(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
