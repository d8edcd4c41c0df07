package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/tomz197/gasbox/internal/config"
	"github.com/tomz197/gasbox/internal/logging"
	"github.com/tomz197/gasbox/internal/sim"
	"github.com/tomz197/gasbox/internal/window"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	explode := flag.Bool("explode", false, "start with an explosion instead of a random launch")
	scale := flag.Float64("scale", 2, "window pixels per enclosure unit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ApplyEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	launch := sim.LaunchRandom
	if *explode {
		launch = sim.LaunchExplode
	}

	world, err := sim.New(cfg.Simulation, sim.WithLogger(logger))
	if err == nil {
		err = world.Initialize(cfg.Simulation, launch)
	}
	if err != nil {
		logger.Fatal("failed to create world", "err", err)
	}

	bounds := world.Bounds()
	ebiten.SetWindowSize(int(bounds.Width**scale), int(bounds.Height**scale))
	ebiten.SetWindowTitle("gasbox")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Server.TickRate)

	if err := ebiten.RunGame(window.NewGame(world, window.WithLogger(logger))); err != nil {
		logger.Fatal("window closed with error", "err", err)
	}
}
