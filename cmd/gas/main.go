package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/tomz197/gasbox/internal/config"
	"github.com/tomz197/gasbox/internal/logging"
	"github.com/tomz197/gasbox/internal/loop/client"
	"github.com/tomz197/gasbox/internal/loop/server"
	"github.com/tomz197/gasbox/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	explode := flag.Bool("explode", false, "start with an explosion instead of a random launch")
	headless := flag.Bool("headless", false, "run without drawing and log statistics")
	frames := flag.Int("frames", 600, "frames to run in headless mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ApplyEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	launch := sim.LaunchRandom
	if *explode {
		launch = sim.LaunchExplode
	}

	if *headless {
		err = runHeadless(cfg, launch, *frames)
	} else {
		err = runTerminal(cfg, launch)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "gasbox: %v\n", err)
		os.Exit(1)
	}
}

func newWorld(cfg config.File, launch sim.Launch, logger *log.Logger) (*sim.World, error) {
	world, err := sim.New(cfg.Simulation, sim.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := world.Initialize(cfg.Simulation, launch); err != nil {
		return nil, err
	}
	return world, nil
}

// runHeadless advances the world as fast as possible, logging stats once per
// simulated second.
func runHeadless(cfg config.File, launch sim.Launch, frames int) error {
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	world, err := newWorld(cfg, launch, logger)
	if err != nil {
		return err
	}

	for i := 1; i <= frames; i++ {
		world.AdvanceFrame(nil)
		if i%cfg.Server.TickRate == 0 {
			logStats(logger, world.Stats())
		}
	}

	s := world.Stats()
	logger.Info("done", "frames", s.Frame, "energy", s.KineticEnergy,
		"fingerprint", fmt.Sprintf("%016x", world.Fingerprint()))
	return nil
}

func logStats(logger *log.Logger, s sim.Stats) {
	logger.Info("stats", "frame", s.Frame, "collisions", s.Collisions,
		"energy", fmt.Sprintf("%.4f", s.KineticEnergy),
		"momentum", fmt.Sprintf("(%+.4f, %+.4f)", s.Momentum.X, s.Momentum.Y))
}

// runTerminal draws the gas in the current terminal. Logs go to the configured
// file so they do not tear the picture.
func runTerminal(cfg config.File, launch sim.Launch) error {
	logger, closeLog, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	world, err := newWorld(cfg, launch, logger)
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	srv := server.NewServer(world,
		server.WithLogger(logger),
		server.WithTickTime(cfg.Server.TickTime()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		c := client.NewClient(srv, bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{Name: "local"})
		return c.Run()
	})
	return g.Wait()
}
