package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/gasbox/internal/config"
	"github.com/tomz197/gasbox/internal/logging"
	"github.com/tomz197/gasbox/internal/loop/server"
	"github.com/tomz197/gasbox/internal/sim"
	"github.com/tomz197/gasbox/internal/webview"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
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

	if err := run(cfg, logger); err != nil {
		logger.Fatal("web server failed", "err", err)
	}
}

func run(cfg config.File, logger *log.Logger) error {
	world, err := sim.New(cfg.Simulation, sim.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := world.Initialize(cfg.Simulation, sim.LaunchRandom); err != nil {
		return err
	}

	gas := server.NewServer(world,
		server.WithLogger(logger.WithPrefix("sim")),
		server.WithTickTime(cfg.Server.TickTime()),
	)

	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "localhost")
	handler := webview.NewHandler(gas,
		webview.WithLogger(logger.WithPrefix("web")),
		webview.WithInterval(cfg.Web.FrameInterval),
		webview.WithSSHHint(fmt.Sprintf("ssh -p %s %s", cfg.SSH.Port, sshHost)),
	)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Web.Host, cfg.Web.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return gas.Run(runCtx)
	})
	g.Go(func() error {
		logger.Info("starting web server", "url", "http://"+httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down, closing browser streams")
		gas.Shutdown(cfg.Server.ShutdownTimeout)
		stopRun()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
