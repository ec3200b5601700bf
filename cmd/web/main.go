package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/device"
	"github.com/tomz197/starfield/internal/logging"
	"github.com/tomz197/starfield/internal/skills"
)

//go:embed index.html
var htmlPage string

func main() {
	cfg, err := config.Load(config.GetEnv("STARFIELD_CONFIG", "starfield.yaml"))
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	logger := logging.New(os.Stderr, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("web server failed", "err", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	catalog, err := skills.Load(cfg.Field.SkillsFile)
	if err != nil {
		return err
	}

	stages := map[device.Class]*stage{
		device.ClassStandard:    newStage(cfg, device.Standard(), catalog, logger),
		device.ClassConstrained: newStage(cfg, device.Constrained(), catalog, logger),
	}
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Web.Host, cfg.Web.Port),
		Handler:           newServer(htmlPage, stages, logger).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, st := range stages {
		g.Go(func() error {
			return st.run(gctx)
		})
	}
	g.Go(func() error {
		logger.Info("starting web server", "addr", "http://"+srv.Addr, "variant", cfg.Field.Variant)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
