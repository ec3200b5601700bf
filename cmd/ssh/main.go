package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	wishlog "github.com/charmbracelet/wish/logging"

	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/draw"
	"github.com/tomz197/starfield/internal/logging"
	"github.com/tomz197/starfield/internal/loop"
	"github.com/tomz197/starfield/internal/skills"
)

// Sessions close after this long without a key press or mouse report.
const idleTimeout = 10 * time.Minute

func main() {
	cfg, err := config.Load(config.GetEnv("STARFIELD_CONFIG", "starfield.yaml"))
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	logger := logging.New(os.Stderr, cfg.Logging.Level)

	if err := serve(cfg, logger); err != nil {
		logger.Error("ssh server failed", "err", err)
		os.Exit(1)
	}
}

func serve(cfg *config.Config, logger *log.Logger) error {
	catalog, err := skills.Load(cfg.Field.SkillsFile)
	if err != nil {
		return err
	}
	workingDir, err := os.Getwd()
	if err != nil {
		logger.Warn("no working directory", "err", err)
	}
	logger.Info("ssh config",
		"host", cfg.SSH.Host,
		"port", cfg.SSH.Port,
		"hostKeyPath", cfg.SSH.HostKey,
		"workingDir", workingDir,
		"variant", cfg.Field.Variant)

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)),
		wish.WithMiddleware(
			fieldMiddleware(cfg, catalog, logger),
			activeterm.Middleware(),
			wishlog.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Frames are many small writes; don't batch them.
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.SSH.HostKey != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSH.HostKey))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	logger.Info("starting ssh server", "addr", s.Addr)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// fieldMiddleware runs one animated section per SSH session.
func fieldMiddleware(cfg *config.Config, catalog *skills.Catalog, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			sessLog := logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
			sessLog.Info("session started", "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

			sizes := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizes.update(win.Width, win.Height)
				}
			}()

			s := loop.NewSession(sess, sess, loop.Options{
				Field:         cfg.Field,
				TermSizeFunc:  sizes.getSize,
				Catalog:       catalog,
				Rate:          cfg.GetDisplayInterval(),
				MaxFrameDelta: cfg.GetMaxFrameDelta(),
				IdleTimeout:   idleTimeout,
				Logger:        sessLog,
			})
			if err := s.Run(sess.Context()); err != nil {
				sessLog.Error("session failed", "err", err)
			}

			sessLog.Info("session ended")
			next(sess)
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
