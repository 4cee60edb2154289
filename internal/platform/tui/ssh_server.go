package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/flappyrl/internal/anneal"
	"github.com/vovakirdan/flappyrl/internal/config"
	"github.com/vovakirdan/flappyrl/internal/core"
	"github.com/vovakirdan/flappyrl/internal/registry"
	"github.com/vovakirdan/flappyrl/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.flappyrl/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// EnvID is the environment every session runs.
	EnvID string

	// Config supplies the world constants and the replay tick rate.
	Config config.Config
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		EnvID:       "flappy",
		Config:      config.DefaultConfig(),
	}
}

// SSHServer streams policy replays to SSH clients. Running
// `ssh -p PORT host play` starts a human game instead.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	store    *storage.Store
	logger   *log.Logger
	sessions atomic.Int64
}

// NewSSHServer creates a new SSH server. store may be nil, in which case
// sessions fall back to human play.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "flappyrl-ssh",
		})
	}
	if !registry.Exists(cfg.EnvID) {
		return nil, fmt.Errorf("unknown environment: %s", cfg.EnvID)
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".flappyrl", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a replay (or play) model for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	// Every session gets its own obstacle course.
	seed := s.config.Config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	seed += s.sessions.Add(1)

	env, err := registry.Create(s.config.EnvID, s.config.Config, core.NewRand(seed))
	if err != nil {
		s.logger.Error("cannot create environment", "env", s.config.EnvID, "error", err)
		return nil, nil
	}

	opts := Options{
		Store:    s.store,
		TickRate: s.config.Config.Replay.TickRate,
		Width:    pty.Window.Width,
		Height:   pty.Window.Height,
	}

	human := len(sshSession.Command()) > 0 && sshSession.Command()[0] == "play"
	if !human {
		if p, id, ok := s.bestPolicy(); ok {
			opts.Policy = &p
			opts.PolicyID = id
		} else {
			s.logger.Warn("no trained policy, falling back to human play", "env", s.config.EnvID)
		}
	}

	model, err := NewModel(env, opts)
	if err != nil {
		s.logger.Error("cannot start session", "error", err)
		env.Close()
		return nil, nil
	}

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// bestPolicy loads the current best policy, so sessions pick up new training runs.
func (s *SSHServer) bestPolicy() (anneal.Policy, int64, bool) {
	if s.store == nil {
		return anneal.Policy{}, 0, false
	}
	entry, err := s.store.BestPolicy(s.config.EnvID)
	if err != nil {
		if !errors.Is(err, storage.ErrPolicyNotFound) {
			s.logger.Warn("cannot load best policy", "error", err)
		}
		return anneal.Policy{}, 0, false
	}
	return anneal.NewPolicy(entry.Weights), entry.ID, true
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"command", sshSession.Command(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is done.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "env", s.config.EnvID)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
