// Package cli is the interactive front end of the record-keeper: login,
// project and metric management, framework assessments, and evidence
// handling, all over the credential and secure data-access core.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/esgtools/esgkeeper/internal/auth"
	"github.com/esgtools/esgkeeper/internal/config"
	"github.com/esgtools/esgkeeper/internal/evidence"
	"github.com/esgtools/esgkeeper/internal/loader"
	"github.com/esgtools/esgkeeper/internal/logging"
	"github.com/esgtools/esgkeeper/internal/models"
	"github.com/esgtools/esgkeeper/internal/records"
	"github.com/esgtools/esgkeeper/internal/remote"
	"github.com/esgtools/esgkeeper/internal/storage"
	"github.com/esgtools/esgkeeper/internal/storage/credentials"
	"golang.org/x/sync/errgroup"
)

const onlineCheckInterval = 30 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	auth     *auth.Authenticator
	sessions *auth.SessionManager
	records  *records.Service
	evidence *evidence.Service
	api      *remote.Client

	session  *models.Session
	remoteUp atomic.Bool
	reader   *bufio.Reader

	closeDB func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.New(os.Stderr)

	db, err := storage.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := storage.RunMigrations(ctx, db, cfg.DatabaseDSN); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	exec := storage.NewExecutor(db, logger)
	credRepo := credentials.NewRepository(exec)
	if err := credentials.Seed(ctx, credRepo, cfg); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap credential error: %w", err)
	}

	api, err := remote.NewClient(cfg.RemoteAPIBaseURL, cfg.RemoteTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	authenticator := auth.NewAuthenticator(credRepo, logger, cfg.LockoutThreshold, cfg.LockoutDuration)
	sessions := auth.NewSessionManager(cfg.SessionTimeout, []byte(cfg.SecretKey))
	hybrid := loader.New(logger, cfg.RemoteTimeout)

	return &App{
		config:   cfg,
		logger:   logger,
		auth:     authenticator,
		sessions: sessions,
		records:  records.NewService(exec, api, hybrid, sessions, logger),
		evidence: evidence.NewService(cfg),
		api:      api,
		reader:   bufio.NewReader(os.Stdin),
		closeDB:  db.Close,
	}, nil
}

// policy builds the fallback policy for one invocation: the remote source is
// used only when configured AND currently reachable.
func (a *App) policy() loader.Policy {
	return loader.Policy{
		RemoteEnabled:      a.config.RemoteEnabled && a.remoteUp.Load(),
		AllowLocalFallback: a.config.AllowLocalFallback,
	}
}

func (a *App) isLoggedIn() bool {
	return a.sessions.IsValid(a.session)
}

// watchRemote probes the remote API periodically and flips the availability
// flag that feeds the per-invocation fallback policy.
func (a *App) watchRemote(ctx context.Context) error {
	if !a.config.RemoteEnabled {
		return nil
	}

	ticker := time.NewTicker(onlineCheckInterval)
	defer ticker.Stop()

	probe := func() {
		hctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.api.Health(hctx)
		cancel()

		up := err == nil
		if up != a.remoteUp.Swap(up) {
			a.logger.Info(ctx, "remote availability changed", "up", up)
		}
	}

	probe()
	for {
		select {
		case <-ticker.C:
			probe()
		case <-ctx.Done():
			return nil
		}
	}
}

// Run drives the interactive loop until the user exits or the process
// receives a termination signal.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer func() { _ = a.closeDB() }()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.watchRemote(ctx) })
	g.Go(func() error {
		defer stop() // leaving the loop stops the watcher too
		a.root(ctx)
		return nil
	})
	return g.Wait()
}
