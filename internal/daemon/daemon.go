// Package daemon wires the stores, controller, and HTTP API into the
// long-running clipdd process and enforces single-instance execution.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"clipd/internal/cliprecord"
	"clipd/internal/config"
	"clipd/internal/controller"
	"clipd/internal/job"
	"clipd/internal/logging"
)

// Daemon coordinates the controller and API server behind a lock file.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *job.Store
	records *cliprecord.Store
	ctrl    *controller.Controller
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	JobDBPath    string
	LockFilePath string
	Jobs         job.HealthSummary
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *job.Store, records *cliprecord.Store, ctrl *controller.Controller, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || records == nil || ctrl == nil {
		return nil, errors.New("daemon requires config, stores, and controller")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "clipdd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger.With(logging.FieldComponent, "daemon"),
		store:    store,
		records:  records,
		ctrl:     ctrl,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	apiSrv, err := newAPIServer(cfg, d, d.logger)
	if err != nil {
		return nil, err
	}
	d.api = apiSrv
	return d, nil
}

// Start acquires the daemon lock and launches the controller and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipd daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.ctrl.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start controller: %w", err)
	}
	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			d.ctrl.Stop()
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("clipd daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and controller and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	d.ctrl.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("clipd daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	var firstErr error
	if d.store != nil {
		firstErr = d.store.Close()
	}
	if d.records != nil {
		if err := d.records.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Status reports daemon runtime information.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		JobDBPath:    d.store.Path(),
		LockFilePath: d.lockPath,
	}
	if summary, err := d.store.Summary(ctx); err == nil {
		status.Jobs = summary
	}
	return status
}

// APIAddr returns the bound API address, or empty when the server is off.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}
