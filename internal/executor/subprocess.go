package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"clipd/internal/config"
	"clipd/internal/logging"
)

var commandContext = exec.CommandContext

// Subprocess runs each execution unit as a supervised child process of the
// daemon. Unit stdout and stderr land in per-unit log files under the
// configured log directory.
type Subprocess struct {
	binary     string
	configPath string
	logDir     string
	deadline   time.Duration
	logger     *slog.Logger

	mu    sync.Mutex
	units map[string]*unit
}

type unit struct {
	name   string
	cancel context.CancelFunc

	mu     sync.Mutex
	status Status
}

// NewSubprocess builds the process-backed launcher from configuration.
// configPath is forwarded to workers so they load the same settings as the
// daemon.
func NewSubprocess(cfg *config.Config, configPath string, logger *slog.Logger) *Subprocess {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Subprocess{
		binary:     cfg.Jobs.WorkerBinary,
		configPath: configPath,
		logDir:     filepath.Join(cfg.Paths.LogDir, "units"),
		deadline:   time.Duration(cfg.Jobs.UnitDeadlineSeconds) * time.Second,
		logger:     logger.With(logging.FieldComponent, "executor"),
		units:      make(map[string]*unit),
	}
}

// Launch starts a worker process for the spec. An existing live unit with
// the same name makes Launch a no-op.
func (s *Subprocess) Launch(spec UnitSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	name := UnitName(spec.JobName)

	s.mu.Lock()
	if existing, ok := s.units[name]; ok {
		state := existing.snapshot().State
		s.mu.Unlock()
		if state == StateRunning {
			return nil
		}
		return fmt.Errorf("unit %s already finished; remove it before relaunching", name)
	}

	deadline := spec.Deadline
	if deadline <= 0 {
		deadline = s.deadline
	}
	ctx, cancel := context.WithTimeout(context.Background(), deadline)

	if err := os.MkdirAll(s.logDir, 0o755); err != nil {
		cancel()
		s.mu.Unlock()
		return fmt.Errorf("create unit log directory: %w", err)
	}
	logPath := filepath.Join(s.logDir, name+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		cancel()
		s.mu.Unlock()
		return fmt.Errorf("open unit log %s: %w", logPath, err)
	}

	cmd := commandContext(ctx, s.binary) //nolint:gosec
	cmd.Env = spec.Environ(s.configPath)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		cancel()
		_ = logFile.Close()
		s.mu.Unlock()
		return fmt.Errorf("start unit %s: %w", name, err)
	}

	u := &unit{
		name:   name,
		cancel: cancel,
		status: Status{
			Name:      name,
			State:     StateRunning,
			StartedAt: time.Now().UTC(),
		},
	}
	s.units[name] = u
	s.mu.Unlock()

	s.logger.Info("launched execution unit",
		logging.String(logging.FieldUnit, name),
		logging.String(logging.FieldClipID, spec.ClipID),
		logging.String("log_path", logPath))

	go s.supervise(ctx, cancel, cmd, logFile, u)
	return nil
}

func (s *Subprocess) supervise(ctx context.Context, cancel context.CancelFunc, cmd *exec.Cmd, logFile *os.File, u *unit) {
	defer cancel()
	defer logFile.Close()

	err := cmd.Wait()
	finished := time.Now().UTC()

	u.mu.Lock()
	defer u.mu.Unlock()
	u.status.FinishedAt = finished
	switch {
	case err == nil:
		u.status.State = StateSucceeded
		u.status.ExitCode = 0
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		u.status.State = StateFailed
		u.status.ExitCode = -1
		u.status.Message = "unit exceeded its deadline"
	default:
		u.status.State = StateFailed
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			u.status.ExitCode = exitErr.ExitCode()
		} else {
			u.status.ExitCode = -1
		}
		u.status.Message = err.Error()
	}

	s.logger.Info("execution unit finished",
		logging.String(logging.FieldUnit, u.name),
		logging.String("state", string(u.status.State)),
		logging.Int("exit_code", u.status.ExitCode))
}

// Observe reports the current status of a unit.
func (s *Subprocess) Observe(name string) (Status, error) {
	s.mu.Lock()
	u, ok := s.units[name]
	s.mu.Unlock()
	if !ok {
		return Status{}, fmt.Errorf("%w: %s", ErrUnitNotFound, name)
	}
	return u.snapshot(), nil
}

// Terminate cancels a unit's context, killing the process, and discards the
// record. Terminating an unknown unit is a no-op.
func (s *Subprocess) Terminate(name string) error {
	s.mu.Lock()
	u, ok := s.units[name]
	if ok {
		delete(s.units, name)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}
	u.cancel()
	s.logger.Info("terminated execution unit", logging.String(logging.FieldUnit, name))
	return nil
}

// Remove discards the record of a finished unit so the name can be reused.
func (s *Subprocess) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[name]
	if !ok {
		return nil
	}
	if u.snapshot().State == StateRunning {
		return fmt.Errorf("unit %s is still running; terminate it first", name)
	}
	delete(s.units, name)
	return nil
}

func (u *unit) snapshot() Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

var _ Launcher = (*Subprocess)(nil)
