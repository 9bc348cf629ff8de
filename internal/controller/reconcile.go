package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clipd/internal/executor"
	"clipd/internal/job"
	"clipd/internal/logging"
)

// Reconcile runs one level-triggered pass for the named job. Each pass is
// idempotent: it observes persisted and substrate state, applies at most
// one correction, and relies on later passes to make further progress.
// Passes and cancellations for the same job share a lock, so a Cancel can
// never interleave with an in-flight launch.
func (c *Controller) Reconcile(ctx context.Context, name string) error {
	lock := c.lockFor(name)
	lock.Lock()
	defer lock.Unlock()
	return c.reconcileJob(ctx, name)
}

func (c *Controller) reconcileJob(ctx context.Context, name string) error {
	j, err := c.store.GetByName(ctx, name)
	if errors.Is(err, job.ErrNotFound) {
		// Job deleted; make sure no orphaned unit keeps running.
		return c.launcher.Terminate(executor.UnitName(name))
	}
	if err != nil {
		return err
	}

	logger := c.logger.With(
		logging.FieldJob, j.Name,
		logging.FieldClipID, j.Spec.ClipID,
		logging.FieldPhase, string(j.Phase))

	switch j.Phase {
	case job.PhasePending:
		return c.reconcilePending(ctx, j)
	case job.PhaseRunning:
		return c.reconcileRunning(ctx, j)
	case job.PhaseSucceeded, job.PhaseFailed:
		if j.Expired(time.Now()) {
			return c.collect(ctx, j)
		}
		return nil
	default:
		logger.Warn("job has unknown phase, marking failed")
		j.MarkFailed(fmt.Sprintf("unknown phase %q", j.Phase), time.Now())
		return c.store.Update(ctx, j)
	}
}

// reconcilePending launches a unit once the retry wait, if any, has
// elapsed. The attempt counter increments at launch so a crash between
// persist and launch can never under-count attempts.
func (c *Controller) reconcilePending(ctx context.Context, j *job.Job) error {
	now := time.Now()
	if !j.RetryDue(now) {
		return nil
	}

	unitName := executor.UnitName(j.Name)

	// A finished unit left over from a previous attempt blocks relaunch.
	if status, err := c.launcher.Observe(unitName); err == nil && status.State != executor.StateRunning {
		if err := c.launcher.Remove(unitName); err != nil {
			return err
		}
	}

	j.Attempts++
	j.Phase = job.PhaseRunning
	j.RetryAt = nil
	if j.StartedAt == nil {
		started := now.UTC()
		j.StartedAt = &started
	}
	if err := c.store.Update(ctx, j); err != nil {
		return err
	}

	if err := c.launcher.Launch(c.unitSpec(j)); err != nil {
		c.logger.Error("launch execution unit",
			logging.String(logging.FieldJob, j.Name),
			logging.Int(logging.FieldAttempt, j.Attempts),
			logging.Error(err))
		return c.failAttempt(ctx, j, fmt.Sprintf("launch unit: %v", err))
	}

	c.logger.Info("launched unit for job",
		logging.String(logging.FieldJob, j.Name),
		logging.String(logging.FieldUnit, unitName),
		logging.Int(logging.FieldAttempt, j.Attempts))
	return nil
}

// reconcileRunning inspects the unit backing a Running job and folds its
// terminal state into job status.
func (c *Controller) reconcileRunning(ctx context.Context, j *job.Job) error {
	unitName := executor.UnitName(j.Name)
	status, err := c.launcher.Observe(unitName)
	if errors.Is(err, executor.ErrUnitNotFound) {
		// Running in the database but no live unit: the daemon restarted
		// while the attempt was in flight. Count it as a failed attempt.
		return c.failAttempt(ctx, j, "unit lost, likely daemon restart")
	}
	if err != nil {
		return err
	}

	switch status.State {
	case executor.StateRunning:
		return nil
	case executor.StateSucceeded:
		if err := c.launcher.Remove(unitName); err != nil {
			return err
		}
		j.MarkSucceeded(time.Now())
		if err := c.store.Update(ctx, j); err != nil {
			return err
		}
		c.logger.Info("job succeeded",
			logging.String(logging.FieldJob, j.Name),
			logging.Int(logging.FieldAttempt, j.Attempts))
		return nil
	case executor.StateFailed:
		if err := c.launcher.Remove(unitName); err != nil {
			return err
		}
		reason := status.Message
		if reason == "" {
			reason = fmt.Sprintf("unit exited with code %d", status.ExitCode)
		}
		return c.failAttempt(ctx, j, reason)
	default:
		return fmt.Errorf("unit %s reported unknown state %q", unitName, status.State)
	}
}

// failAttempt records a failed attempt: either schedule a backed-off retry
// or, once backoffLimit attempts have been consumed, move the job to Failed
// for good.
func (c *Controller) failAttempt(ctx context.Context, j *job.Job, reason string) error {
	now := time.Now()
	if j.Attempts >= j.Spec.BackoffLimit {
		j.MarkFailed(fmt.Sprintf("backoff limit reached after %d attempts: %s", j.Attempts, reason), now)
		if err := c.store.Update(ctx, j); err != nil {
			return err
		}
		// The worker may have died before reporting, so make sure readers
		// of the clip table see the failure too.
		if err := c.records.MarkFailed(ctx, j.Spec.ClipID, j.FailureReason); err != nil {
			c.logger.Error("record clip failure",
				logging.String(logging.FieldClipID, j.Spec.ClipID),
				logging.Error(err))
		}
		c.logger.Error("job failed permanently",
			logging.String(logging.FieldJob, j.Name),
			logging.Int(logging.FieldAttempt, j.Attempts),
			logging.String("reason", reason))
		return nil
	}

	delay := retryDelay(c.backoffBase, c.backoffMax, j.Attempts)
	retryAt := now.Add(delay).UTC()
	j.Phase = job.PhasePending
	j.FailureReason = reason
	j.RetryAt = &retryAt
	if err := c.store.Update(ctx, j); err != nil {
		return err
	}
	c.logger.Warn("attempt failed, retry scheduled",
		logging.String(logging.FieldJob, j.Name),
		logging.Int(logging.FieldAttempt, j.Attempts),
		logging.Duration("retry_in", delay),
		logging.String("reason", reason))
	return nil
}

// collect removes a terminal job whose retention TTL has elapsed, along
// with any finished unit record.
func (c *Controller) collect(ctx context.Context, j *job.Job) error {
	unitName := executor.UnitName(j.Name)
	if err := c.launcher.Remove(unitName); err != nil {
		return err
	}
	deleted, err := c.store.Delete(ctx, j.Name)
	if err != nil {
		return err
	}
	if deleted {
		c.logger.Info("garbage collected expired job",
			logging.String(logging.FieldJob, j.Name),
			logging.String(logging.FieldPhase, string(j.Phase)))
	}
	return nil
}

// Cancel deletes a job and propagates the cancellation: a live unit is
// terminated and a clip still in flight is marked failed so readers do not
// wait forever. It takes the job's reconcile lock so a pass that has
// persisted Running but not yet launched cannot strand an orphan unit.
func (c *Controller) Cancel(ctx context.Context, name string) (bool, error) {
	lock := c.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	j, err := c.store.GetByName(ctx, name)
	if errors.Is(err, job.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := c.launcher.Terminate(executor.UnitName(name)); err != nil {
		return false, err
	}
	if !j.Phase.Terminal() {
		if err := c.records.MarkFailed(ctx, j.Spec.ClipID, "job cancelled"); err != nil {
			c.logger.Error("record clip cancellation",
				logging.String(logging.FieldClipID, j.Spec.ClipID),
				logging.Error(err))
		}
	}

	deleted, err := c.store.Delete(ctx, name)
	if err != nil {
		return false, err
	}
	if deleted {
		c.logger.Info("cancelled job", logging.String(logging.FieldJob, name))
	}
	return deleted, nil
}

func (c *Controller) unitSpec(j *job.Job) executor.UnitSpec {
	return executor.UnitSpec{
		JobName:         j.Name,
		ClipID:          j.Spec.ClipID,
		SourcePath:      j.Spec.SourcePath,
		DestinationPath: j.Spec.DestinationPath,
		StartOffset:     j.Spec.StartOffset,
		EndOffset:       j.Spec.EndOffset,
		Deadline:        c.unitDeadline,
	}
}
