package controller

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipd/internal/cliprecord"
	"clipd/internal/config"
	"clipd/internal/executor"
	"clipd/internal/job"
	"clipd/internal/logging"
	"clipd/internal/services"
)

const enqueueBuffer = 64

// Controller drives job resources to completion against an execution
// substrate.
type Controller struct {
	cfg      *config.Config
	store    *job.Store
	records  *cliprecord.Store
	launcher executor.Launcher
	logger   *slog.Logger

	resyncInterval time.Duration
	backoffBase    time.Duration
	backoffMax     time.Duration
	unitDeadline   time.Duration

	queues []chan string
	locks  []sync.Mutex

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a controller. The launcher decides where units actually
// run; tests pass a fake.
func New(cfg *config.Config, store *job.Store, records *cliprecord.Store, launcher executor.Launcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	reconcilers := cfg.Jobs.Reconcilers
	if reconcilers < 1 {
		reconcilers = 1
	}
	queues := make([]chan string, reconcilers)
	for i := range queues {
		queues[i] = make(chan string, enqueueBuffer)
	}
	return &Controller{
		cfg:            cfg,
		store:          store,
		records:        records,
		launcher:       launcher,
		logger:         logger.With(logging.FieldComponent, "controller"),
		resyncInterval: time.Duration(cfg.Jobs.ResyncIntervalSeconds) * time.Second,
		backoffBase:    time.Duration(cfg.Jobs.RetryBackoffSeconds) * time.Second,
		backoffMax:     time.Duration(cfg.Jobs.RetryBackoffMaxSeconds) * time.Second,
		unitDeadline:   time.Duration(cfg.Jobs.UnitDeadlineSeconds) * time.Second,
		queues:         queues,
		locks:          make([]sync.Mutex, reconcilers),
	}
}

// Start launches the reconciler pool and the resync loop.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return errors.New("controller already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	for i := range c.queues {
		c.wg.Add(1)
		go c.runReconciler(runCtx, c.queues[i])
	}
	c.wg.Add(1)
	go c.runResync(runCtx)

	c.logger.Info("controller started",
		logging.Int("reconcilers", len(c.queues)),
		logging.Duration("resync_interval", c.resyncInterval))
	return nil
}

// Stop terminates reconciliation and waits for in-flight passes to finish.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.running = false
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
	c.logger.Info("controller stopped")
}

// Enqueue schedules an immediate reconcile for the named job. Jobs hash to
// a fixed reconciler, so two reconciles of the same job never overlap. A
// full queue drops the event; the periodic resync will pick the job up.
func (c *Controller) Enqueue(name string) {
	queue := c.queues[shard(name, len(c.queues))]
	select {
	case queue <- name:
	default:
		c.logger.Warn("reconcile queue full, deferring to resync",
			logging.String(logging.FieldJob, name))
	}
}

func (c *Controller) runReconciler(ctx context.Context, queue <-chan string) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case name := <-queue:
			requestID := uuid.NewString()
			passCtx := services.WithRequestID(services.WithJobName(ctx, name), requestID)
			if err := c.Reconcile(passCtx, name); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Error("reconcile failed",
					logging.String(logging.FieldJob, name),
					logging.String(logging.FieldCorrelationID, requestID),
					logging.Error(err))
			}
		}
	}
}

func (c *Controller) runResync(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.resyncInterval)
	defer ticker.Stop()

	// Immediate pass on startup so jobs left over from a previous daemon
	// run converge without waiting one full interval.
	c.resyncOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.resyncOnce(ctx)
		}
	}
}

func (c *Controller) resyncOnce(ctx context.Context) {
	active, err := c.store.List(ctx, job.PhasePending, job.PhaseRunning)
	if err != nil {
		c.logger.Error("list active jobs", logging.Error(err))
		return
	}
	for _, j := range active {
		c.Enqueue(j.Name)
	}

	expired, err := c.store.Expired(ctx, time.Now())
	if err != nil {
		c.logger.Error("list expired jobs", logging.Error(err))
		return
	}
	for _, j := range expired {
		c.Enqueue(j.Name)
	}
}

// lockFor returns the mutex serializing all reconcile passes and
// cancellations for the named job.
func (c *Controller) lockFor(name string) *sync.Mutex {
	return &c.locks[shard(name, len(c.locks))]
}

func shard(name string, buckets int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return int(h.Sum32() % uint32(buckets))
}
