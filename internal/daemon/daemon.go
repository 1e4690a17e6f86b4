package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"jellyjams/internal/config"
	"jellyjams/internal/generator"
	"jellyjams/internal/history"
	"jellyjams/internal/logging"
)

// ErrPassActive is returned when a trigger arrives while a pass is running.
var ErrPassActive = errors.New("a generation pass is already running")

// Runner executes one generation pass.
type Runner interface {
	Run(ctx context.Context, trigger string) (*generator.Summary, error)
}

// PassHistory is the read surface the daemon exposes over its API.
type PassHistory interface {
	GetPass(ctx context.Context, passID string) (*history.Pass, error)
	LatestPass(ctx context.Context) (*history.Pass, error)
	RecentPasses(ctx context.Context, limit int) ([]*history.Pass, error)
	PlaylistsForPass(ctx context.Context, passID string) ([]*history.PlaylistRecord, error)
}

// Daemon coordinates scheduled generation and enforces single-instance
// execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	runner  Runner
	history PassHistory

	lockPath string
	lock     *flock.Flock

	sched schedule
	api   *apiServer

	running    atomic.Bool
	passActive atomic.Bool
	nextRun    atomic.Value // time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PassActive   bool
	ScheduleMode string
	NextRun      time.Time
	LockFilePath string
}

// New constructs a daemon with initialized dependencies. The history is
// optional; without it the passes endpoint serves empty lists.
func New(cfg *config.Config, runner Runner, hist PassHistory, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and a pass runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	sched, err := parseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "jellyjams.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		runner:   runner,
		history:  hist,
		sched:    sched,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the instance lock and launches the scheduler and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another jellyjams daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("schedule", d.sched.mode))

	if d.cfg.Schedule.GenerateOnStartup {
		go d.runPass(d.ctx, "startup")
	}
	go d.runScheduler(d.ctx)
	return nil
}

// Stop halts scheduling and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Trigger runs a pass synchronously. Only one pass runs at a time.
func (d *Daemon) Trigger(ctx context.Context, trigger string) (*generator.Summary, error) {
	if !d.passActive.CompareAndSwap(false, true) {
		return nil, ErrPassActive
	}
	defer d.passActive.Store(false)
	return d.runner.Run(ctx, trigger)
}

// TriggerAsync starts a pass in the background, reporting only whether it was
// accepted.
func (d *Daemon) TriggerAsync(trigger string) error {
	if d.passActive.Load() {
		return ErrPassActive
	}
	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	go d.runPass(ctx, trigger)
	return nil
}

func (d *Daemon) runPass(ctx context.Context, trigger string) {
	summary, err := d.Trigger(ctx, trigger)
	if err != nil {
		if errors.Is(err, ErrPassActive) {
			d.logger.Info("pass trigger ignored, another pass is running",
				logging.String("trigger", trigger))
			return
		}
		d.logger.Error("generation pass failed",
			logging.String("trigger", trigger),
			logging.Error(err))
		return
	}
	d.logger.Info("generation pass finished",
		logging.String("trigger", trigger),
		logging.Int("playlists", summary.PlaylistCount),
		logging.Int("tracks", summary.TrackCount))
}

func (d *Daemon) runScheduler(ctx context.Context) {
	for {
		next, ok := d.sched.next(time.Now())
		if !ok {
			return
		}
		d.nextRun.Store(next)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			d.runPass(ctx, "scheduled")
		}
	}
}

// Status reports current runtime information.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		PassActive:   d.passActive.Load(),
		ScheduleMode: d.sched.mode,
		LockFilePath: d.lockPath,
	}
	if next, ok := d.nextRun.Load().(time.Time); ok {
		status.NextRun = next
	}
	return status
}

// APIAddr returns the bound API listen address, or empty when disabled.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}
