// Package scheduler runs the ledger's periodic maintenance on gocron v2.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/cryptogift/ledger/internal/shared/biztime"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

// BatchJob processes one batch per Execute call and returns how many items
// it handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// BatchJobFunc adapts a function to BatchJob.
type BatchJobFunc func(ctx context.Context) (int, error)

func (f BatchJobFunc) Execute(ctx context.Context) (int, error) { return f(ctx) }

const (
	defaultCleanupInterval = time.Hour
	cleanupJobTimeout      = 2 * time.Minute
)

// SchedulerManager owns the single gocron scheduler of the process.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a scheduler in the business timezone.
func NewSchedulerManager(log logger.Interface, opts ...gocron.SchedulerOption) (*SchedulerManager, error) {
	opts = append([]gocron.SchedulerOption{gocron.WithLocation(biztime.Location())}, opts...)
	scheduler, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterFeedCleanupJob purges expired recent activations every interval.
// The first run happens immediately so a restart clears any backlog.
func (m *SchedulerManager) RegisterFeedCleanupJob(interval time.Duration, job BatchJob) error {
	if job == nil {
		return fmt.Errorf("feed cleanup job is required")
	}
	if interval <= 0 {
		interval = defaultCleanupInterval
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cleanupJobTimeout)
			defer cancel()
			m.runFeedCleanup(ctx, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("activations", "cleanup"),
		gocron.WithName("activation-feed-cleanup"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered activation feed cleanup job", "interval", interval.String())
	return nil
}

func (m *SchedulerManager) runFeedCleanup(ctx context.Context, job BatchJob) {
	startTime := biztime.NowUTC()

	removed, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("failed to clean up activation feed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if removed > 0 {
		m.logger.Infow("expired activations removed",
			"count", removed,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no expired activations to remove",
			"duration", time.Since(startTime),
		)
	}
}

// Start starts the scheduler. Calling it twice is a no-op.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
