package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nba_stats/ingestion/internal/metrics"
	"nba_stats/ingestion/internal/pipeline"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Syncer runs a full sync. *pipeline.Pipeline implements it.
type Syncer interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// AfterSync is called after every completed run, successful or not
type AfterSync func(ctx context.Context, report *pipeline.Report, err error)

// Scheduler triggers the nightly sync and serializes every run, scheduled
// or manual, through one Status.
type Scheduler struct {
	spec      string
	syncer    Syncer
	status    *pipeline.Status
	afterSync AfterSync
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewScheduler creates a scheduler running syncer on the cron spec
func NewScheduler(spec string, syncer Syncer, status *pipeline.Status) *Scheduler {
	return &Scheduler{
		spec:   spec,
		syncer: syncer,
		status: status,
		cron:   cron.New(),
	}
}

// OnSyncComplete registers a hook run after each sync
func (s *Scheduler) OnSyncComplete(fn AfterSync) {
	s.afterSync = fn
}

// Start schedules the nightly sync. Runs use ctx until Stop is called.
// An empty spec schedules nothing; Trigger still works.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	if s.spec == "" {
		log.Info().Msg("Nightly sync disabled; runs start only on request")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, func() {
		log.Info().Msg("Running nightly sync...")
		if err := s.Trigger(); err != nil {
			log.Warn().Err(err).Msg("Nightly sync not started")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly sync: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.spec).
		Msg("Nightly sync scheduled")

	return nil
}

// Trigger starts a sync in the background. It returns
// pipeline.ErrSyncInProgress if a run is already in flight.
func (s *Scheduler) Trigger() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		return errors.New("scheduler not started")
	}
	if s.ctx.Err() != nil {
		return fmt.Errorf("scheduler stopping: %w", s.ctx.Err())
	}
	if !s.status.TryBegin() {
		return pipeline.ErrSyncInProgress
	}

	s.wg.Add(1)
	go s.run(s.ctx)
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	start := time.Now()
	report, err := s.syncer.Run(ctx)
	s.status.Finish(report, err, time.Now())

	if err != nil {
		metrics.RecordError("scheduler", "sync")
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Sync failed")
	}

	if s.afterSync != nil {
		s.afterSync(ctx, report, err)
	}
}

// Stop stops scheduling, cancels any running sync and waits for it to
// return. No database work is in flight once Stop returns.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()

	log.Info().Msg("Scheduler stopped")
}
