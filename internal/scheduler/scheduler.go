package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// ErrUnknownJob is returned by RunNow for a name that was never registered.
var ErrUnknownJob = errors.New("unknown job")

// Job is one refresh cycle. Returned errors are logged; they never stop the
// job from running again at its next interval.
type Job func(ctx context.Context) error

// Scheduler runs the mirror's refresh jobs on fixed intervals.
type Scheduler struct {
	scheduler *gocron.Scheduler
	ctx       context.Context
	timeout   time.Duration
	log       zerolog.Logger

	mu   sync.Mutex
	jobs map[string]struct{}
}

// New creates a new Scheduler. Jobs get a context derived from ctx with a
// per-run timeout.
func New(ctx context.Context, log zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	s.TagsUnique()
	return &Scheduler{
		scheduler: s,
		ctx:       ctx,
		timeout:   30 * time.Second,
		log:       log.With().Str("component", "scheduler").Logger(),
		jobs:      make(map[string]struct{}),
	}
}

// Register schedules job to run as soon as the scheduler starts and then
// every interval. A run that falls due while the previous one is still going
// is queued behind it, never overlapped.
func (s *Scheduler) Register(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("scheduler: invalid interval %v for %s", interval, name)
	}

	_, err := s.scheduler.Every(interval).Tag(name).SingletonMode().Do(func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("scheduler: register %s: %w", name, err)
	}

	s.mu.Lock()
	s.jobs[name] = struct{}{}
	s.mu.Unlock()

	s.log.Info().Str("job", name).Dur("interval", interval).Msg("job registered")
	return nil
}

// Start starts the underlying scheduler without blocking.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// RunNow triggers the named job immediately, outside its interval.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	_, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.scheduler.RunByTag(name)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// run is the failure boundary around one job execution: errors and panics
// are logged and the job stays scheduled.
func (s *Scheduler) run(name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("job", name).Interface("panic", r).Msg("job panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	if err := job(ctx); err != nil {
		s.log.Error().Err(err).Str("job", name).Msg("job failed")
	}
}
