// Package scheduler runs the periodic rebuild jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pable/go-tennis-metrics/pkg/logger"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Status is the outcome of a job's last run.
type Status struct {
	Name     string        `json:"name"`
	LastRun  time.Time     `json:"last_run"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"error,omitempty"`
	Runs     int           `json:"runs"`
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	log  logger.Logger

	mu     sync.Mutex
	jobs   map[string]Job
	status map[string]*Status
}

// New returns a scheduler using standard five-field cron expressions. Runs of
// the same job never overlap: a run that is due while the previous one is
// still going is skipped.
func New(ctx context.Context, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("scheduler")
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log}))),
		ctx:    ctx,
		log:    log,
		jobs:   make(map[string]Job),
		status: make(map[string]*Status),
	}
}

// Register adds a named job on a five-field cron expression or a descriptor
// such as "@daily".
func (s *Scheduler) Register(name, expr string, job Job) error {
	s.mu.Lock()
	if _, dup := s.jobs[name]; dup {
		s.mu.Unlock()
		return fmt.Errorf("register %s: job already registered", name)
	}
	s.jobs[name] = job
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(expr, func() { _ = s.run(name) }); err != nil {
		s.mu.Lock()
		delete(s.jobs, name)
		s.mu.Unlock()
		return fmt.Errorf("register %s: %w", name, err)
	}
	return nil
}

// Start starts the cron loop in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info(s.ctx, "scheduler started", logger.Int("jobs", len(s.cron.Entries())))
}

// Stop stops scheduling and waits for running jobs or ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info(ctx, "scheduler stopped")
}

// RunNow runs a registered job immediately and returns its error.
func (s *Scheduler) RunNow(name string) error {
	return s.run(name)
}

func (s *Scheduler) run(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}

	s.log.Info(s.ctx, "job started", logger.String("job", name))
	start := time.Now()
	err := job(s.ctx)
	d := time.Since(start)

	s.mu.Lock()
	st := s.status[name]
	if st == nil {
		st = &Status{Name: name}
		s.status[name] = st
	}
	st.LastRun = start
	st.Duration = d
	st.Runs++
	st.Err = ""
	if err != nil {
		st.Err = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error(s.ctx, "job failed", logger.String("job", name), logger.Error(err))
		return err
	}
	s.log.Info(s.ctx, "job finished", logger.String("job", name), logger.Any("duration", d))
	return nil
}

// Statuses returns the last-run status of every job that has run, by name.
func (s *Scheduler) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Status, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cronLogger adapts Logger to cron's logging interface.
type cronLogger struct{ l logger.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(context.Background(), msg, fields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(context.Background(), msg, append(fields(keysAndValues), logger.Error(err))...)
}

func fields(kv []any) []logger.Field {
	out := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
