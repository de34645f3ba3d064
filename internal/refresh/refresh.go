// Package refresh runs periodic jobs (cache invalidation, capture) on a cron
// schedule.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "daycard/internal/log"
)

// Job is a named unit of periodic work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler fires every registered job on the same cron schedule, in
// registration order. A failing job is logged and does not stop later jobs.
type Scheduler struct {
	spec string
	c    *cron.Cron

	mu   sync.Mutex
	jobs []Job

	ctx    context.Context
	cancel context.CancelFunc
}

// New validates spec (standard 5-field cron or a descriptor like "@every 5m").
func New(spec string) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("refresh: invalid schedule %q: %w", spec, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		spec:   spec,
		c:      cron.New(),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Add registers a job.
func (s *Scheduler) Add(name string, run func(ctx context.Context) error) {
	s.mu.Lock()
	s.jobs = append(s.jobs, Job{Name: name, Run: run})
	s.mu.Unlock()
}

// RunNow runs all jobs once, synchronously.
func (s *Scheduler) RunNow(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, j := range jobs {
		start := time.Now()
		if err := j.Run(ctx); err != nil {
			appLog.Error("refresh job failed", err, "job", j.Name)
			continue
		}
		appLog.Debug("refresh job done", "job", j.Name, "elapsed", time.Since(start).String())
	}
}

// Start begins firing jobs on the schedule.
func (s *Scheduler) Start() error {
	if _, err := s.c.AddFunc(s.spec, func() { s.RunNow(s.ctx) }); err != nil {
		return fmt.Errorf("refresh: schedule: %w", err)
	}
	s.c.Start()
	appLog.Info("refresh scheduler started", "schedule", s.spec, "jobs", len(s.jobs))
	return nil
}

// Stop cancels in-flight jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.c.Stop().Done()
	appLog.Info("refresh scheduler stopped")
}
