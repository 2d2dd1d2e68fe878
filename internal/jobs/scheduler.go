package jobs

import (
	"context"
	"fmt"
	"time"

	"anoa.com/boardinghouse/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of background work. An empty Schedule registers the job for
// on-demand runs only.
type Job interface {
	Name() string
	Schedule() string
	Execute(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make([]Job, 0),
	}
}

func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	spec := job.Schedule()
	if spec == "" {
		logger.GetLogger().Info("job registered for on-demand runs", zap.String("job", job.Name()))
		return nil
	}

	if _, err := s.cron.AddFunc(spec, func() { s.run(context.Background(), job) }); err != nil {
		return fmt.Errorf("schedule job %s: %w", job.Name(), err)
	}
	logger.GetLogger().Info("job scheduled", zap.String("job", job.Name()), zap.String("cron", spec))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.GetLogger().Info("job scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunByName executes a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return s.run(ctx, job)
		}
	}
	return fmt.Errorf("job %q not registered", name)
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	log := logger.GetLogger().With(zap.String("job", job.Name()))
	start := time.Now()

	if err := job.Execute(ctx); err != nil {
		log.Error("job failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return err
	}
	log.Info("job completed", zap.Duration("took", time.Since(start)))
	return nil
}
