package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of background work. An empty schedule registers the job as
// on-demand only.
type Job interface {
	GetName() string
	GetSchedule() string
	Execute(ctx context.Context) error
}

// Scheduler runs registered jobs on their cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	jobs   []Job
	logger *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		jobs:   make([]Job, 0),
		logger: logger,
	}
}

// RegisterJob adds job and schedules it when it has a schedule.
func (s *Scheduler) RegisterJob(job Job) error {
	schedule := job.GetSchedule()
	if schedule != "" {
		_, err := s.cron.AddFunc(schedule, func() {
			s.logger.Info("starting scheduled job", zap.String("job", job.GetName()))
			if err := job.Execute(context.Background()); err != nil {
				s.logger.Error("scheduled job failed", zap.String("job", job.GetName()), zap.Error(err))
				return
			}
			s.logger.Info("scheduled job completed", zap.String("job", job.GetName()))
		})
		if err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", job.GetName(), err)
		}
		s.logger.Info("job scheduled", zap.String("job", job.GetName()), zap.String("schedule", schedule))
	} else {
		s.logger.Info("job registered as on-demand", zap.String("job", job.GetName()))
	}

	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunJobByName executes a registered job immediately.
func (s *Scheduler) RunJobByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.GetName() == name {
			return job.Execute(ctx)
		}
	}
	return fmt.Errorf("job %q not registered", name)
}

func (s *Scheduler) GetRegisteredJobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.GetName()
	}
	return names
}
