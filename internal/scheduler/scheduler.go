package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background work run on a cron schedule.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
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

// Register schedules job. Jobs with an empty schedule can only be triggered through RunByName.
func (s *Scheduler) Register(job Job) error {
	schedule := job.Schedule()
	if schedule == "" {
		s.jobs = append(s.jobs, job)
		log.Printf("📝 [%s] Registered as on-demand job", job.Name())
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		log.Printf("⏰ [%s] Starting scheduled job...", job.Name())
		if err := job.Run(context.Background()); err != nil {
			log.Printf("❌ [%s] Job failed: %v", job.Name(), err)
			return
		}
		log.Printf("✅ [%s] Job completed", job.Name())
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name(), schedule, err)
	}
	s.jobs = append(s.jobs, job)

	log.Printf("📅 [%s] Scheduled with cron: %s", job.Name(), schedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("🚀 Scheduler started with %d jobs", len(s.jobs))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 Scheduler stopped")
}

func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			log.Printf("🎯 [%s] Running on demand...", name)
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("job %q not registered", name)
}

func (s *Scheduler) JobNames() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
