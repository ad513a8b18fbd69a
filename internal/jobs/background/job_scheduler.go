package background

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"relist/internal/jobs"
)

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	reverify  *jobs.ReverificationJob
}

func NewScheduler(reverify *jobs.ReverificationJob) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{scheduler: s, reverify: reverify}, nil
}

// Start registers the jobs and begins running them.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			if err := s.reverify.Run(ctx); err != nil {
				log.Printf("re-verification job failed: %v", err)
			}
		}),
		gocron.WithName("listing-reverification"),
	)
	if err != nil {
		return err
	}
	s.scheduler.Start()
	log.Println("background scheduler started")
	return nil
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
