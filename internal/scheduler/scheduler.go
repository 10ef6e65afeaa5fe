package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/dfryer1193/memento/memento/application"
	"github.com/dfryer1193/memento/memento/domain"
	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DailyGenerator is the part of the post service the scheduler drives
type DailyGenerator interface {
	GetOrCreateTodayPost(ctx context.Context) (*application.TodayResult, error)
}

// Scheduler runs daily post generation on a cron schedule evaluated in US Eastern time
type Scheduler struct {
	generator DailyGenerator
	cron      *rcron.Cron

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New parses spec (standard five-field cron syntax or descriptors like @daily) and returns a stopped scheduler
func New(spec string, generator DailyGenerator) (*Scheduler, error) {
	c := rcron.New(
		rcron.WithLocation(domain.Eastern()),
		rcron.WithChain(rcron.SkipIfStillRunning(rcron.DiscardLogger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		generator: generator,
		cron:      c,
		ctx:       ctx,
		cancel:    cancel,
	}

	if _, err := c.AddFunc(spec, s.RunOnce); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the schedule in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Time("next_run", s.cron.Entries()[0].Next).Msg("Scheduled daily post generation")
}

// RunOnce generates today's post if it does not exist yet, logging the outcome
func (s *Scheduler) RunOnce() {
	s.wg.Add(1)
	defer s.wg.Done()

	result, err := s.generator.GetOrCreateTodayPost(s.ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduled post generation failed")
		return
	}

	if result.Created {
		log.Info().Str("date", result.Post.Date).Msg("Scheduled post generation saved a new post")
		return
	}
	log.Debug().Str("date", result.Post.Date).Msg("Post already exists, nothing scheduled to do")
}

// Stop halts the schedule, cancels a running generation and waits for it to return
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	s.cancel()
	<-stopCtx.Done()
	s.wg.Wait()
}
