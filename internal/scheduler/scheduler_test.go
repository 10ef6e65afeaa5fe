package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dfryer1193/memento/memento/application"
	"github.com/dfryer1193/memento/memento/domain"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
	ctx   context.Context
}

func (g *countingGenerator) GetOrCreateTodayPost(ctx context.Context) (*application.TodayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.ctx = ctx
	if g.err != nil {
		return nil, g.err
	}
	return &application.TodayResult{Post: &domain.Post{Date: "2024-11-03"}, Created: g.calls == 1}, nil
}

func TestNew_InvalidSchedule(t *testing.T) {
	for _, spec := range []string{"", "every day", "61 * * * *", "* * * * * *"} {
		if _, err := New(spec, &countingGenerator{}); err == nil {
			t.Errorf("New(%q) succeeded, want error", spec)
		}
	}
}

func TestNew_ValidSchedules(t *testing.T) {
	for _, spec := range []string{"5 0 * * *", "@daily", "@every 1h"} {
		s, err := New(spec, &countingGenerator{})
		if err != nil {
			t.Errorf("New(%q) error = %v", spec, err)
			continue
		}
		s.Stop()
	}
}

func TestScheduler_EntryUsesEasternTime(t *testing.T) {
	s, err := New("0 0 * * *", &countingGenerator{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Stop()

	s.Start()

	next := s.cron.Entries()[0].Next.In(domain.Eastern())
	if next.Hour() != 0 || next.Minute() != 0 {
		t.Errorf("next run = %v, want midnight Eastern", next)
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	gen := &countingGenerator{}
	s, err := New("@daily", gen)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Stop()

	s.RunOnce()
	s.RunOnce()

	if gen.calls != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls)
	}
}

func TestScheduler_RunOnceLogsFailures(t *testing.T) {
	gen := &countingGenerator{err: errors.New("provider down")}
	s, err := New("@daily", gen)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Stop()

	s.RunOnce()

	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestScheduler_StopCancelsContext(t *testing.T) {
	gen := &countingGenerator{}
	s, err := New("@daily", gen)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s.RunOnce()
	s.Stop()

	if gen.ctx.Err() == nil {
		t.Error("generation context still live after Stop")
	}
}
