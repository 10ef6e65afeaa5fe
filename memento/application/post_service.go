package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dfryer1193/memento/memento/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// generationTimeout bounds one shared generation, which is detached from the caller's cancellation
const generationTimeout = 2 * time.Minute

// TodayResult is the outcome of GetOrCreateTodayPost
type TodayResult struct {
	Post *domain.Post
	// Created is true when this call generated and stored the post
	Created bool
}

type PostService struct {
	store     domain.PostStore
	generator ContentGenerator
	now       func() time.Time

	// inflight collapses concurrent generations for the same date key
	inflight singleflight.Group
}

// NewPostService wires the service. generator may be nil when no provider credential is configured;
// read operations keep working and generation reports a ConfigurationError.
func NewPostService(store domain.PostStore, generator ContentGenerator) *PostService {
	return &PostService{
		store:     store,
		generator: generator,
		now:       time.Now,
	}
}

// WithClock replaces the time source used to compute today's key
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// TodayKey returns the date key of the current civil day in US Eastern time
func (s *PostService) TodayKey() string {
	return domain.DateKey(s.now())
}

// CanGenerate reports whether a generator is configured
func (s *PostService) CanGenerate() bool {
	return s.generator != nil
}

// GetPost returns the post stored for date
func (s *PostService) GetPost(ctx context.Context, date string) (*domain.Post, error) {
	if _, err := domain.ParseDateKey(date); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPostNotFound, err)
	}
	return s.store.GetPost(ctx, date)
}

// GetTodayPost returns today's post without generating one
func (s *PostService) GetTodayPost(ctx context.Context) (*domain.Post, error) {
	return s.store.GetPost(ctx, s.TodayKey())
}

// ListPosts returns every stored post, newest date first.
// limit <= 0 returns all posts.
func (s *PostService) ListPosts(ctx context.Context, limit int) ([]*domain.Post, error) {
	posts, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(posts))
	for k := range posts {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	result := make([]*domain.Post, 0, len(keys))
	for _, k := range keys {
		p := posts[k]
		if p == nil {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// GetOrCreateTodayPost returns today's post, generating and storing it first if it does not exist.
// Repeated calls on the same civil day return the stored post without calling the provider again.
func (s *PostService) GetOrCreateTodayPost(ctx context.Context) (*TodayResult, error) {
	if s.generator == nil {
		return nil, &domain.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}

	key := s.TodayKey()

	existing, err := s.store.GetPost(ctx, key)
	if err == nil {
		return &TodayResult{Post: existing}, nil
	}
	if !errors.Is(err, domain.ErrPostNotFound) {
		return nil, err
	}

	// The shared generation outlives any single caller: a cancelled caller stops waiting
	// but does not abort the work the other callers are waiting on.
	ran := false
	ch := s.inflight.DoChan(key, func() (any, error) {
		ran = true
		genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generationTimeout)
		defer cancel()
		return s.createPost(genCtx, key)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	result := res.Val.(*TodayResult)
	if !ran {
		// Only the caller that ran the generation reports it as created
		return &TodayResult{Post: result.Post}, nil
	}
	return result, nil
}

func (s *PostService) createPost(ctx context.Context, key string) (*TodayResult, error) {
	// Re-check under the in-flight key in case a generation finished between the first lookup and now
	if existing, err := s.store.GetPost(ctx, key); err == nil {
		return &TodayResult{Post: existing}, nil
	} else if !errors.Is(err, domain.ErrPostNotFound) {
		return nil, err
	}

	target, err := s.nextType(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().Str("date", key).Str("type", string(target)).Msg("Generating daily post")

	post, err := s.generator.Generate(ctx, target)
	if err != nil {
		return nil, err
	}
	post.Date = key

	stored, inserted, err := s.store.InsertPostIfAbsent(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to save post for %s: %w", key, err)
	}

	if !inserted {
		log.Warn().Str("date", key).Msg("Post was stored by another writer during generation; discarding generated content")
		return &TodayResult{Post: stored}, nil
	}

	log.Info().Str("date", key).Str("type", post.Type).Str("title", post.Title).Msg("Saved daily post")
	return &TodayResult{Post: stored, Created: true}, nil
}

// nextType derives the type to generate from the chronologically last stored post
func (s *PostService) nextType(ctx context.Context) (domain.PostType, error) {
	lastKey, ok, err := s.store.LastKey(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.NextType(""), nil
	}

	last, err := s.store.GetPost(ctx, lastKey)
	if errors.Is(err, domain.ErrPostNotFound) {
		return domain.NextType(""), nil
	}
	if err != nil {
		return "", err
	}

	return domain.NextType(last.Type), nil
}
