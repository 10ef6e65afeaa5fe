package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dfryer1193/memento/memento/domain"
)

// memoryStore is an in-memory domain.PostStore
type memoryStore struct {
	mu      sync.Mutex
	posts   map[string]*domain.Post
	inserts int
	loadErr error

	// beforeInsert runs inside InsertPostIfAbsent before the key is checked
	beforeInsert func(posts map[string]*domain.Post)
}

func newMemoryStore(posts ...*domain.Post) *memoryStore {
	s := &memoryStore{posts: make(map[string]*domain.Post)}
	for _, p := range posts {
		s.posts[p.Date] = p
	}
	return s
}

func (s *memoryStore) Load(ctx context.Context) (map[string]*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]*domain.Post, len(s.posts))
	for k, v := range s.posts {
		out[k] = v
	}
	return out, nil
}

func (s *memoryStore) GetPost(ctx context.Context, date string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	p, ok := s.posts[date]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, date)
	}
	return p, nil
}

func (s *memoryStore) UpsertPost(ctx context.Context, p *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.Date] = p
	return nil
}

func (s *memoryStore) InsertPostIfAbsent(ctx context.Context, p *domain.Post) (*domain.Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeInsert != nil {
		s.beforeInsert(s.posts)
	}
	if existing, ok := s.posts[p.Date]; ok {
		return existing, false, nil
	}
	s.posts[p.Date] = p
	s.inserts++
	return p, true, nil
}

func (s *memoryStore) LastKey(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return "", false, s.loadErr
	}
	if len(s.posts) == 0 {
		return "", false, nil
	}
	keys := make([]string, 0, len(s.posts))
	for k := range s.posts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[len(keys)-1], true, nil
}

// fakeProvider is a domain.TextProvider returning canned text
type fakeProvider struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
	// release, when set, blocks GenerateText until it is closed or ctx is done
	release chan struct{}
	// entered, when set, receives once per call before blocking on release
	entered chan struct{}
}

func (p *fakeProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	if p.entered != nil {
		select {
		case p.entered <- struct{}{}:
		default:
		}
	}
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	return p.text, nil
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}
