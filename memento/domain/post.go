package domain

import (
	"context"
)

// PostType is the kind of item a daily post carries.
type PostType string

const (
	TypeQuote             PostType = "Quote"
	TypeHistoricalExample PostType = "Historical Example"
	TypeExercise          PostType = "Exercise"
)

// Post represents one generated daily item.
// Date is the civil date key (YYYY-MM-DD, US Eastern) and is unique within a store.
// Any of the text fields may be empty when the generated text did not follow the expected shape.
type Post struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Takeaway string `json:"takeaway"`
	Date     string `json:"date"`
}

// PostStore is a persisted mapping from date key to Post.
type PostStore interface {
	// Load returns the full contents of the store, creating an empty store if none exists yet.
	Load(ctx context.Context) (map[string]*Post, error)

	// GetPost returns the post stored under date, or ErrPostNotFound.
	GetPost(ctx context.Context, date string) (*Post, error)

	// UpsertPost sets the post stored under p.Date, replacing any previous value.
	UpsertPost(ctx context.Context, p *Post) error

	// InsertPostIfAbsent stores p only if p.Date is not taken yet.
	// It returns the post that is stored after the call and whether p was the one inserted.
	InsertPostIfAbsent(ctx context.Context, p *Post) (*Post, bool, error)

	// LastKey returns the greatest date key holding a post. ok is false when there is none.
	LastKey(ctx context.Context) (key string, ok bool, err error)
}
