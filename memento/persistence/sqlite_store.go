package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dfryer1193/memento/memento/domain"
	"github.com/dfryer1193/memento/shared/db"
)

var _ domain.PostStore = (*SQLitePostStore)(nil)

// SQLitePostStore implements domain.PostStore using the daily_posts table
type SQLitePostStore struct {
	db *sql.DB
}

// NewSQLitePostStore creates a new SQLitePostStore from a connected sql.DB
func NewSQLitePostStore(db *sql.DB) *SQLitePostStore {
	return &SQLitePostStore{
		db: db,
	}
}

const listPostsQuery = `
	SELECT date, type, title, body, takeaway
	FROM daily_posts
`

// Load returns every stored post keyed by date
func (r *SQLitePostStore) Load(ctx context.Context) (map[string]*domain.Post, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, listPostsQuery)
	if err != nil {
		return nil, &domain.StorageError{Op: "list posts", Err: err}
	}
	defer rows.Close()

	posts := make(map[string]*domain.Post)
	for rows.Next() {
		var row postRow
		if err := rows.Scan(&row.Date, &row.Type, &row.Title, &row.Body, &row.Takeaway); err != nil {
			return nil, &domain.StorageError{Op: "scan post row", Err: err}
		}
		posts[row.Date] = row.toDomain()
	}

	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "iterate post rows", Err: err}
	}

	return posts, nil
}

const getPostQuery = `
	SELECT date, type, title, body, takeaway
	FROM daily_posts
	WHERE date = ?
`

// GetPost retrieves a single post by date key
func (r *SQLitePostStore) GetPost(ctx context.Context, date string) (*domain.Post, error) {
	return r.getPost(ctx, db.GetExecutor(ctx, r.db), date)
}

func (r *SQLitePostStore) getPost(ctx context.Context, exec db.Executor, date string) (*domain.Post, error) {
	var row postRow
	err := exec.QueryRowContext(ctx, getPostQuery, date).Scan(
		&row.Date,
		&row.Type,
		&row.Title,
		&row.Body,
		&row.Takeaway,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, date)
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get post", Err: err}
	}

	return row.toDomain(), nil
}

const upsertPostQuery = `
	INSERT INTO daily_posts (date, type, title, body, takeaway)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(date) DO UPDATE SET
		type = excluded.type,
		title = excluded.title,
		body = excluded.body,
		takeaway = excluded.takeaway
`

// UpsertPost inserts the post or replaces the one stored under the same date
func (r *SQLitePostStore) UpsertPost(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}
	if p.Date == "" {
		return fmt.Errorf("post date cannot be empty")
	}

	executor := db.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, upsertPostQuery, p.Date, p.Type, p.Title, p.Body, p.Takeaway)
	if err != nil {
		return &domain.StorageError{Op: "upsert post", Err: err}
	}
	return nil
}

const insertPostIfAbsentQuery = `
	INSERT INTO daily_posts (date, type, title, body, takeaway)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(date) DO NOTHING
`

// InsertPostIfAbsent inserts the post unless its date is already taken, in which case the stored post is returned
func (r *SQLitePostStore) InsertPostIfAbsent(ctx context.Context, p *domain.Post) (*domain.Post, bool, error) {
	if p == nil {
		return nil, false, fmt.Errorf("post cannot be nil")
	}
	if p.Date == "" {
		return nil, false, fmt.Errorf("post date cannot be empty")
	}

	stored := p
	inserted := false
	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)
		res, err := executor.ExecContext(txCtx, insertPostIfAbsentQuery, p.Date, p.Type, p.Title, p.Body, p.Takeaway)
		if err != nil {
			return &domain.StorageError{Op: "insert post", Err: err}
		}

		n, err := res.RowsAffected()
		if err != nil {
			return &domain.StorageError{Op: "insert post", Err: err}
		}
		if n == 1 {
			inserted = true
			return nil
		}

		existing, err := r.getPost(txCtx, executor, p.Date)
		if err != nil {
			return err
		}
		stored = existing
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return stored, inserted, nil
}

const lastKeyQuery = `
	SELECT date FROM daily_posts ORDER BY date DESC LIMIT 1
`

// LastKey returns the greatest date key in the table
func (r *SQLitePostStore) LastKey(ctx context.Context) (string, bool, error) {
	var key string
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, lastKeyQuery).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &domain.StorageError{Op: "get last key", Err: err}
	}
	return key, true, nil
}

// postRow is a private struct used to scan database rows
type postRow struct {
	Date     string `db:"date"`
	Type     string `db:"type"`
	Title    string `db:"title"`
	Body     string `db:"body"`
	Takeaway string `db:"takeaway"`
}

// toDomain converts a postRow to a domain.Post
func (pr *postRow) toDomain() *domain.Post {
	return &domain.Post{
		Type:     pr.Type,
		Title:    pr.Title,
		Body:     pr.Body,
		Takeaway: pr.Takeaway,
		Date:     pr.Date,
	}
}
