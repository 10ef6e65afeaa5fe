package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/dfryer1193/memento/memento/domain"
)

// runStoreTests exercises the domain.PostStore contract against any implementation
func runStoreTests(t *testing.T, newStore func(t *testing.T) domain.PostStore) {
	t.Run("empty store", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		posts, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(posts) != 0 {
			t.Errorf("len(posts) = %d, want 0", len(posts))
		}

		_, ok, err := store.LastKey(ctx)
		if err != nil {
			t.Fatalf("LastKey failed: %v", err)
		}
		if ok {
			t.Error("LastKey reported a key for an empty store")
		}
	})

	t.Run("get missing post", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetPost(context.Background(), "2024-11-03")
		if !errors.Is(err, domain.ErrPostNotFound) {
			t.Errorf("GetPost error = %v, want ErrPostNotFound", err)
		}
	})

	t.Run("upsert then get", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		post := &domain.Post{
			Type:     "Quote",
			Title:    "Memento",
			Body:     "Life is brief.\nAnd precious.",
			Takeaway: "Act today.",
			Date:     "2024-11-03",
		}
		if err := store.UpsertPost(ctx, post); err != nil {
			t.Fatalf("UpsertPost failed: %v", err)
		}

		got, err := store.GetPost(ctx, "2024-11-03")
		if err != nil {
			t.Fatalf("GetPost failed: %v", err)
		}
		if *got != *post {
			t.Errorf("GetPost = %+v, want %+v", got, post)
		}
	})

	t.Run("upsert replaces", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if err := store.UpsertPost(ctx, &domain.Post{Date: "2024-11-03", Title: "Original"}); err != nil {
			t.Fatalf("UpsertPost failed: %v", err)
		}
		if err := store.UpsertPost(ctx, &domain.Post{Date: "2024-11-03", Title: "Corrected"}); err != nil {
			t.Fatalf("UpsertPost failed: %v", err)
		}

		got, err := store.GetPost(ctx, "2024-11-03")
		if err != nil {
			t.Fatalf("GetPost failed: %v", err)
		}
		if got.Title != "Corrected" {
			t.Errorf("Title = %q, want %q", got.Title, "Corrected")
		}

		posts, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(posts) != 1 {
			t.Errorf("len(posts) = %d, want 1", len(posts))
		}
	})

	t.Run("upsert rejects missing date", func(t *testing.T) {
		store := newStore(t)

		if err := store.UpsertPost(context.Background(), &domain.Post{Title: "No date"}); err == nil {
			t.Error("UpsertPost without a date should fail")
		}
		if err := store.UpsertPost(context.Background(), nil); err == nil {
			t.Error("UpsertPost with nil post should fail")
		}
	})

	t.Run("partially populated post is accepted", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if err := store.UpsertPost(ctx, &domain.Post{Date: "2024-11-03"}); err != nil {
			t.Fatalf("UpsertPost failed: %v", err)
		}

		got, err := store.GetPost(ctx, "2024-11-03")
		if err != nil {
			t.Fatalf("GetPost failed: %v", err)
		}
		if got.Type != "" || got.Title != "" || got.Body != "" || got.Takeaway != "" {
			t.Errorf("GetPost = %+v, want empty fields", got)
		}
	})

	t.Run("last key is the greatest date", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, date := range []string{"2024-11-03", "2025-01-01", "2024-12-31"} {
			if err := store.UpsertPost(ctx, &domain.Post{Date: date}); err != nil {
				t.Fatalf("UpsertPost(%s) failed: %v", date, err)
			}
		}

		key, ok, err := store.LastKey(ctx)
		if err != nil {
			t.Fatalf("LastKey failed: %v", err)
		}
		if !ok || key != "2025-01-01" {
			t.Errorf("LastKey = %q, %v, want %q, true", key, ok, "2025-01-01")
		}
	})

	t.Run("insert if absent keeps the first writer", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first := &domain.Post{Date: "2024-11-03", Title: "First"}
		stored, inserted, err := store.InsertPostIfAbsent(ctx, first)
		if err != nil {
			t.Fatalf("InsertPostIfAbsent failed: %v", err)
		}
		if !inserted {
			t.Error("first insert should report inserted")
		}
		if stored.Title != "First" {
			t.Errorf("stored.Title = %q, want %q", stored.Title, "First")
		}

		second := &domain.Post{Date: "2024-11-03", Title: "Second"}
		stored, inserted, err = store.InsertPostIfAbsent(ctx, second)
		if err != nil {
			t.Fatalf("InsertPostIfAbsent failed: %v", err)
		}
		if inserted {
			t.Error("second insert should not report inserted")
		}
		if stored.Title != "First" {
			t.Errorf("stored.Title = %q, want %q", stored.Title, "First")
		}

		got, err := store.GetPost(ctx, "2024-11-03")
		if err != nil {
			t.Fatalf("GetPost failed: %v", err)
		}
		if got.Title != "First" {
			t.Errorf("GetPost.Title = %q, want %q", got.Title, "First")
		}
	})
}
