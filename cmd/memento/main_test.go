package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dfryer1193/memento/memento/domain"
	"github.com/dfryer1193/memento/memento/persistence"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, storagePath, apiKey string) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", apiKey)
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("STORAGE_PATH", storagePath)
	t.Setenv("MEMENTO_PORT", "")
	t.Setenv("MEMENTO_SCHEDULE", "")
	t.Setenv("MEMENTO_LOG_LEVEL", "error")
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedToday(t *testing.T, path string) *domain.Post {
	t.Helper()
	post := &domain.Post{
		Type:     string(domain.TypeQuote),
		Title:    "Seneca",
		Body:     "Let us prepare our minds as if we had come to the very end of life.",
		Takeaway: "Live today fully.",
		Date:     domain.TodayKey(),
	}
	require.NoError(t, persistence.NewJSONPostStore(path).UpsertPost(context.Background(), post))
	return post
}

func TestGenerate_MissingCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	setEnv(t, path, "")

	_, err := execute("generate")
	require.Error(t, err)

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, "Missing OPENAI_API_KEY", err.Error())
}

func TestGenerate_ExistingPostSkipsProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	setEnv(t, path, "sk-test")
	// Any provider call would fail against this address
	t.Setenv("OPENAI_BASE_URL", "http://127.0.0.1:1/v1")
	seeded := seedToday(t, path)

	out, err := execute("generate")
	require.NoError(t, err)
	require.Contains(t, out, "Post already exists for "+seeded.Date)

	var printed domain.Post
	jsonStart := bytes.IndexByte([]byte(out), '{')
	require.GreaterOrEqual(t, jsonStart, 0)
	require.NoError(t, json.Unmarshal([]byte(out[jsonStart:]), &printed))
	require.Equal(t, *seeded, printed)
}

func TestGenerate_ProviderFailureExitsWithError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	setEnv(t, path, "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://127.0.0.1:1/v1")

	_, err := execute("generate")
	require.Error(t, err)

	all, err := persistence.NewJSONPostStore(path).Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	setEnv(t, path, "")
	seeded := seedToday(t, path)

	t.Run("today", func(t *testing.T) {
		out, err := execute("show")
		require.NoError(t, err)

		var printed domain.Post
		require.NoError(t, json.Unmarshal([]byte(out), &printed))
		require.Equal(t, *seeded, printed)
	})

	t.Run("by date", func(t *testing.T) {
		out, err := execute("show", seeded.Date)
		require.NoError(t, err)
		require.Contains(t, out, `"title": "Seneca"`)
	})

	t.Run("missing date", func(t *testing.T) {
		_, err := execute("show", "1999-01-01")
		require.ErrorIs(t, err, domain.ErrPostNotFound)
	})
}

func TestShow_SQLiteDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.db")
	setEnv(t, path, "")
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := execute("show")
	require.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestUnknownDriver(t *testing.T) {
	setEnv(t, filepath.Join(t.TempDir(), "posts"), "")
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := execute("show")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown storage driver")
}
