package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerei-app/zerei/internal/config"
	"github.com/zerei-app/zerei/internal/store"
)

// Directory names deliberately differ from manifest ids
var testLibrary = map[string]string{
	"world-wonders": `
[collection]
id = "wonders-2024"
title = "World Wonders"
tags = ["Travel"]
author = "Zerei"
created_date = "2024-05-01"
schema_version = "1.0"

[[cards]]
id = "petra"
title = "Petra"
image = "petra.png"

[[cards]]
id = "machu-picchu"
title = "Machu Picchu"
image = "machu.png"
`,
	"games": `
[collection]
id = "games"
title = "Tabletop"
tags = ["Games"]
schema_version = "1.0"

[[cards]]
id = "chess"
image = "chess.png"
[[cards]]
id = "go"
image = "go.png"
[[cards]]
id = "catan"
image = "catan.png"
[[cards]]
id = "carcassonne"
image = "carcassonne.png"
`,
}

// setupLibrary points the XDG directories at a temp dir and fills the
// collection library
func setupLibrary(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))

	for dir, manifest := range testLibrary {
		path := filepath.Join(config.GetLibraryPath(), dir)
		require.NoError(t, os.MkdirAll(path, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(path, "collection.toml"), []byte(manifest), 0644))
	}

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })
}

// resetFlags restores every flag to its default so runs do not leak into
// each other
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns what it printed
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(RootCmd)
	RootCmd.SetArgs(args)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w

	out := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		out <- string(b)
	}()

	runErr := RootCmd.ExecuteContext(context.Background())

	w.Close()
	os.Stdout = stdout
	return <-out, runErr
}

// withStore opens the progress database the commands use
func withStore(t *testing.T, fn func(ctx context.Context, s *store.Store)) {
	t.Helper()
	s, err := store.Open(config.GetDatabasePath(), nil)
	require.NoError(t, err)
	defer s.Close()
	fn(context.Background(), s)
}

func complete(t *testing.T, collectionID string, cardIDs ...string) {
	t.Helper()
	withStore(t, func(ctx context.Context, s *store.Store) {
		uc, err := s.FindByCollection(ctx, collectionID)
		require.NoError(t, err)
		for _, id := range cardIDs {
			require.NoError(t, s.CompleteCard(ctx, uc.ID, store.Completion{CardID: id, CardTitle: id}))
		}
	})
}

func TestAcquireThenProgressSummary(t *testing.T) {
	setupLibrary(t)

	out, err := execute(t, "collection", "acquire", "world-wonders")
	require.NoError(t, err)
	assert.Contains(t, out, "Acquired World Wonders (2 cards)")

	withStore(t, func(ctx context.Context, s *store.Store) {
		uc, err := s.FindByCollection(ctx, "wonders-2024")
		require.NoError(t, err)
		assert.True(t, uc.Public)
	})

	out, err = execute(t, "progress", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "World Wonders")
	assert.Contains(t, out, "0/2")
	assert.NotContains(t, out, "missing from library")
}

func TestAcquireTwice(t *testing.T) {
	setupLibrary(t)

	_, err := execute(t, "collection", "acquire", "games", "--private")
	require.NoError(t, err)
	_, err = execute(t, "collection", "acquire", "games")
	assert.ErrorIs(t, err, store.ErrAlreadyAcquired)

	withStore(t, func(ctx context.Context, s *store.Store) {
		uc, err := s.FindByCollection(ctx, "games")
		require.NoError(t, err)
		assert.False(t, uc.Public)
	})
}

func TestProgressFallsBackToDefaultCollection(t *testing.T) {
	setupLibrary(t)

	_, err := execute(t, "progress")
	assert.ErrorContains(t, err, "no default collection set")

	_, err = execute(t, "collection", "set-default", "world-wonders")
	require.NoError(t, err)
	_, err = execute(t, "collection", "acquire")
	require.NoError(t, err)
	complete(t, "wonders-2024", "petra")

	out, err := execute(t, "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "1/2 (50%)")
	assert.Contains(t, out, "✓  1. Petra")
	assert.Contains(t, out, "·  2. Machu Picchu")
	assert.Contains(t, out, "by Zerei, 2024-05-01")
}

func TestCollectionListArchived(t *testing.T) {
	setupLibrary(t)

	for _, name := range []string{"world-wonders", "games"} {
		_, err := execute(t, "collection", "acquire", name)
		require.NoError(t, err)
	}
	complete(t, "games", "chess")

	out, err := execute(t, "collection", "archive", "games")
	require.NoError(t, err)
	assert.Contains(t, out, "Archived Tabletop")

	out, err = execute(t, "collection", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "world-wonders (World Wonders) 0/2")
	assert.NotContains(t, out, "games (Tabletop)")

	out, err = execute(t, "collection", "ls", "--archived")
	require.NoError(t, err)
	assert.Contains(t, out, "games (Tabletop) 1/4, archived")
	assert.NotContains(t, out, "world-wonders")

	_, err = execute(t, "collection", "unarchive", "games")
	require.NoError(t, err)
	out, err = execute(t, "collection", "ls", "--tag", "games")
	require.NoError(t, err)
	assert.Contains(t, out, "games (Tabletop) 1/4")
	assert.NotContains(t, out, "world-wonders")
}

func TestCollectionListMarksDefault(t *testing.T) {
	setupLibrary(t)

	_, err := execute(t, "collection", "set-default", "games")
	require.NoError(t, err)

	out, err := execute(t, "collection", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "* games (Tabletop) [DEFAULT] not acquired")
	assert.Contains(t, out, "  world-wonders (World Wonders) not acquired")
}

func TestResetClearsProgress(t *testing.T) {
	setupLibrary(t)

	_, err := execute(t, "collection", "acquire", "world-wonders")
	require.NoError(t, err)
	complete(t, "wonders-2024", "petra", "machu-picchu")

	out, err := execute(t, "collection", "reset", "world-wonders")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress for World Wonders has been reset")

	withStore(t, func(ctx context.Context, s *store.Store) {
		uc, err := s.FindByCollection(ctx, "wonders-2024")
		require.NoError(t, err)
		done, err := s.CompletedCards(ctx, uc.ID)
		require.NoError(t, err)
		assert.Empty(t, done)
	})
}

func TestPrivacyToggles(t *testing.T) {
	setupLibrary(t)

	_, err := execute(t, "collection", "acquire", "games")
	require.NoError(t, err)

	out, err := execute(t, "collection", "privacy", "games")
	require.NoError(t, err)
	assert.Contains(t, out, "Tabletop is now private")

	out, err = execute(t, "collection", "privacy", "games")
	require.NoError(t, err)
	assert.Contains(t, out, "Tabletop is now public")
}

func TestCommandsRequireAcquiredCollection(t *testing.T) {
	setupLibrary(t)

	for _, args := range [][]string{
		{"collection", "privacy", "games"},
		{"collection", "archive", "games"},
		{"collection", "reset", "games"},
		{"progress", "games"},
	} {
		_, err := execute(t, args...)
		assert.ErrorContains(t, err, "has not been acquired", args)
	}
}

func TestProgressSummaryWithNothingAcquired(t *testing.T) {
	setupLibrary(t)

	out, err := execute(t, "progress", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "You have not acquired any collections yet.")
}

func TestParseCompletionDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr string
	}{
		{name: "empty means now", value: ""},
		{name: "past day", value: "2026-02-28", want: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{name: "today", value: "2026-03-10", want: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{name: "tomorrow", value: "2026-03-11", wantErr: "in the future"},
		{name: "bad format", value: "10/03/2026", wantErr: "expected YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCompletionDate(tt.value, now)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}
