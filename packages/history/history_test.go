package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecord(t *testing.T) {
	store := openStore(t)

	run, err := store.Record(Summary{
		Files:    2,
		Tests:    10,
		Passed:   9,
		Failed:   1,
		Duration: 42 * time.Millisecond,
		Stats:    map[string]int{"assertions": 23},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	assert.False(t, run.Green())
	assert.Equal(t, 23, run.Stat("assertions"))
	assert.Equal(t, 0, run.Stat("missing"))
}

func TestRecent(t *testing.T) {
	store := openStore(t)

	for i := 0; i < 3; i++ {
		_, err := store.Record(Summary{
			Tests:    i + 1,
			Passed:   i + 1,
			Duration: time.Duration(i+1) * time.Millisecond,
		})
		require.NoError(t, err)
	}

	runs, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, 3, runs[0].Tests)
	assert.Equal(t, 2, runs[1].Tests)
	assert.Equal(t, 3*time.Millisecond, runs[0].Duration)
	assert.True(t, runs[0].Green())
}

func TestRecentEmpty(t *testing.T) {
	store := openStore(t)

	runs, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name   string
		failed []int
		want   int
	}{
		{
			name:   "all green",
			failed: []int{0, 0, 0},
			want:   3,
		},
		{
			name:   "broken by red run",
			failed: []int{0, 2, 0, 0},
			want:   2,
		},
		{
			name:   "most recent red",
			failed: []int{0, 0, 1},
			want:   0,
		},
		{
			name:   "no runs",
			failed: nil,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore(t)

			for _, failed := range tt.failed {
				_, err := store.Record(Summary{Tests: 1, Failed: failed})
				require.NoError(t, err)
			}

			streak, err := store.Streak()
			require.NoError(t, err)
			assert.Equal(t, tt.want, streak)
		})
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)

	_, err = store.Record(Summary{Tests: 1})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Recent(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
