package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/richard-senior/rfef/pkg/predict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory() []predict.HistoricalMatch {
	return []predict.HistoricalMatch{
		{ID: 2, Date: "2024-03-10", HomeTeamID: 3, AwayTeamID: 4, HomeGoals: 0, AwayGoals: 0, Season: "2023-2024"},
		{ID: 1, Date: "2024-03-03", HomeTeamID: 1, AwayTeamID: 2, HomeGoals: 2, AwayGoals: 1, Season: "2023-2024", Matchday: 27},
	}
}

func TestFileHistoricalStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "historical.json")
	s := NewFileHistoricalStore(path)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Replace(ctx, sampleHistory()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"matches"`)

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleHistory(), got)
}

func TestFileHistoricalStoreBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "historical.json")
	require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0o644))
	_, err := NewFileHistoricalStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestSQLHistoricalStoreReplace(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	s := NewSQLHistoricalStore()

	require.NoError(t, s.Replace(ctx, sampleHistory()))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 27, got[0].Matchday)

	// a failing row leaves the previous contents in place
	bad := []predict.HistoricalMatch{{ID: 9, HomeTeamID: 5, AwayTeamID: 5}}
	assert.Error(t, s.Replace(ctx, bad))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, s.Replace(ctx, sampleHistory()[:1]))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)
}
