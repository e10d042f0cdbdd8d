package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOfficial() league.OfficialResults {
	var o league.OfficialResults
	o.Upsert(league.MatchdayUpdate{Matchday: 22, Matches: []league.MatchUpdate{
		{ID: 1, Result: league.Result{HomeGoals: 2, AwayGoals: 1, IsOfficial: true}, Locked: true},
	}})
	return o
}

func TestRedisOfficialStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	s := NewRedisOfficialStore(client)

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty.Matchdays)
	assert.Empty(t, empty.Matchdays)

	require.NoError(t, s.Save(ctx, sampleOfficial()))
	assert.True(t, mr.Exists(OfficialResultsKey))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	md, ok := got.Matchday(22)
	require.True(t, ok)
	assert.Equal(t, 2, md.Matches[0].Result.HomeGoals)
}

func TestRedisOfficialStoreCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(OfficialResultsKey, "{not json"))
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	_, err := NewRedisOfficialStore(client).Load(context.Background())
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), mr.Addr(), "", 0)
	assert.Error(t, err)
}

func TestFileOfficialStore(t *testing.T) {
	ctx := context.Background()
	s := NewFileOfficialStore(filepath.Join(t.TempDir(), "nested", "official.json"))

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Matchdays)

	require.NoError(t, s.Save(ctx, sampleOfficial()))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleOfficial(), got)
}
