package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/richard-senior/rfef/pkg/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotsKeepNewest(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	teams := league.DefaultTeams()

	for i := 0; i < MaxSnapshots+5; i++ {
		_, err := AddSnapshot(ctx, fmt.Sprintf("snapshot %d", i), teams)
		require.NoError(t, err)
	}

	list, err := ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, MaxSnapshots)
	assert.Equal(t, fmt.Sprintf("snapshot %d", MaxSnapshots+4), list[0].Description)
	assert.Equal(t, "snapshot 5", list[MaxSnapshots-1].Description)
	assert.Len(t, list[0].Standings, len(teams))
}
