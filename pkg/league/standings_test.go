package league

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeTeams() []Team {
	return []Team{
		{ID: 1, Name: "Alpha", Played: 2, Won: 1, Drawn: 1, GoalsFor: 3, GoalsAgainst: 1, Points: 4, InitialPosition: 1},
		{ID: 2, Name: "Bravo", Played: 2, Won: 1, Lost: 1, GoalsFor: 2, GoalsAgainst: 2, Points: 3, InitialPosition: 2},
		{ID: 3, Name: "Charlie", Played: 2, Drawn: 1, Lost: 1, GoalsFor: 1, GoalsAgainst: 3, Points: 1, InitialPosition: 3},
	}
}

func result(h, a int) *Result {
	return &Result{HomeGoals: h, AwayGoals: a}
}

func TestCalculateStandingsAppliesResults(t *testing.T) {
	teams := threeTeams()
	fixtures := []Match{
		{ID: 1, Matchday: 3, HomeTeamID: 3, AwayTeamID: 1, Result: result(2, 0)},
		{ID: 2, Matchday: 3, HomeTeamID: 2, AwayTeamID: 3, Result: result(1, 1)},
		{ID: 3, Matchday: 4, HomeTeamID: 1, AwayTeamID: 2},
	}

	table := CalculateStandings(teams, fixtures)
	require.Len(t, table, 3)

	// Alpha 4, Bravo 4, Charlie 5
	assert.Equal(t, 3, table[0].ID)
	assert.Equal(t, 5, table[0].Points)
	assert.Equal(t, 4, table[0].Played)
	assert.Equal(t, 1, table[0].Won)
	assert.Equal(t, 2, table[0].Drawn)
	assert.Equal(t, 4, table[0].GoalsFor)
	assert.Equal(t, 4, table[0].GoalsAgainst)

	// Alpha and Bravo are level on points and goal difference, input order decides
	assert.Equal(t, 1, table[1].ID)
	assert.Equal(t, 4, table[1].Points)
	assert.Equal(t, 1, table[1].Lost)
	assert.Equal(t, 2, table[2].ID)
	assert.Equal(t, 4, table[2].Points)

	// inputs untouched
	assert.Equal(t, 4, teams[0].Points)
	assert.Equal(t, 2, teams[2].Played)
}

func TestCalculateStandingsAwayWin(t *testing.T) {
	table := CalculateStandings(threeTeams(), []Match{
		{ID: 1, HomeTeamID: 1, AwayTeamID: 3, Result: result(0, 3)},
	})
	charlie, ok := FindTeam(table, 3)
	require.True(t, ok)
	alpha, _ := FindTeam(table, 1)
	assert.Equal(t, 4, charlie.Points)
	assert.Equal(t, 1, charlie.Won)
	assert.Equal(t, 4, alpha.Points)
	assert.Equal(t, 1, alpha.Lost)
}

func TestCalculateStandingsSkipsUnknownTeams(t *testing.T) {
	table := CalculateStandings(threeTeams(), []Match{
		{ID: 1, HomeTeamID: 1, AwayTeamID: 99, Result: result(5, 0)},
	})
	alpha, _ := FindTeam(table, 1)
	assert.Equal(t, 2, alpha.Played)
}

func TestPointsAwardedPerMatch(t *testing.T) {
	teams := DefaultTeams()
	fixtures := MatchesByMatchday(DefaultFixtures(), 22)
	scores := [][2]int{{1, 0}, {2, 2}, {0, 1}, {3, 1}, {0, 0}, {1, 1}, {4, 0}, {0, 2}, {1, 0}, {2, 1}}
	for i := range fixtures {
		fixtures[i].Result = result(scores[i][0], scores[i][1])
	}

	table := CalculateStandings(teams, fixtures)
	total, played := 0, 0
	for _, tm := range table {
		total += tm.Points
		played += tm.Played
	}
	// 7 decided matches and 3 draws
	assert.Equal(t, 7*3+3*2, total)
	assert.Equal(t, 20, played)
}

func TestSortStandingsIsStableOnFullTie(t *testing.T) {
	teams := []Team{{ID: 5, Points: 10}, {ID: 2, Points: 10}, {ID: 9, Points: 12}}
	SortStandings(teams)
	assert.Equal(t, []int{9, 5, 2}, []int{teams[0].ID, teams[1].ID, teams[2].ID})
}

func TestZoneFor(t *testing.T) {
	assert.Equal(t, ZoneDirectPromotion, ZoneFor(1))
	assert.Equal(t, ZonePromotionPlayoff, ZoneFor(2))
	assert.Equal(t, ZonePromotionPlayoff, ZoneFor(5))
	assert.Equal(t, ZoneSafe, ZoneFor(6))
	assert.Equal(t, ZoneSafe, ZoneFor(12))
	assert.Equal(t, ZoneRelegationPlayout, ZoneFor(13))
	assert.Equal(t, ZoneRelegation, ZoneFor(14))
	assert.Equal(t, ZoneRelegation, ZoneFor(20))
	assert.Equal(t, "relegation playout", ZoneFor(13).String())
}

func TestPosition(t *testing.T) {
	table := CalculateStandings(threeTeams(), nil)
	assert.Equal(t, 1, Position(table, 1))
	assert.Equal(t, 3, Position(table, 3))
	assert.Equal(t, 0, Position(table, 42))
}
