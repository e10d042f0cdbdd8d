package predict

import (
	"errors"
	"testing"

	"github.com/richard-senior/rfef/pkg/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioLeague() ([]league.Team, []league.Match) {
	teams := []league.Team{
		{ID: 1, Name: "Leaders", Played: 10, Points: 30, GoalsFor: 10, GoalsAgainst: 10},
		{ID: 2, Name: "Chasers", Played: 10, Points: 28, GoalsFor: 10, GoalsAgainst: 10},
		{ID: 3, Name: "Middle", Played: 10, Points: 20, GoalsFor: 10, GoalsAgainst: 10},
		{ID: 4, Name: "Bottom", Played: 10, Points: 10, GoalsFor: 10, GoalsAgainst: 10},
	}
	fixtures := []league.Match{
		{ID: 1, Matchday: 11, HomeTeamID: 1, AwayTeamID: 2},
		{ID: 2, Matchday: 11, HomeTeamID: 3, AwayTeamID: 4},
		{ID: 3, Matchday: 12, HomeTeamID: 2, AwayTeamID: 3},
		{ID: 4, Matchday: 12, HomeTeamID: 4, AwayTeamID: 1},
	}
	return teams, fixtures
}

func intPtr(v int) *int { return &v }

func TestPointsScenario(t *testing.T) {
	teams, fixtures := scenarioLeague()

	res, err := CalculateScenario(teams, fixtures, ScenarioConfig{Type: ScenarioPoints, TeamID: 3, TargetPoints: intPtr(25)})
	require.NoError(t, err)
	assert.True(t, res.Possible)
	assert.False(t, res.Guaranteed)
	assert.Equal(t, 5, res.PointsNeeded)
	require.Len(t, res.RequiredResults, 2)
	assert.Equal(t, Score{HomeGoals: 1}, res.RequiredResults[0].RequiredResult)
	assert.Equal(t, 2, res.RequiredResults[0].MatchID)
	assert.Equal(t, Score{AwayGoals: 1}, res.RequiredResults[1].RequiredResult)
	assert.Equal(t, "Middle needs 5 points: 2 wins from 2 matches.", res.Message)

	res, err = CalculateScenario(teams, fixtures, ScenarioConfig{Type: ScenarioPoints, TeamID: 3, TargetPoints: intPtr(24)})
	require.NoError(t, err)
	require.Len(t, res.RequiredResults, 2)
	assert.Equal(t, Score{HomeGoals: 1, AwayGoals: 1}, res.RequiredResults[1].RequiredResult)

	res, err = CalculateScenario(teams, fixtures, ScenarioConfig{Type: ScenarioPoints, TeamID: 3, TargetPoints: intPtr(27)})
	require.NoError(t, err)
	assert.False(t, res.Possible)
	assert.Empty(t, res.RequiredResults)
	assert.Equal(t, "Middle can reach at most 26 points, 1 short of 27.", res.Message)

	res, err = CalculateScenario(teams, fixtures, ScenarioConfig{Type: ScenarioPoints, TeamID: 3, TargetPoints: intPtr(18)})
	require.NoError(t, err)
	assert.True(t, res.Guaranteed)
	assert.Equal(t, 0, res.PointsNeeded)
}

func TestPositionScenario(t *testing.T) {
	teams, fixtures := scenarioLeague()

	res, err := CalculateScenario(teams, fixtures, ScenarioConfig{Type: ScenarioPosition, TeamID: 2, TargetPosition: intPtr(1)})
	require.NoError(t, err)
	assert.True(t, res.Possible)
	assert.False(t, res.Guaranteed)
	assert.Equal(t, 1, res.BestCasePosition)
	assert.Equal(t, -2, res.CurrentGap)
	assert.Equal(t, 3, res.PointsNeeded)

	ids := make([]int, len(res.RequiredResults))
	for i, r := range res.RequiredResults {
		ids[i] = r.MatchID
	}
	// the match between the two bottom sides cannot matter
	assert.Equal(t, []int{1, 3, 4}, ids)
	assert.Equal(t, Score{AwayGoals: 1}, res.RequiredResults[0].RequiredResult)
	assert.Equal(t, Score{HomeGoals: 1}, res.RequiredResults[2].RequiredResult)

	res, err = CalculateScenario(teams, fixtures, ScenarioConfig{Type: ScenarioPosition, TeamID: 1, TargetPosition: intPtr(2)})
	require.NoError(t, err)
	assert.True(t, res.Guaranteed)
	assert.Empty(t, res.RequiredResults)
	assert.Contains(t, res.Message, "guaranteed")
}

func TestPromotionScenario(t *testing.T) {
	teams, fixtures := scenarioLeague()

	res, err := CalculateScenario(teams, fixtures, ScenarioConfig{Type: ScenarioPromotion, TeamID: 3})
	require.NoError(t, err)
	assert.False(t, res.Possible)
	assert.Equal(t, 3, res.BestCasePosition)
	assert.Contains(t, res.Message, "promotion playoff (best case: position 3)")

	res, err = CalculateScenario(teams, fixtures, ScenarioConfig{Type: ScenarioPromotion, TeamID: 2})
	require.NoError(t, err)
	assert.True(t, res.Possible)
	assert.Equal(t, "Chasers can still win direct promotion.", res.Message)
}

func TestRelegationScenario(t *testing.T) {
	teams, fixtures := scenarioLeague()
	res, err := CalculateScenario(teams, fixtures, ScenarioConfig{Type: ScenarioRelegation, TeamID: 4})
	require.NoError(t, err)
	assert.True(t, res.Guaranteed)
	assert.Contains(t, res.Message, "already safe")

	res, err = CalculateScenario(league.DefaultTeams(), league.DefaultFixtures(), ScenarioConfig{Type: ScenarioRelegation, TeamID: 20})
	require.NoError(t, err)
	assert.True(t, res.Possible)
	assert.False(t, res.Guaranteed)
	assert.LessOrEqual(t, res.BestCasePosition, league.PlayoutPosition)
}

func TestScenarioErrors(t *testing.T) {
	teams, fixtures := scenarioLeague()
	cases := map[string]ScenarioConfig{
		"no target points":   {Type: ScenarioPoints, TeamID: 1},
		"no target position": {Type: ScenarioPosition, TeamID: 1},
		"position too high":  {Type: ScenarioPosition, TeamID: 1, TargetPosition: intPtr(0)},
		"position too low":   {Type: ScenarioPosition, TeamID: 1, TargetPosition: intPtr(5)},
		"unknown type":       {Type: "title", TeamID: 1},
	}
	for name, sc := range cases {
		_, err := CalculateScenario(teams, fixtures, sc)
		assert.True(t, errors.Is(err, ErrInvalidScenario), name)
	}

	_, err := CalculateScenario(teams, fixtures, ScenarioConfig{Type: ScenarioPromotion, TeamID: 9})
	assert.True(t, errors.Is(err, league.ErrUnknownTeam))
}
