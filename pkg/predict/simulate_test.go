package predict

import (
	"context"
	"errors"
	"testing"

	"github.com/richard-senior/rfef/pkg/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(model string) *PredictConfig {
	cfg := DefaultConfig()
	cfg.Simulations = 200
	cfg.SimulationWorkers = 3
	cfg.SimulationModel = model
	cfg.Seed = 42
	return cfg
}

func TestSimulateAllIsReproducible(t *testing.T) {
	teams, fixtures := league.DefaultTeams(), league.DefaultFixtures()
	a, err := SimulateAll(context.Background(), teams, fixtures, testConfig(ModelStrength))
	require.NoError(t, err)
	b, err := SimulateAll(context.Background(), teams, fixtures, testConfig(ModelStrength))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 200, a.Simulations)
}

func TestSimulateAllProbabilitiesAddUp(t *testing.T) {
	for _, model := range []string{ModelStrength, ModelPoisson} {
		t.Run(model, func(t *testing.T) {
			season, err := SimulateAll(context.Background(), league.DefaultTeams(), league.DefaultFixtures(), testConfig(model))
			require.NoError(t, err)
			require.Len(t, season.Teams, 20)

			for _, tp := range season.Teams {
				zones := tp.PlayoffPromotion + tp.Safe + tp.Playout + tp.Relegation
				assert.InDelta(t, 100, zones, 1e-6, "team %d", tp.TeamID)
				assert.GreaterOrEqual(t, tp.PlayoffPromotion, tp.DirectPromotion)
				assert.Equal(t, 0, tp.MinPoints)
				assert.Equal(t, 51, tp.MaxPoints)
				assert.True(t, tp.AveragePosition >= 1 && tp.AveragePosition <= 20)
			}
			for p := 0; p < 20; p++ {
				sum := 0.0
				for _, probs := range season.PositionProbabilities {
					sum += probs[p]
				}
				assert.InDelta(t, 100, sum, 1e-6, "position %d", p+1)
			}
		})
	}
}

func TestSimulateTeamFinishedSeason(t *testing.T) {
	teams := []league.Team{
		{ID: 1, Name: "Alpha", Played: 2, Points: 6},
		{ID: 2, Name: "Bravo", Played: 2, Points: 3},
		{ID: 3, Name: "Charlie", Played: 2, Points: 0},
	}
	cfg := testConfig(ModelStrength)

	tp, err := SimulateTeam(context.Background(), teams, nil, 1, cfg)
	require.NoError(t, err)
	assert.Equal(t, 100.0, tp.DirectPromotion)
	assert.Equal(t, 100.0, tp.PlayoffPromotion)
	assert.Equal(t, 1.0, tp.AveragePosition)
	assert.Equal(t, 6, tp.MaxPoints)

	tp, err = SimulateTeam(context.Background(), teams, nil, 3, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.0, tp.DirectPromotion)
	assert.Equal(t, 100.0, tp.PlayoffPromotion)
	assert.Equal(t, 3.0, tp.AveragePosition)
}

func TestSimulateTeamAwayWinsCount(t *testing.T) {
	// Bravo is far stronger and every remaining match is away from home
	teams := []league.Team{
		{ID: 1, Name: "Alpha", Played: 10, Points: 10},
		{ID: 2, Name: "Bravo", Played: 10, Points: 9},
		{ID: 3, Name: "Charlie", Played: 10, Points: 0},
	}
	fixtures := []league.Match{
		{ID: 1, Matchday: 11, HomeTeamID: 3, AwayTeamID: 2},
		{ID: 2, Matchday: 12, HomeTeamID: 3, AwayTeamID: 2},
	}
	cfg := testConfig(ModelStrength)
	cfg.SimulationHomeBonus = 0
	cfg.SimulationDrawProbability = 0

	tp, err := SimulateTeam(context.Background(), teams, fixtures, 2, cfg)
	require.NoError(t, err)
	assert.Equal(t, 100.0, tp.DirectPromotion)
	assert.Equal(t, 15, tp.MaxPoints)
}

func TestSimulateErrors(t *testing.T) {
	_, err := SimulateTeam(context.Background(), league.DefaultTeams(), league.DefaultFixtures(), 77, nil)
	assert.True(t, errors.Is(err, league.ErrUnknownTeam))

	bad := testConfig("coin flip")
	_, err = SimulateAll(context.Background(), league.DefaultTeams(), league.DefaultFixtures(), bad)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = SimulateAll(ctx, league.DefaultTeams(), league.DefaultFixtures(), testConfig(ModelStrength))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStrength(t *testing.T) {
	assert.Equal(t, 1.0, strength(league.Team{}))
	assert.Equal(t, 2.0, strength(league.Team{Played: 5, Points: 10}))
}

func TestPoissonSimulationUsesItsOwnConfig(t *testing.T) {
	teams := smallTeams()
	fixtures := []league.Match{{ID: 1, Matchday: 1, HomeTeamID: 3, AwayTeamID: 4}}

	base := testConfig(ModelPoisson)
	tuned := testConfig(ModelPoisson)
	tuned.HomeAdvantage = base.HomeAdvantage + 0.034

	a := newSimulation(teams, fixtures, base)
	b := newSimulation(teams, fixtures, tuned)
	require.Len(t, a.expected, 1)
	require.Len(t, b.expected, 1)

	// the global configuration is untouched and goals are not rounded
	assert.InDelta(t, 0.034, b.expected[0][0]-a.expected[0][0], 1e-9)
	assert.InDelta(t, a.expected[0][1], b.expected[0][1], 1e-9)
	assert.Equal(t, DefaultConfig().HomeAdvantage, current().HomeAdvantage)
}
