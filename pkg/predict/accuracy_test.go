package predict

import (
	"testing"

	"github.com/richard-senior/rfef/pkg/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePrediction(id int) MatchPrediction {
	return MatchPrediction{
		MatchID:            id,
		HomeWinProbability: 0.6,
		DrawProbability:    0.3,
		AwayWinProbability: 0.1,
		PredictedHomeGoals: 1.6,
		PredictedAwayGoals: 0.4,
		Factors:            neutralFactors(),
	}
}

func TestEvaluatePredictionAccuracy(t *testing.T) {
	acc := EvaluatePredictionAccuracy(samplePrediction(1), league.Result{HomeGoals: 2, AwayGoals: 0})
	assert.True(t, acc.ExactScoreCorrect)
	assert.True(t, acc.ResultCorrect)
	assert.Equal(t, 0, acc.GoalDifferenceError)
	assert.InDelta(t, 0.26, acc.BrierScore, 1e-9)

	acc = EvaluatePredictionAccuracy(samplePrediction(1), league.Result{HomeGoals: 1, AwayGoals: 1})
	assert.False(t, acc.ExactScoreCorrect)
	assert.False(t, acc.ResultCorrect)
	assert.Equal(t, league.Draw, acc.ActualOutcome)
	assert.Equal(t, 2, acc.GoalDifferenceError)
	assert.Equal(t, 0, acc.TotalGoalsError)
	assert.InDelta(t, 0.86, acc.BrierScore, 1e-9)
}

func TestEvaluateAll(t *testing.T) {
	fixtures := []league.Match{
		{ID: 1, Result: &league.Result{HomeGoals: 2, AwayGoals: 0}},
		{ID: 2, Result: &league.Result{HomeGoals: 1, AwayGoals: 1}},
		{ID: 3},
	}
	preds := []MatchPrediction{samplePrediction(1), samplePrediction(2), samplePrediction(3), samplePrediction(99)}

	agg := EvaluateAll(preds, fixtures)
	require.NotNil(t, agg)
	assert.Equal(t, 2, agg.TotalMatches)
	assert.InDelta(t, 50, agg.ExactScoreAccuracy, 1e-9)
	assert.InDelta(t, 50, agg.ResultAccuracy, 1e-9)
	assert.InDelta(t, 1, agg.AverageGoalDiffError, 1e-9)
	assert.InDelta(t, 0.56, agg.AverageBrierScore, 1e-9)

	assert.Nil(t, EvaluateAll(preds, []league.Match{{ID: 1}}))
}
