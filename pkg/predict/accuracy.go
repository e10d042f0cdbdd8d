package predict

import (
	"math"

	"github.com/richard-senior/rfef/pkg/league"
)

// PredictionAccuracy holds accuracy metrics for a single match prediction
type PredictionAccuracy struct {
	MatchID             int            `json:"matchId"`
	ActualHomeGoals     int            `json:"actualHomeGoals"`
	ActualAwayGoals     int            `json:"actualAwayGoals"`
	PredictedHomeGoals  int            `json:"predictedHomeGoals"`
	PredictedAwayGoals  int            `json:"predictedAwayGoals"`
	PredictedOutcome    league.Outcome `json:"predictedOutcome"`
	ActualOutcome       league.Outcome `json:"actualOutcome"`
	ExactScoreCorrect   bool           `json:"exactScoreCorrect"`
	ResultCorrect       bool           `json:"resultCorrect"`
	GoalDifferenceError int            `json:"goalDifferenceError"`
	TotalGoalsError     int            `json:"totalGoalsError"`
	BrierScore          float64        `json:"brierScore"`
}

// AggregateAccuracy holds aggregate prediction accuracy statistics
type AggregateAccuracy struct {
	TotalMatches           int     `json:"totalMatches"`
	ExactScoreAccuracy     float64 `json:"exactScoreAccuracy"` // Percentage
	ResultAccuracy         float64 `json:"resultAccuracy"`     // Percentage
	AverageGoalDiffError   float64 `json:"averageGoalDiffError"`
	AverageTotalGoalsError float64 `json:"averageTotalGoalsError"`
	AverageBrierScore      float64 `json:"averageBrierScore"`
}

// EvaluatePredictionAccuracy compares a prediction with the actual result.
// The predicted score is the rounded expected goals and the predicted
// outcome is MostLikelyResult.
func EvaluatePredictionAccuracy(p MatchPrediction, actual league.Result) PredictionAccuracy {
	acc := PredictionAccuracy{
		MatchID:            p.MatchID,
		ActualHomeGoals:    actual.HomeGoals,
		ActualAwayGoals:    actual.AwayGoals,
		PredictedHomeGoals: int(math.Round(p.PredictedHomeGoals)),
		PredictedAwayGoals: int(math.Round(p.PredictedAwayGoals)),
		PredictedOutcome:   MostLikelyResult(p),
		ActualOutcome:      actual.Outcome(),
	}
	acc.ExactScoreCorrect = acc.PredictedHomeGoals == acc.ActualHomeGoals && acc.PredictedAwayGoals == acc.ActualAwayGoals
	acc.ResultCorrect = acc.PredictedOutcome == acc.ActualOutcome
	acc.GoalDifferenceError = abs((acc.ActualHomeGoals - acc.ActualAwayGoals) - (acc.PredictedHomeGoals - acc.PredictedAwayGoals))
	acc.TotalGoalsError = abs((acc.ActualHomeGoals + acc.ActualAwayGoals) - (acc.PredictedHomeGoals + acc.PredictedAwayGoals))

	var oh, od, oa float64
	switch acc.ActualOutcome {
	case league.HomeWin:
		oh = 1
	case league.Draw:
		od = 1
	default:
		oa = 1
	}
	acc.BrierScore = sq(p.HomeWinProbability-oh) + sq(p.DrawProbability-od) + sq(p.AwayWinProbability-oa)
	return acc
}

// EvaluateAll scores every prediction whose fixture has a result.
// Returns nil when nothing can be evaluated.
func EvaluateAll(predictions []MatchPrediction, fixtures []league.Match) *AggregateAccuracy {
	var accs []PredictionAccuracy
	for _, p := range predictions {
		m, ok := league.MatchByID(fixtures, p.MatchID)
		if !ok || !m.HasResult() {
			continue
		}
		accs = append(accs, EvaluatePredictionAccuracy(p, *m.Result))
	}
	if len(accs) == 0 {
		return nil
	}

	var exact, correct, gdErr, goalsErr int
	var brier float64
	for _, a := range accs {
		if a.ExactScoreCorrect {
			exact++
		}
		if a.ResultCorrect {
			correct++
		}
		gdErr += a.GoalDifferenceError
		goalsErr += a.TotalGoalsError
		brier += a.BrierScore
	}
	n := float64(len(accs))
	return &AggregateAccuracy{
		TotalMatches:           len(accs),
		ExactScoreAccuracy:     float64(exact) / n * 100,
		ResultAccuracy:         float64(correct) / n * 100,
		AverageGoalDiffError:   float64(gdErr) / n,
		AverageTotalGoalsError: float64(goalsErr) / n,
		AverageBrierScore:      brier / n,
	}
}

func sq(v float64) float64 { return v * v }
