package service

import (
	"context"

	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/predict"
)

// progressionTeams is how many of the leaders get a points progression
const progressionTeams = 5

// Stats is the advanced statistics panel
type Stats struct {
	TopScorers   []league.Team                     `json:"topScorers"`
	BestDefences []league.Team                     `json:"bestDefences"`
	Progression  map[int][]league.ProgressionPoint `json:"progression"`
	Accuracy     *predict.AggregateAccuracy        `json:"accuracy,omitempty"`
}

// Stats computes the panel for the table produced by temp. Accuracy scores
// predictions made before any second-half result against the results now
// known.
func (s *Service) Stats(ctx context.Context, temp league.TempResults) (Stats, error) {
	st, err := s.State(ctx)
	if err != nil {
		return Stats{}, err
	}
	fixtures := league.ApplyTempResults(st.Fixtures, temp)
	table := league.CalculateStandings(st.Teams, fixtures)

	var leaders []int
	for i := 0; i < len(table) && i < progressionTeams; i++ {
		leaders = append(leaders, table[i].ID)
	}

	return Stats{
		TopScorers:   league.TopScoringTeams(table, 5),
		BestDefences: league.BestDefences(table, 5),
		Progression:  league.PointsProgression(st.Teams, fixtures, leaders),
		Accuracy:     backtest(st.Teams, fixtures, st.Historical),
	}, nil
}

func backtest(teams []league.Team, fixtures []league.Match, historical []predict.HistoricalMatch) *predict.AggregateAccuracy {
	blank := league.CloneMatches(fixtures)
	for i := range blank {
		blank[i].Result = nil
		blank[i].Locked = false
	}
	stats := predict.CalculateTeamStats(teams, blank, historical)

	var preds []predict.MatchPrediction
	for _, m := range fixtures {
		if m.HasResult() {
			preds = append(preds, predict.PredictMatch(m, stats, teams, historical))
		}
	}
	return predict.EvaluateAll(preds, fixtures)
}
