package service

import (
	"context"
	"fmt"

	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/predict"
)

// PredictionView is a prediction with the explanation the UI shows
type PredictionView struct {
	Matchday   int                     `json:"matchday"`
	HomeName   string                  `json:"homeName"`
	AwayName   string                  `json:"awayName"`
	Prediction predict.MatchPrediction `json:"prediction"`
	MostLikely league.Outcome          `json:"mostLikely"`
	KeyFactor  predict.Factor          `json:"keyFactor"`
}

func view(m league.Match, p predict.MatchPrediction, teams []league.Team) PredictionView {
	home, _ := league.FindTeam(teams, m.HomeTeamID)
	away, _ := league.FindTeam(teams, m.AwayTeamID)
	return PredictionView{
		Matchday:   m.Matchday,
		HomeName:   home.Name,
		AwayName:   away.Name,
		Prediction: p,
		MostLikely: predict.MostLikelyResult(p),
		KeyFactor:  predict.MostInfluentialFactor(p, home.Name, away.Name),
	}
}

// Predictions forecasts every fixture still without a result
func (s *Service) Predictions(ctx context.Context, temp league.TempResults) ([]PredictionView, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	fixtures := league.ApplyTempResults(st.Fixtures, temp)
	preds := predict.PredictMatches(fixtures, st.Teams, st.Historical)

	out := make([]PredictionView, 0, len(preds))
	for _, p := range preds {
		m, _ := league.MatchByID(fixtures, p.MatchID)
		out = append(out, view(m, p, st.Teams))
	}
	return out, nil
}

// PredictMatchday forecasts the unplayed fixtures of one matchday
func (s *Service) PredictMatchday(ctx context.Context, matchday int, temp league.TempResults) ([]PredictionView, error) {
	if matchday < league.FirstMatchday || matchday > league.LastMatchday {
		return nil, fmt.Errorf("%w: %d", league.ErrInvalidMatchday, matchday)
	}
	all, err := s.Predictions(ctx, temp)
	if err != nil {
		return nil, err
	}
	out := []PredictionView{}
	for _, v := range all {
		if v.Matchday == matchday {
			out = append(out, v)
		}
	}
	return out, nil
}

// Prediction forecasts a single fixture, played or not
func (s *Service) Prediction(ctx context.Context, matchID int, temp league.TempResults) (PredictionView, error) {
	st, err := s.State(ctx)
	if err != nil {
		return PredictionView{}, err
	}
	fixtures := league.ApplyTempResults(st.Fixtures, temp)
	m, ok := league.MatchByID(fixtures, matchID)
	if !ok {
		return PredictionView{}, fmt.Errorf("%w: %d", league.ErrUnknownMatch, matchID)
	}
	stats := predict.CalculateTeamStats(st.Teams, fixtures, st.Historical)
	table := league.CalculateStandings(st.Teams, fixtures)
	return view(m, predict.PredictMatch(m, stats, table, st.Historical), st.Teams), nil
}

func (s *Service) Simulate(ctx context.Context, teamID int, temp league.TempResults) (predict.TeamPrediction, error) {
	st, err := s.State(ctx)
	if err != nil {
		return predict.TeamPrediction{}, err
	}
	return predict.SimulateTeam(ctx, st.Teams, league.ApplyTempResults(st.Fixtures, temp), teamID, s.predictCfg)
}

func (s *Service) SimulateAll(ctx context.Context, temp league.TempResults) (predict.SeasonSimulation, error) {
	st, err := s.State(ctx)
	if err != nil {
		return predict.SeasonSimulation{}, err
	}
	return predict.SimulateAll(ctx, st.Teams, league.ApplyTempResults(st.Fixtures, temp), s.predictCfg)
}

func (s *Service) Scenario(ctx context.Context, sc predict.ScenarioConfig, temp league.TempResults) (predict.ScenarioResult, error) {
	st, err := s.State(ctx)
	if err != nil {
		return predict.ScenarioResult{}, err
	}
	return predict.CalculateScenario(st.Teams, league.ApplyTempResults(st.Fixtures, temp), sc)
}
