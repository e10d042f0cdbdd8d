package service

import (
	"context"
	"fmt"
	"time"

	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/predict"
)

func (s *Service) Official(ctx context.Context) (league.OfficialResults, error) {
	return s.official.Load(ctx)
}

// SubmitOfficial validates a matchday and replaces whatever was stored for
// it. Every match must exist in that matchday's fixtures.
func (s *Service) SubmitOfficial(ctx context.Context, u league.MatchdayUpdate) (league.OfficialResults, error) {
	if err := u.Validate(); err != nil {
		return league.OfficialResults{}, err
	}
	_, fixtures := s.base()
	for _, mu := range u.Matches {
		m, ok := league.MatchByID(fixtures, mu.ID)
		if !ok {
			return league.OfficialResults{}, fmt.Errorf("%w: %d", league.ErrUnknownMatch, mu.ID)
		}
		if m.Matchday != u.Matchday {
			return league.OfficialResults{}, fmt.Errorf("%w: match %d belongs to matchday %d", league.ErrInvalidMatchday, mu.ID, m.Matchday)
		}
	}

	official, err := s.official.Load(ctx)
	if err != nil {
		return league.OfficialResults{}, err
	}
	official.Upsert(u)
	if err := s.official.Save(ctx, official); err != nil {
		return league.OfficialResults{}, err
	}
	logger.Info(fmt.Sprintf("Stored %d official results for matchday %d", len(u.Matches), u.Matchday))
	return official, nil
}

func (s *Service) Historical(ctx context.Context) ([]predict.HistoricalMatch, error) {
	return s.historical.Load(ctx)
}

// ReplaceHistorical validates and stores a new set of historical matches
func (s *Service) ReplaceHistorical(ctx context.Context, matches []predict.HistoricalMatch) error {
	for _, m := range matches {
		if m.HomeTeamID == m.AwayTeamID || m.HomeGoals < 0 || m.AwayGoals < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidHistorical, m.ID)
		}
	}
	if err := s.historical.Replace(ctx, matches); err != nil {
		return err
	}
	logger.Info("Stored historical matches", len(matches))
	return nil
}

// ConvertOfficialToHistorical replaces the historical matches with the
// season's played fixtures. Only official or locked results are taken unless
// includeAll is set, in which case the temporary results count too.
func (s *Service) ConvertOfficialToHistorical(ctx context.Context, temp league.TempResults, includeAll bool, now time.Time) ([]predict.HistoricalMatch, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	fixtures := st.Fixtures
	if includeAll {
		fixtures = league.ApplyTempResults(fixtures, temp)
	}
	matches := predict.ConvertOfficialToHistorical(fixtures, includeAll, now)
	if matches == nil {
		matches = []predict.HistoricalMatch{}
	}
	if err := s.ReplaceHistorical(ctx, matches); err != nil {
		return nil, err
	}
	return matches, nil
}
