package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/datasource"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/notify"
	"github.com/richard-senior/rfef/pkg/store"
)

const (
	MsgNoFinished = "no finished matches"
	MsgUnmapped   = "could not map matches"
)

// RoundSource is a result source that also knows the current round
type RoundSource interface {
	datasource.ResultSource
	CurrentRound(ctx context.Context) (int, error)
}

// Report is the outcome of one run
type Report struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message,omitempty"`
	Matchday int                  `json:"matchday"`
	Updated  int                  `json:"matchesUpdated"`
	Source   string               `json:"source,omitempty"`
	Results  []league.MatchUpdate `json:"matches,omitempty"`
}

// Options wires an Updater. API and Fallback may be nil, but not both.
type Options struct {
	API      RoundSource
	Fallback datasource.ResultSource
	Official store.OfficialStore
	Fixtures []league.Match
	Roster   *league.Roster
	Notifier notify.Notifier
}

// Updater pulls finished matches from the external sources and merges them
// into the official results
type Updater struct {
	api      RoundSource
	fallback datasource.ResultSource
	official store.OfficialStore
	fixtures []league.Match
	roster   *league.Roster
	notifier notify.Notifier
	now      func() time.Time
}

func New(opts Options) *Updater {
	u := &Updater{
		api:      opts.API,
		fallback: opts.Fallback,
		official: opts.Official,
		fixtures: opts.Fixtures,
		roster:   opts.Roster,
		notifier: opts.Notifier,
		now:      time.Now,
	}
	if u.fixtures == nil {
		u.fixtures = league.DefaultFixtures()
	}
	if u.roster == nil {
		u.roster = league.DefaultRoster()
	}
	if u.notifier == nil {
		u.notifier = notify.NopNotifier{}
	}
	return u
}

// round picks the API's current round, then the override, then an estimate
// from the calendar
func (u *Updater) round(ctx context.Context, override int) int {
	if u.api != nil {
		r, err := u.api.CurrentRound(ctx)
		if err == nil && r > 0 {
			return r
		}
		if err != nil && !errors.Is(err, datasource.ErrNoAPIKey) {
			logger.Warn("Could not get current round from API-Football", err)
		}
	}
	if override > 0 {
		return override
	}
	return datasource.EstimateRound(u.now())
}

func (u *Updater) finished(ctx context.Context, round int) ([]datasource.FinishedFixture, string, error) {
	var apiErr error
	if u.api != nil {
		f, err := u.api.FinishedFixtures(ctx, round)
		if err == nil {
			return f, "api-football", nil
		}
		apiErr = err
		logger.Warn("API-Football failed, falling back to BDFutbol", err)
	}
	if u.fallback == nil {
		if apiErr == nil {
			apiErr = errors.New("no result source configured")
		}
		return nil, "", apiErr
	}
	f, err := u.fallback.FinishedFixtures(ctx, round)
	if err != nil {
		return nil, "", errors.Join(apiErr, err)
	}
	return f, "bdfutbol", nil
}

// Run fetches the finished matches of the current round and stores them.
// roundOverride is used only when the API cannot tell the round.
func (u *Updater) Run(ctx context.Context, roundOverride int) (Report, error) {
	round := u.round(ctx, roundOverride)
	logger.Info("Fetching results for matchday", round)
	report := Report{Matchday: round}

	finished, source, err := u.finished(ctx, round)
	if err != nil {
		return report, fmt.Errorf("could not fetch results for matchday %d: %w", round, err)
	}
	report.Source = source
	if len(finished) == 0 {
		report.Success = true
		report.Message = MsgNoFinished
		return report, nil
	}

	update := league.MatchdayUpdate{Matchday: round}
	var lines []notify.ResultLine
	for _, f := range finished {
		id := league.FindMatchID(u.fixtures, round, f.HomeTeamID, f.AwayTeamID)
		if id == 0 {
			logger.Warn("No fixture for match", round, f.HomeName, f.AwayName)
			continue
		}
		update.Matches = append(update.Matches, league.MatchUpdate{
			ID:     id,
			Result: league.Result{HomeGoals: f.HomeGoals, AwayGoals: f.AwayGoals, IsOfficial: true},
			Locked: true,
		})
		lines = append(lines, notify.ResultLine{
			Home:      u.roster.Name(f.HomeTeamID),
			Away:      u.roster.Name(f.AwayTeamID),
			HomeGoals: f.HomeGoals,
			AwayGoals: f.AwayGoals,
		})
	}
	if len(update.Matches) == 0 {
		report.Success = true
		report.Message = MsgUnmapped
		return report, nil
	}

	official, err := u.official.Load(ctx)
	if err != nil {
		return report, err
	}
	official.Merge(update)
	if err := u.official.Save(ctx, official); err != nil {
		return report, err
	}

	report.Success = true
	report.Updated = len(update.Matches)
	report.Results = update.Matches
	logger.Info(fmt.Sprintf("Update complete: %d matches of matchday %d", report.Updated, round))

	if err := u.notifier.MatchdayUpdated(ctx, notify.Update{Matchday: round, Source: source, Results: lines}); err != nil {
		logger.Warn("Failed to send results notification", err)
	}
	return report, nil
}
