package predict

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/richard-senior/rfef/pkg/league"
)

// HistoricalMatch is a past result used to estimate team strength
type HistoricalMatch struct {
	ID         int    `json:"id"`
	Date       string `json:"date"`
	HomeTeamID int    `json:"homeTeamId"`
	AwayTeamID int    `json:"awayTeamId"`
	HomeGoals  int    `json:"homeGoals"`
	AwayGoals  int    `json:"awayGoals"`
	Season     string `json:"season"`
	Matchday   int    `json:"matchday,omitempty"`
}

// Involves reports whether the team played in this match
func (h HistoricalMatch) Involves(teamID int) bool {
	return h.HomeTeamID == teamID || h.AwayTeamID == teamID
}

// Time returns the parsed match date, or the zero time when it cannot be read
func (h HistoricalMatch) Time() time.Time {
	t, err := ParseMatchDate(h.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseMatchDate reads dates in whatever format the sources use
// ("2024-03-17", "2024/03/17", "Sun, 17 Mar 2024 18:00:00 +0100" ...)
func ParseMatchDate(s string) (time.Time, error) {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid match date %q: %w", s, err)
	}
	return t, nil
}

// SeasonOf returns the "2025-2026" style season label of a date
func SeasonOf(t time.Time) string {
	return fmt.Sprintf("%d-%d", t.Year(), t.Year()+1)
}

// ConvertOfficialToHistorical turns played fixtures into historical matches.
// Only locked or official results are converted unless includeAll is set.
// Ids start at 1000 so they do not clash with imported history.
func ConvertOfficialToHistorical(fixtures []league.Match, includeAll bool, now time.Time) []HistoricalMatch {
	date := now.Format("2006-01-02")
	season := SeasonOf(now)

	var out []HistoricalMatch
	for _, m := range fixtures {
		if !m.HasResult() {
			continue
		}
		if !includeAll && !m.Locked && !m.Result.IsOfficial {
			continue
		}
		out = append(out, HistoricalMatch{
			ID:         1000 + len(out),
			Date:       date,
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
			HomeGoals:  m.Result.HomeGoals,
			AwayGoals:  m.Result.AwayGoals,
			Season:     season,
			Matchday:   m.Matchday,
		})
	}
	return out
}

// headToHead summarises the meetings between two teams from the first
// team's point of view
func headToHead(homeID, awayID int, historical []HistoricalMatch) string {
	var homeWins, awayWins, draws, played int
	for _, h := range historical {
		if !(h.Involves(homeID) && h.Involves(awayID)) {
			continue
		}
		played++
		switch {
		case h.HomeGoals == h.AwayGoals:
			draws++
		case (h.HomeTeamID == homeID) == (h.HomeGoals > h.AwayGoals):
			homeWins++
		default:
			awayWins++
		}
	}
	return fmt.Sprintf("Home wins: %d, Away wins: %d, Draws: %d, Matches played: %d", homeWins, awayWins, draws, played)
}
