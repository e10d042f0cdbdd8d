package predict

import (
	"sort"
	"time"

	"github.com/richard-senior/rfef/pkg/league"
)

// TeamStats holds the strengths and form derived from a team's recent matches
type TeamStats struct {
	ID                  int     `json:"id"`
	HomeAttackStrength  float64 `json:"homeAttackStrength"`
	HomeDefenseStrength float64 `json:"homeDefenseStrength"`
	AwayAttackStrength  float64 `json:"awayAttackStrength"`
	AwayDefenseStrength float64 `json:"awayDefenseStrength"`
	Form                []int   `json:"form"`
	HomeForm            []int   `json:"homeForm"`
	AwayForm            []int   `json:"awayForm"`
	MatchesAnalysed     int     `json:"matchesAnalysed"`
}

// Averages used when a team has no matches of that kind
const (
	defaultHomeScored   = 1.0
	defaultHomeConceded = 1.0
	defaultAwayScored   = 0.7
	defaultAwayConceded = 1.3
	zeroConcededDivisor = 0.5
	venueFormMatches    = 3
)

// CalculateTeamStats builds the stats of every team from the historical
// matches plus the official results already in the fixtures
func CalculateTeamStats(teams []league.Team, fixtures []league.Match, historical []HistoricalMatch) map[int]TeamStats {
	return teamStatsWith(current(), teams, fixtures, historical)
}

func teamStatsWith(cfg *PredictConfig, teams []league.Team, fixtures []league.Match, historical []HistoricalMatch) map[int]TeamStats {
	stats := make(map[int]TeamStats, len(teams))
	for _, t := range teams {
		recent := recentMatches(t.ID, fixtures, historical, cfg.RecentMatches)
		stats[t.ID] = teamStatsFrom(t.ID, recent, cfg)
	}
	return stats
}

// recentMatches merges history with the official fixtures of a team and
// keeps the most recent ones
func recentMatches(teamID int, fixtures []league.Match, historical []HistoricalMatch, limit int) []HistoricalMatch {
	var combined []HistoricalMatch
	for _, h := range historical {
		if h.Involves(teamID) {
			combined = append(combined, h)
		}
	}

	today := time.Now().Format("2006-01-02")
	n := 0
	for _, m := range fixtures {
		if !m.Involves(teamID) || !m.HasResult() || !(m.Locked || m.Result.IsOfficial) {
			continue
		}
		combined = append(combined, HistoricalMatch{
			ID:         2000 + n,
			Date:       today,
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
			HomeGoals:  m.Result.HomeGoals,
			AwayGoals:  m.Result.AwayGoals,
			Matchday:   m.Matchday,
		})
		n++
	}

	dates := make([]time.Time, len(combined))
	order := make([]int, len(combined))
	for i, h := range combined {
		dates[i] = h.Time()
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := combined[order[i]], combined[order[j]]
		if a.Matchday > 0 && b.Matchday > 0 {
			return a.Matchday > b.Matchday
		}
		return dates[order[i]].After(dates[order[j]])
	})
	sorted := make([]HistoricalMatch, len(order))
	for i, k := range order {
		sorted[i] = combined[k]
	}
	combined = sorted

	if len(combined) > limit {
		combined = combined[:limit]
	}
	return combined
}

// formValue is +1 for a win, 0 for a draw and -1 for a defeat
func formValue(teamID int, h HistoricalMatch) int {
	scored, conceded := h.HomeGoals, h.AwayGoals
	if h.AwayTeamID == teamID {
		scored, conceded = conceded, scored
	}
	switch {
	case scored > conceded:
		return 1
	case scored < conceded:
		return -1
	default:
		return 0
	}
}

func teamStatsFrom(teamID int, recent []HistoricalMatch, cfg *PredictConfig) TeamStats {
	form := make([]int, cfg.FormMatches)
	var homeForm, awayForm []int
	for i := 0; i < len(recent) && i < cfg.FormMatches; i++ {
		form[i] = formValue(teamID, recent[i])
		if recent[i].HomeTeamID == teamID {
			if len(homeForm) < venueFormMatches {
				homeForm = append(homeForm, form[i])
			}
		} else if len(awayForm) < venueFormMatches {
			awayForm = append(awayForm, form[i])
		}
	}

	var homeScored, homeConceded, awayScored, awayConceded, homeN, awayN int
	for _, h := range recent {
		if h.HomeTeamID == teamID {
			homeScored += h.HomeGoals
			homeConceded += h.AwayGoals
			homeN++
		} else {
			awayScored += h.AwayGoals
			awayConceded += h.HomeGoals
			awayN++
		}
	}

	avgHomeScored := average(homeScored, homeN, defaultHomeScored)
	avgHomeConceded := average(homeConceded, homeN, defaultHomeConceded)
	avgAwayScored := average(awayScored, awayN, defaultAwayScored)
	avgAwayConceded := average(awayConceded, awayN, defaultAwayConceded)

	return TeamStats{
		ID:                  teamID,
		HomeAttackStrength:  avgHomeScored / cfg.LeagueAvgHomeGoals,
		HomeDefenseStrength: cfg.LeagueAvgAwayGoals / nonZero(avgHomeConceded),
		AwayAttackStrength:  avgAwayScored / cfg.LeagueAvgAwayGoals,
		AwayDefenseStrength: cfg.LeagueAvgHomeGoals / nonZero(avgAwayConceded),
		Form:                form,
		HomeForm:            homeForm,
		AwayForm:            awayForm,
		MatchesAnalysed:     len(recent),
	}
}

func average(total, n int, fallback float64) float64 {
	if n == 0 {
		return fallback
	}
	return float64(total) / float64(n)
}

func nonZero(v float64) float64 {
	if v == 0 {
		return zeroConcededDivisor
	}
	return v
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
