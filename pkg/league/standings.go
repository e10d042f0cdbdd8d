package league

import (
	"sort"
)

const (
	PointsForWin  = 3
	PointsForDraw = 1
)

// CalculateStandings builds the table from the initial teams by applying
// every fixture that has a result. Neither input is modified.
func CalculateStandings(initialTeams []Team, fixtures []Match) []Team {
	teams := CloneTeams(initialTeams)
	idx := indexTeams(teams)

	for _, m := range fixtures {
		if !m.HasResult() {
			continue
		}
		hi, okH := idx[m.HomeTeamID]
		ai, okA := idx[m.AwayTeamID]
		if !okH || !okA {
			continue
		}
		ApplyResult(&teams[hi], &teams[ai], *m.Result)
	}

	SortStandings(teams)
	return teams
}

// ApplyResult updates both teams' rows with one result
func ApplyResult(home, away *Team, r Result) {
	home.Played++
	away.Played++
	home.GoalsFor += r.HomeGoals
	home.GoalsAgainst += r.AwayGoals
	away.GoalsFor += r.AwayGoals
	away.GoalsAgainst += r.HomeGoals

	switch r.Outcome() {
	case HomeWin:
		home.Won++
		home.Points += PointsForWin
		away.Lost++
	case AwayWin:
		away.Won++
		away.Points += PointsForWin
		home.Lost++
	default:
		home.Drawn++
		away.Drawn++
		home.Points += PointsForDraw
		away.Points += PointsForDraw
	}
}

// SortStandings orders teams by points then goal difference. Teams level on
// both keep their relative input order.
func SortStandings(teams []Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].Points != teams[j].Points {
			return teams[i].Points > teams[j].Points
		}
		return teams[i].GoalDifference() > teams[j].GoalDifference()
	})
}

// Position returns the 1-based position of a team in a sorted table, or 0
func Position(standings []Team, teamID int) int {
	for i, t := range standings {
		if t.ID == teamID {
			return i + 1
		}
	}
	return 0
}

////////////////////////////////////////////////////////////////////////
////// Table zones
////////////////////////////////////////////////////////////////////////

type Zone int

const (
	ZoneDirectPromotion Zone = iota
	ZonePromotionPlayoff
	ZoneSafe
	ZoneRelegationPlayout
	ZoneRelegation
)

const (
	DirectPromotionPosition = 1
	LastPlayoffPosition     = 5
	LastSafePosition        = 12
	PlayoutPosition         = 13
)

// ZoneFor returns the zone a position belongs to
func ZoneFor(position int) Zone {
	switch {
	case position <= DirectPromotionPosition:
		return ZoneDirectPromotion
	case position <= LastPlayoffPosition:
		return ZonePromotionPlayoff
	case position <= LastSafePosition:
		return ZoneSafe
	case position == PlayoutPosition:
		return ZoneRelegationPlayout
	default:
		return ZoneRelegation
	}
}

func (z Zone) String() string {
	switch z {
	case ZoneDirectPromotion:
		return "direct promotion"
	case ZonePromotionPlayoff:
		return "promotion playoff"
	case ZoneSafe:
		return "safe"
	case ZoneRelegationPlayout:
		return "relegation playout"
	case ZoneRelegation:
		return "relegation"
	}
	return "unknown"
}

func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}
