package predict

import (
	"errors"
	"fmt"
	"sort"

	"github.com/richard-senior/rfef/pkg/league"
)

// ScenarioType selects the question a what-if scenario answers
type ScenarioType string

const (
	ScenarioPromotion  ScenarioType = "promotion"
	ScenarioRelegation ScenarioType = "relegation"
	ScenarioPoints     ScenarioType = "points"
	ScenarioPosition   ScenarioType = "position"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// ScenarioConfig is a what-if question about one team
type ScenarioConfig struct {
	Type           ScenarioType `json:"type"`
	TeamID         int          `json:"teamId"`
	TargetPoints   *int         `json:"targetPoints,omitempty"`
	TargetPosition *int         `json:"targetPosition,omitempty"`
}

// Score is a required scoreline
type Score struct {
	HomeGoals int `json:"homeGoals"`
	AwayGoals int `json:"awayGoals"`
}

// RequiredResult is one fixture outcome the scenario depends on
type RequiredResult struct {
	MatchID        int   `json:"matchId"`
	HomeTeamID     int   `json:"homeTeamId"`
	AwayTeamID     int   `json:"awayTeamId"`
	RequiredResult Score `json:"requiredResult"`
}

// ScenarioResult answers a ScenarioConfig
type ScenarioResult struct {
	Possible         bool             `json:"possible"`
	Guaranteed       bool             `json:"guaranteed"`
	Message          string           `json:"message"`
	PointsNeeded     int              `json:"pointsNeeded"`
	CurrentGap       int              `json:"currentGap"`
	BestCasePosition int              `json:"bestCasePosition,omitempty"`
	RequiredResults  []RequiredResult `json:"requiredResults"`
}

// CalculateScenario works out what a team needs from the remaining fixtures.
// teams is the base table, the results in fixtures are applied to it.
func CalculateScenario(teams []league.Team, fixtures []league.Match, sc ScenarioConfig) (ScenarioResult, error) {
	table := league.CalculateStandings(teams, fixtures)
	team, ok := league.FindTeam(table, sc.TeamID)
	if !ok {
		return ScenarioResult{}, fmt.Errorf("%w: %d", league.ErrUnknownTeam, sc.TeamID)
	}
	remaining := sortedRemaining(fixtures)

	switch sc.Type {
	case ScenarioPoints:
		if sc.TargetPoints == nil {
			return ScenarioResult{}, fmt.Errorf("%w: targetPoints is required", ErrInvalidScenario)
		}
		return pointsScenario(team, remaining, *sc.TargetPoints), nil

	case ScenarioPosition:
		if sc.TargetPosition == nil {
			return ScenarioResult{}, fmt.Errorf("%w: targetPosition is required", ErrInvalidScenario)
		}
		p := *sc.TargetPosition
		if p < 1 || p > len(table) {
			return ScenarioResult{}, fmt.Errorf("%w: position must be between 1 and %d", ErrInvalidScenario, len(table))
		}
		res := positionScenario(table, team, remaining, p)
		res.Message = positionMessage(team.Name, p, res)
		return res, nil

	case ScenarioPromotion:
		res := positionScenario(table, team, remaining, league.DirectPromotionPosition)
		switch {
		case res.Guaranteed:
			res.Message = fmt.Sprintf("%s has already secured direct promotion.", team.Name)
		case res.Possible:
			res.Message = fmt.Sprintf("%s can still win direct promotion.", team.Name)
		default:
			playoff := positionScenario(table, team, remaining, league.LastPlayoffPosition)
			if playoff.Possible {
				res.Message = fmt.Sprintf("%s can no longer win direct promotion but can still reach the promotion playoff (best case: position %d).",
					team.Name, playoff.BestCasePosition)
			} else {
				res.Message = fmt.Sprintf("%s can no longer reach the promotion places. Best possible position: %d.",
					team.Name, res.BestCasePosition)
			}
		}
		return res, nil

	case ScenarioRelegation:
		res := positionScenario(table, team, remaining, league.PlayoutPosition)
		switch {
		case res.Guaranteed:
			res.Message = fmt.Sprintf("%s is already safe from direct relegation.", team.Name)
		case res.Possible && res.BestCasePosition == league.PlayoutPosition:
			res.Message = fmt.Sprintf("%s can at best finish %d and would have to play the relegation playout.",
				team.Name, league.PlayoutPosition)
		case res.Possible:
			res.Message = fmt.Sprintf("%s can still avoid relegation (best case: position %d).", team.Name, res.BestCasePosition)
		default:
			res.Message = fmt.Sprintf("%s can no longer avoid direct relegation. Best possible position: %d.",
				team.Name, res.BestCasePosition)
		}
		return res, nil
	}
	return ScenarioResult{}, fmt.Errorf("%w: unknown type %q", ErrInvalidScenario, sc.Type)
}

func sortedRemaining(fixtures []league.Match) []league.Match {
	rem := league.RemainingMatches(fixtures)
	sort.SliceStable(rem, func(i, j int) bool {
		if rem[i].Matchday != rem[j].Matchday {
			return rem[i].Matchday < rem[j].Matchday
		}
		return rem[i].ID < rem[j].ID
	})
	return rem
}

// winFor is a 1-0 win for the team in the match
func winFor(m league.Match, teamID int) Score {
	if m.HomeTeamID == teamID {
		return Score{HomeGoals: 1}
	}
	return Score{AwayGoals: 1}
}

func required(m league.Match, s Score) RequiredResult {
	return RequiredResult{MatchID: m.ID, HomeTeamID: m.HomeTeamID, AwayTeamID: m.AwayTeamID, RequiredResult: s}
}

////////////////////////////////////////////////////////////////////////
////// Points target
////////////////////////////////////////////////////////////////////////

func pointsScenario(team league.Team, remaining []league.Match, target int) ScenarioResult {
	own := filterTeam(remaining, team.ID)
	maxPoints := team.Points + league.PointsForWin*len(own)

	res := ScenarioResult{
		PointsNeeded:    max(0, target-team.Points),
		CurrentGap:      team.Points - target,
		Possible:        maxPoints >= target,
		Guaranteed:      team.Points >= target,
		RequiredResults: []RequiredResult{},
	}
	switch {
	case res.Guaranteed:
		res.Message = fmt.Sprintf("%s already has %d points.", team.Name, team.Points)
		return res
	case !res.Possible:
		res.Message = fmt.Sprintf("%s can reach at most %d points, %d short of %d.", team.Name, maxPoints, target-maxPoints, target)
		return res
	}

	wins := res.PointsNeeded / league.PointsForWin
	draws := 0
	switch res.PointsNeeded % league.PointsForWin {
	case 1:
		if wins < len(own) {
			draws = 1
		} else {
			wins++
		}
	case 2:
		wins++
	}
	for i := 0; i < wins; i++ {
		res.RequiredResults = append(res.RequiredResults, required(own[i], winFor(own[i], team.ID)))
	}
	for i := wins; i < wins+draws; i++ {
		res.RequiredResults = append(res.RequiredResults, required(own[i], Score{HomeGoals: 1, AwayGoals: 1}))
	}

	switch {
	case draws > 0:
		res.Message = fmt.Sprintf("%s needs %d points: %d wins and a draw from %d matches.", team.Name, res.PointsNeeded, wins, len(own))
	default:
		res.Message = fmt.Sprintf("%s needs %d points: %d wins from %d matches.", team.Name, res.PointsNeeded, wins, len(own))
	}
	return res
}

func filterTeam(matches []league.Match, teamID int) []league.Match {
	var out []league.Match
	for _, m := range matches {
		if m.Involves(teamID) {
			out = append(out, m)
		}
	}
	return out
}

////////////////////////////////////////////////////////////////////////
////// Position target
////////////////////////////////////////////////////////////////////////

// positionScenario plays the best case for the team: it wins every match
// and every other match is settled to keep rivals below it
func positionScenario(table []league.Team, team league.Team, remaining []league.Match, target int) ScenarioResult {
	maxPoints := maxPointsByTeam(table, remaining)
	teamMax := maxPoints[team.ID]

	best := league.CloneTeams(table)
	byID := make(map[int]*league.Team, len(best))
	for i := range best {
		byID[best[i].ID] = &best[i]
	}

	res := ScenarioResult{RequiredResults: []RequiredResult{}}
	for _, m := range remaining {
		home, okH := byID[m.HomeTeamID]
		away, okA := byID[m.AwayTeamID]
		if !okH || !okA {
			continue
		}
		if m.Involves(team.ID) {
			s := winFor(m, team.ID)
			league.ApplyResult(home, away, league.Result{HomeGoals: s.HomeGoals, AwayGoals: s.AwayGoals})
			res.RequiredResults = append(res.RequiredResults, required(m, s))
			continue
		}
		s := leastHarmful(*home, *away, teamMax)
		league.ApplyResult(home, away, league.Result{HomeGoals: s.HomeGoals, AwayGoals: s.AwayGoals})
		if maxPoints[m.HomeTeamID] >= teamMax || maxPoints[m.AwayTeamID] >= teamMax {
			res.RequiredResults = append(res.RequiredResults, required(m, s))
		}
	}
	league.SortStandings(best)
	res.BestCasePosition = league.Position(best, team.ID)
	res.Possible = res.BestCasePosition <= target

	threats := 0
	for _, t := range table {
		if t.ID != team.ID && maxPoints[t.ID] >= team.Points {
			threats++
		}
	}
	res.Guaranteed = threats < target

	if target <= len(table) {
		res.CurrentGap = team.Points - table[target-1].Points
	}
	if league.Position(table, team.ID) > target {
		res.PointsNeeded = max(0, -res.CurrentGap+1)
	}
	if res.Guaranteed {
		// nothing is required of anybody
		res.RequiredResults = []RequiredResult{}
	}
	return res
}

func maxPointsByTeam(table []league.Team, remaining []league.Match) map[int]int {
	out := make(map[int]int, len(table))
	for _, t := range table {
		out[t.ID] = t.Points
	}
	for _, m := range remaining {
		if _, ok := out[m.HomeTeamID]; ok {
			out[m.HomeTeamID] += league.PointsForWin
		}
		if _, ok := out[m.AwayTeamID]; ok {
			out[m.AwayTeamID] += league.PointsForWin
		}
	}
	return out
}

// leastHarmful picks the result between two rivals that leaves fewest of
// them above limit, then the lowest of their two totals
func leastHarmful(home, away league.Team, limit int) Score {
	options := []Score{{HomeGoals: 1, AwayGoals: 1}, {HomeGoals: 1}, {AwayGoals: 1}}
	var best Score
	bestAbove, bestLevel, bestTop := -1, 0, 0
	for _, s := range options {
		h, a := home, away
		league.ApplyResult(&h, &a, league.Result{HomeGoals: s.HomeGoals, AwayGoals: s.AwayGoals})
		above, level := 0, 0
		for _, p := range []int{h.Points, a.Points} {
			if p > limit {
				above++
			} else if p == limit {
				level++
			}
		}
		top := max(h.Points, a.Points)
		if bestAbove < 0 || above < bestAbove ||
			(above == bestAbove && level < bestLevel) ||
			(above == bestAbove && level == bestLevel && top < bestTop) {
			best, bestAbove, bestLevel, bestTop = s, above, level, top
		}
	}
	return best
}

func positionMessage(name string, target int, res ScenarioResult) string {
	switch {
	case res.Guaranteed:
		return fmt.Sprintf("%s is guaranteed to finish in position %d or better.", name, target)
	case res.Possible:
		return fmt.Sprintf("%s can still finish in position %d or better (best case: position %d).", name, target, res.BestCasePosition)
	default:
		return fmt.Sprintf("%s cannot reach position %d. Best possible position: %d.", name, target, res.BestCasePosition)
	}
}
