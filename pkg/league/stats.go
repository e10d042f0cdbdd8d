package league

import "sort"

// TopScoringTeams returns the n teams with most goals scored
func TopScoringTeams(teams []Team, n int) []Team {
	out := CloneTeams(teams)
	sort.SliceStable(out, func(i, j int) bool { return out[i].GoalsFor > out[j].GoalsFor })
	return head(out, n)
}

// BestDefences returns the n teams with fewest goals conceded
func BestDefences(teams []Team, n int) []Team {
	out := CloneTeams(teams)
	sort.SliceStable(out, func(i, j int) bool { return out[i].GoalsAgainst < out[j].GoalsAgainst })
	return head(out, n)
}

func head(teams []Team, n int) []Team {
	if n > 0 && n < len(teams) {
		return teams[:n]
	}
	return teams
}

// ProgressionPoint is a team's cumulative points after a matchday
type ProgressionPoint struct {
	Matchday int `json:"matchday"`
	Points   int `json:"points"`
	Position int `json:"position"`
}

// PointsProgression replays the fixtures matchday by matchday and records
// each requested team's points and position after every matchday with at
// least one result. An empty teamIDs means every team.
func PointsProgression(initialTeams []Team, fixtures []Match, teamIDs []int) map[int][]ProgressionPoint {
	if len(teamIDs) == 0 {
		for _, t := range initialTeams {
			teamIDs = append(teamIDs, t.ID)
		}
	}
	out := make(map[int][]ProgressionPoint, len(teamIDs))

	var played []Match
	for _, md := range Matchdays(fixtures) {
		hasResult := false
		for _, m := range MatchesByMatchday(fixtures, md) {
			if m.HasResult() {
				played = append(played, m)
				hasResult = true
			}
		}
		if !hasResult {
			continue
		}
		table := CalculateStandings(initialTeams, played)
		for _, id := range teamIDs {
			pos := Position(table, id)
			if pos == 0 {
				continue
			}
			out[id] = append(out[id], ProgressionPoint{
				Matchday: md,
				Points:   table[pos-1].Points,
				Position: pos,
			})
		}
	}
	return out
}
