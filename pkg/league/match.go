package league

import (
	"sort"
	"strconv"
	"strings"
)

// Result is the score of a played (or hypothetically played) match
type Result struct {
	HomeGoals  int  `json:"homeGoals"`
	AwayGoals  int  `json:"awayGoals"`
	IsOfficial bool `json:"isOfficial"`
}

// Outcome is the result of a match from the home side's point of view
type Outcome string

const (
	HomeWin Outcome = "H"
	Draw    Outcome = "D"
	AwayWin Outcome = "A"
)

func (r Result) Outcome() Outcome {
	switch {
	case r.HomeGoals > r.AwayGoals:
		return HomeWin
	case r.HomeGoals < r.AwayGoals:
		return AwayWin
	default:
		return Draw
	}
}

// Match is a fixture. A nil Result means the match has not been played.
// Locked matches carry an official result that user input cannot override.
type Match struct {
	ID         int     `json:"id"`
	Matchday   int     `json:"matchday"`
	HomeTeamID int     `json:"homeTeamId"`
	AwayTeamID int     `json:"awayTeamId"`
	Result     *Result `json:"result"`
	Locked     bool    `json:"locked"`
}

// HasResult reports whether a score, official or not, is set
func (m Match) HasResult() bool {
	return m.Result != nil
}

// Involves reports whether the team plays in this match
func (m Match) Involves(teamID int) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}

// Opponent returns the other team of the match
func (m Match) Opponent(teamID int) int {
	if m.HomeTeamID == teamID {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

// CloneMatches deep copies fixtures, including their results
func CloneMatches(fixtures []Match) []Match {
	out := make([]Match, len(fixtures))
	for i, m := range fixtures {
		out[i] = m
		if m.HasResult() {
			r := *m.Result
			out[i].Result = &r
		}
	}
	return out
}

////////////////////////////////////////////////////////////////////////
////// Temporary (user entered) results
////////////////////////////////////////////////////////////////////////

// TempResult is what a user typed for a match. Values are kept as strings
// so partially entered scores survive a round trip.
type TempResult struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// Parse returns the result if both sides are non-negative integers
func (t TempResult) Parse() (Result, bool) {
	h, err := strconv.Atoi(strings.TrimSpace(t.Home))
	if err != nil || h < 0 {
		return Result{}, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(t.Away))
	if err != nil || a < 0 {
		return Result{}, false
	}
	return Result{HomeGoals: h, AwayGoals: a}, true
}

// TempResults maps match id to user entered result
type TempResults map[int]TempResult

// ApplyTempResults returns a copy of fixtures where every non-locked match
// takes its valid temporary result. A non-locked match without one has its
// result cleared.
func ApplyTempResults(fixtures []Match, temp TempResults) []Match {
	out := CloneMatches(fixtures)
	for i := range out {
		if out[i].Locked {
			continue
		}
		out[i].Result = nil
		if r, valid := temp[out[i].ID].Parse(); valid {
			out[i].Result = &r
		}
	}
	return out
}

// ResetResults clears every result that is not locked
func ResetResults(fixtures []Match) []Match {
	out := CloneMatches(fixtures)
	for i := range out {
		if !out[i].Locked {
			out[i].Result = nil
		}
	}
	return out
}

// LockedTempResults returns the temp-result view of locked matches, so a UI
// can show official scores in the input fields after a reset
func LockedTempResults(fixtures []Match) TempResults {
	out := TempResults{}
	for _, m := range fixtures {
		if m.Locked && m.HasResult() {
			out[m.ID] = TempResult{
				Home: strconv.Itoa(m.Result.HomeGoals),
				Away: strconv.Itoa(m.Result.AwayGoals),
			}
		}
	}
	return out
}

////////////////////////////////////////////////////////////////////////
////// Lookups
////////////////////////////////////////////////////////////////////////

// RemainingMatches returns the fixtures without result that are not locked
func RemainingMatches(fixtures []Match) []Match {
	var out []Match
	for _, m := range fixtures {
		if !m.HasResult() && !m.Locked {
			out = append(out, m)
		}
	}
	return out
}

// RemainingForTeam returns the remaining fixtures of one team
func RemainingForTeam(fixtures []Match, teamID int) []Match {
	var out []Match
	for _, m := range RemainingMatches(fixtures) {
		if m.Involves(teamID) {
			out = append(out, m)
		}
	}
	return out
}

func MatchByID(fixtures []Match, id int) (Match, bool) {
	for _, m := range fixtures {
		if m.ID == id {
			return m, true
		}
	}
	return Match{}, false
}

func MatchesByMatchday(fixtures []Match, matchday int) []Match {
	var out []Match
	for _, m := range fixtures {
		if m.Matchday == matchday {
			out = append(out, m)
		}
	}
	return out
}

// FindMatchID returns the id of the fixture between home and away on the
// given matchday, or 0 when there is none
func FindMatchID(fixtures []Match, matchday, homeTeamID, awayTeamID int) int {
	for _, m := range fixtures {
		if m.Matchday == matchday && m.HomeTeamID == homeTeamID && m.AwayTeamID == awayTeamID {
			return m.ID
		}
	}
	return 0
}

// Matchdays returns the sorted distinct matchdays of the fixtures
func Matchdays(fixtures []Match) []int {
	seen := map[int]bool{}
	var out []int
	for _, m := range fixtures {
		if !seen[m.Matchday] {
			seen[m.Matchday] = true
			out = append(out, m.Matchday)
		}
	}
	sort.Ints(out)
	return out
}
