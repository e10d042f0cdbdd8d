package league

import (
	"fmt"
	"sort"
)

// MatchUpdate is one official result inside a matchday submission
type MatchUpdate struct {
	ID     int    `json:"id"`
	Result Result `json:"result"`
	Locked bool   `json:"locked"`
}

// MatchdayUpdate is what an administrator (or the update job) submits
type MatchdayUpdate struct {
	Matchday int           `json:"matchday"`
	Matches  []MatchUpdate `json:"matches"`
}

// OfficialResults is the persisted document of all official matchdays
type OfficialResults struct {
	Matchdays []MatchdayUpdate `json:"matchdays"`
}

// Validate checks a submission before it is stored
func (u MatchdayUpdate) Validate() error {
	if u.Matchday <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMatchday, u.Matchday)
	}
	if len(u.Matches) == 0 {
		return fmt.Errorf("%w: no matches to save for matchday %d", ErrInvalidResult, u.Matchday)
	}
	for _, m := range u.Matches {
		if m.ID <= 0 {
			return fmt.Errorf("%w: match id %d", ErrInvalidInput, m.ID)
		}
		if m.Result.HomeGoals < 0 || m.Result.AwayGoals < 0 {
			return fmt.Errorf("%w: negative goals for match %d", ErrInvalidResult, m.ID)
		}
	}
	return nil
}

func (o *OfficialResults) find(matchday int) int {
	for i, md := range o.Matchdays {
		if md.Matchday == matchday {
			return i
		}
	}
	return -1
}

// Upsert replaces the stored matchday with the update, or appends it
func (o *OfficialResults) Upsert(u MatchdayUpdate) {
	if i := o.find(u.Matchday); i >= 0 {
		o.Matchdays[i] = u
		return
	}
	o.Matchdays = append(o.Matchdays, u)
}

// Merge folds the update into the stored matchday match by match, so
// results saved earlier for other matches of that matchday survive
func (o *OfficialResults) Merge(u MatchdayUpdate) {
	i := o.find(u.Matchday)
	if i < 0 {
		o.Matchdays = append(o.Matchdays, u)
		return
	}
	existing := o.Matchdays[i].Matches
	pos := make(map[int]int, len(existing))
	for j, m := range existing {
		pos[m.ID] = j
	}
	for _, m := range u.Matches {
		if j, ok := pos[m.ID]; ok {
			existing[j] = m
		} else {
			existing = append(existing, m)
		}
	}
	sort.SliceStable(existing, func(a, b int) bool { return existing[a].ID < existing[b].ID })
	o.Matchdays[i].Matches = existing
}

// Matchday returns the stored update for a matchday
func (o OfficialResults) Matchday(matchday int) (MatchdayUpdate, bool) {
	if i := o.find(matchday); i >= 0 {
		return o.Matchdays[i], true
	}
	return MatchdayUpdate{}, false
}

// ApplyOfficialResults writes every stored official result into a copy of
// the fixtures. Unknown match ids are ignored.
func ApplyOfficialResults(fixtures []Match, official OfficialResults) []Match {
	out := CloneMatches(fixtures)
	pos := make(map[int]int, len(out))
	for i, m := range out {
		pos[m.ID] = i
	}
	for _, md := range official.Matchdays {
		for _, u := range md.Matches {
			i, ok := pos[u.ID]
			if !ok {
				continue
			}
			r := u.Result
			out[i].Result = &r
			out[i].Locked = u.Locked
		}
	}
	return out
}
