package league

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Primera RFEF Grupo 1, 2025/26. The fixtures cover the second half of the
// season (matchdays 22 to 38), ten per matchday, ids 1..170.
const (
	FirstMatchday = 22
	LastMatchday  = 38
)

//go:embed data/teams.json
var teamsJSON []byte

//go:embed data/fixtures.json
var fixturesJSON []byte

var (
	defaultTeams    []Team
	defaultFixtures []Match
)

func init() {
	if err := json.Unmarshal(teamsJSON, &defaultTeams); err != nil {
		panic(fmt.Sprintf("embedded teams are corrupt: %v", err))
	}
	if err := json.Unmarshal(fixturesJSON, &defaultFixtures); err != nil {
		panic(fmt.Sprintf("embedded fixtures are corrupt: %v", err))
	}
}

// DefaultTeams returns a fresh copy of the seeded table
func DefaultTeams() []Team {
	return CloneTeams(defaultTeams)
}

// DefaultFixtures returns a fresh copy of the remaining fixtures, none played
func DefaultFixtures() []Match {
	return CloneMatches(defaultFixtures)
}

////////////////////////////////////////////////////////////////////////
////// JSON import
////////////////////////////////////////////////////////////////////////

// LeagueData is the document accepted by ImportLeague
type LeagueData struct {
	Teams    []Team  `json:"teams"`
	Fixtures []Match `json:"fixtures"`
}

// ImportLeague parses and validates a {teams, fixtures} document
func ImportLeague(data []byte) (LeagueData, error) {
	var ld LeagueData
	if err := json.Unmarshal(data, &ld); err != nil {
		return LeagueData{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if err := ld.Validate(); err != nil {
		return LeagueData{}, err
	}
	return ld, nil
}

// Validate checks ids are unique and fixtures reference known teams
func (ld LeagueData) Validate() error {
	if err := validateTeams(ld.Teams); err != nil {
		return err
	}
	teams := indexTeams(ld.Teams)
	seen := make(map[int]bool, len(ld.Fixtures))
	for _, m := range ld.Fixtures {
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate match id %d", ErrInvalidImport, m.ID)
		}
		seen[m.ID] = true
		if _, ok := teams[m.HomeTeamID]; !ok {
			return fmt.Errorf("%w: match %d references unknown team %d", ErrInvalidImport, m.ID, m.HomeTeamID)
		}
		if _, ok := teams[m.AwayTeamID]; !ok {
			return fmt.Errorf("%w: match %d references unknown team %d", ErrInvalidImport, m.ID, m.AwayTeamID)
		}
		if m.HomeTeamID == m.AwayTeamID {
			return fmt.Errorf("%w: match %d has the same team on both sides", ErrInvalidImport, m.ID)
		}
		if m.Result != nil && (m.Result.HomeGoals < 0 || m.Result.AwayGoals < 0) {
			return fmt.Errorf("%w: match %d has negative goals", ErrInvalidImport, m.ID)
		}
	}
	return nil
}
