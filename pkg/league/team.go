package league

import (
	"encoding/json"
	"fmt"
	"os"
)

// Team is one row of the league table
type Team struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Played          int    `json:"played"`
	Won             int    `json:"won"`
	Drawn           int    `json:"drawn"`
	Lost            int    `json:"lost"`
	GoalsFor        int    `json:"goalsFor"`
	GoalsAgainst    int    `json:"goalsAgainst"`
	Points          int    `json:"points"`
	LogoURL         string `json:"logoUrl,omitempty"`
	InitialPosition int    `json:"initialPosition,omitempty"`
}

func (t Team) GoalDifference() int {
	return t.GoalsFor - t.GoalsAgainst
}

// CloneTeams returns a copy of the slice so callers can mutate it freely
func CloneTeams(teams []Team) []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	return out
}

// FindTeam returns the team with the given id
func FindTeam(teams []Team, id int) (Team, bool) {
	for _, t := range teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

func indexTeams(teams []Team) map[int]int {
	idx := make(map[int]int, len(teams))
	for i, t := range teams {
		idx[t.ID] = i
	}
	return idx
}

// LoadTeamsFile reads a JSON array of teams, used to seed the table from a
// file instead of the embedded defaults
func LoadTeamsFile(path string) ([]Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read teams file: %w", err)
	}
	var teams []Team
	if err := json.Unmarshal(data, &teams); err != nil {
		return nil, fmt.Errorf("failed to parse teams file %s: %w", path, err)
	}
	if err := validateTeams(teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func validateTeams(teams []Team) error {
	if len(teams) == 0 {
		return fmt.Errorf("%w: no teams", ErrInvalidImport)
	}
	seen := make(map[int]bool, len(teams))
	for _, t := range teams {
		if t.ID <= 0 {
			return fmt.Errorf("%w: team %q has invalid id %d", ErrInvalidImport, t.Name, t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate team id %d", ErrInvalidImport, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}
