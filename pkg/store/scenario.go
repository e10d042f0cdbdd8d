package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/rfef/pkg/league"
)

// Scenario is a named set of what-if results saved by a user
type Scenario struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	CreatedAt   time.Time          `json:"createdAt"`
	Fixtures    []league.Match     `json:"fixtures"`
	TempResults league.TempResults `json:"tempResults"`
	Teams       []league.Team      `json:"teams"`
}

type scenarioRow struct {
	ID          string `column:"id" dbtype:"TEXT" primary:"true"`
	Name        string `column:"name" dbtype:"TEXT NOT NULL"`
	CreatedAt   int64  `column:"created_at" dbtype:"INTEGER" index:"true"`
	Fixtures    string `column:"fixtures" dbtype:"TEXT"`
	TempResults string `column:"temp_results" dbtype:"TEXT"`
	Teams       string `column:"teams" dbtype:"TEXT"`
}

func (r *scenarioRow) GetTableName() string {
	return "scenarios"
}

func (r *scenarioRow) GetPrimaryKey() map[string]any {
	return map[string]any{"id": r.ID}
}

func (r *scenarioRow) BeforeSave() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("scenario %s has no name", r.ID)
	}
	return nil
}

func (s Scenario) row() (*scenarioRow, error) {
	fixtures, err := json.Marshal(s.Fixtures)
	if err != nil {
		return nil, err
	}
	temp, err := json.Marshal(s.TempResults)
	if err != nil {
		return nil, err
	}
	teams, err := json.Marshal(s.Teams)
	if err != nil {
		return nil, err
	}
	return &scenarioRow{
		ID:          s.ID,
		Name:        s.Name,
		CreatedAt:   s.CreatedAt.UnixMilli(),
		Fixtures:    string(fixtures),
		TempResults: string(temp),
		Teams:       string(teams),
	}, nil
}

func (r scenarioRow) scenario() (Scenario, error) {
	s := Scenario{ID: r.ID, Name: r.Name, CreatedAt: time.UnixMilli(r.CreatedAt).UTC()}
	if err := unmarshalColumn(r.Fixtures, &s.Fixtures); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s fixtures: %w", r.ID, err)
	}
	if err := unmarshalColumn(r.TempResults, &s.TempResults); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s results: %w", r.ID, err)
	}
	if err := unmarshalColumn(r.Teams, &s.Teams); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s teams: %w", r.ID, err)
	}
	return s, nil
}

func unmarshalColumn(data string, v any) error {
	if data == "" || data == "null" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}

// SaveScenario stores s. A new ID and creation time are assigned when s has
// no ID; an existing ID overwrites that scenario.
func SaveScenario(ctx context.Context, s Scenario) (Scenario, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	row, err := s.row()
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to encode scenario: %w", err)
	}
	if err := Save(ctx, row); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// ListScenarios returns every saved scenario, newest first
func ListScenarios(ctx context.Context) ([]Scenario, error) {
	rows, err := FindAll(ctx, &scenarioRow{}, "created_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	out := []Scenario{}
	for _, r := range as[scenarioRow](rows) {
		s, err := r.scenario()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func GetScenario(ctx context.Context, id string) (Scenario, error) {
	var row scenarioRow
	if err := FindByPrimaryKey(ctx, &row, map[string]any{"id": id}); err != nil {
		return Scenario{}, err
	}
	return row.scenario()
}

// DeleteScenario removes a scenario, returning ErrNotFound when there is none
func DeleteScenario(ctx context.Context, id string) error {
	row := &scenarioRow{ID: id}
	ok, err := Exists(ctx, row)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: scenario %s", ErrNotFound, id)
	}
	return Delete(ctx, row)
}
