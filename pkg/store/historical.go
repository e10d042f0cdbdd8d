package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/richard-senior/rfef/pkg/predict"
)

// HistoricalStore persists the historical matches used by the predictor
type HistoricalStore interface {
	Load(ctx context.Context) ([]predict.HistoricalMatch, error)
	Replace(ctx context.Context, matches []predict.HistoricalMatch) error
}

type historicalDocument struct {
	Matches []predict.HistoricalMatch `json:"matches"`
}

// FileHistoricalStore keeps {"matches": [...]} in a JSON file
type FileHistoricalStore struct {
	path string
	mu   sync.Mutex
}

func NewFileHistoricalStore(path string) *FileHistoricalStore {
	return &FileHistoricalStore{path: path}
}

func (s *FileHistoricalStore) Load(ctx context.Context) ([]predict.HistoricalMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []predict.HistoricalMatch{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	var doc historicalDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	if doc.Matches == nil {
		doc.Matches = []predict.HistoricalMatch{}
	}
	return doc.Matches, nil
}

func (s *FileHistoricalStore) Replace(ctx context.Context, matches []predict.HistoricalMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if matches == nil {
		matches = []predict.HistoricalMatch{}
	}
	return writeJSONFile(s.path, historicalDocument{Matches: matches})
}

// historicalRow is the SQLite row of a historical match
type historicalRow struct {
	ID         int    `column:"id" dbtype:"INTEGER" primary:"true"`
	Date       string `column:"date" dbtype:"TEXT"`
	HomeTeamID int    `column:"home_team_id" dbtype:"INTEGER" index:"true"`
	AwayTeamID int    `column:"away_team_id" dbtype:"INTEGER" index:"true"`
	HomeGoals  int    `column:"home_goals" dbtype:"INTEGER"`
	AwayGoals  int    `column:"away_goals" dbtype:"INTEGER"`
	Season     string `column:"season" dbtype:"TEXT" index:"true"`
	Matchday   int    `column:"matchday" dbtype:"INTEGER"`
}

func (r *historicalRow) GetTableName() string {
	return "historical_matches"
}

func (r *historicalRow) GetPrimaryKey() map[string]any {
	return map[string]any{"id": r.ID}
}

func (r *historicalRow) BeforeSave() error {
	if r.HomeGoals < 0 || r.AwayGoals < 0 {
		return fmt.Errorf("match %d has negative goals", r.ID)
	}
	if r.HomeTeamID == r.AwayTeamID {
		return fmt.Errorf("match %d has the same team on both sides", r.ID)
	}
	return nil
}

// SQLHistoricalStore keeps historical matches in the SQLite database opened
// by InitDatabase
type SQLHistoricalStore struct{}

func NewSQLHistoricalStore() *SQLHistoricalStore {
	return &SQLHistoricalStore{}
}

func (s *SQLHistoricalStore) Load(ctx context.Context) ([]predict.HistoricalMatch, error) {
	rows, err := FindAll(ctx, &historicalRow{}, "id")
	if err != nil {
		return nil, err
	}
	out := []predict.HistoricalMatch{}
	for _, r := range as[historicalRow](rows) {
		out = append(out, predict.HistoricalMatch(r))
	}
	return out, nil
}

// Replace swaps the whole table contents in one transaction
func (s *SQLHistoricalStore) Replace(ctx context.Context, matches []predict.HistoricalMatch) error {
	rows := make([]Persistable, len(matches))
	for i, m := range matches {
		row := historicalRow(m)
		rows[i] = &row
	}
	if err := ReplaceAll(ctx, &historicalRow{}, rows); err != nil {
		return fmt.Errorf("failed to store historical matches: %w", err)
	}
	return nil
}
