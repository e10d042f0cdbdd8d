package service

import (
	"context"
	"fmt"
	"time"

	"github.com/richard-senior/rfef/pkg/export"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/store"
)

////////////////////////////////////////////////////////////////////////
////// Saved scenarios and snapshots
////////////////////////////////////////////////////////////////////////

func (s *Service) requireDatabase() error {
	if !s.database {
		return ErrDatabaseUnavailable
	}
	return nil
}

// SaveScenario stores the current board under a name. Fixtures and teams
// are taken from the service when the caller leaves them empty.
func (s *Service) SaveScenario(ctx context.Context, sc store.Scenario) (store.Scenario, error) {
	if err := s.requireDatabase(); err != nil {
		return store.Scenario{}, err
	}
	if sc.Teams == nil || sc.Fixtures == nil {
		teams, fixtures := s.base()
		if sc.Teams == nil {
			sc.Teams = teams
		}
		if sc.Fixtures == nil {
			sc.Fixtures = fixtures
		}
	}
	return store.SaveScenario(ctx, sc)
}

func (s *Service) Scenarios(ctx context.Context) ([]store.Scenario, error) {
	if err := s.requireDatabase(); err != nil {
		return nil, err
	}
	return store.ListScenarios(ctx)
}

func (s *Service) LoadScenario(ctx context.Context, id string) (store.Scenario, error) {
	if err := s.requireDatabase(); err != nil {
		return store.Scenario{}, err
	}
	return store.GetScenario(ctx, id)
}

func (s *Service) DeleteScenario(ctx context.Context, id string) error {
	if err := s.requireDatabase(); err != nil {
		return err
	}
	return store.DeleteScenario(ctx, id)
}

// Snapshot records the table produced by temp
func (s *Service) Snapshot(ctx context.Context, description string, temp league.TempResults) (store.Snapshot, error) {
	if err := s.requireDatabase(); err != nil {
		return store.Snapshot{}, err
	}
	table, err := s.Standings(ctx, temp)
	if err != nil {
		return store.Snapshot{}, err
	}
	return store.AddSnapshot(ctx, description, table)
}

func (s *Service) Snapshots(ctx context.Context) ([]store.Snapshot, error) {
	if err := s.requireDatabase(); err != nil {
		return nil, err
	}
	return store.ListSnapshots(ctx)
}

////////////////////////////////////////////////////////////////////////
////// Export
////////////////////////////////////////////////////////////////////////

// Export renders the table produced by temp
func (s *Service) Export(ctx context.Context, f export.Format, temp league.TempResults) ([]byte, error) {
	table, err := s.Standings(ctx, temp)
	if err != nil {
		return nil, err
	}
	return export.Render(f, table)
}

// ExportAndUpload renders the table and stores it with the uploader,
// returning the object location
func (s *Service) ExportAndUpload(ctx context.Context, f export.Format, temp league.TempResults, now time.Time) (string, error) {
	if s.uploader == nil {
		return "", ErrNoUploader
	}
	body, err := s.Export(ctx, f, temp)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("standings/%s.%s", now.UTC().Format("20060102T150405Z"), f.Extension())
	return s.uploader.Upload(ctx, key, f.ContentType(), body)
}
