package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/predict"
	"github.com/richard-senior/rfef/pkg/store"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoUploader          = errors.New("export upload is not configured")
	ErrInvalidHistorical   = errors.New("invalid historical match")
	ErrDatabaseUnavailable = errors.New("database is not configured")
)

// Uploader stores rendered exports somewhere public
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type Options struct {
	Official   store.OfficialStore
	Historical store.HistoricalStore
	// Teams and Fixtures default to the embedded season
	Teams    []league.Team
	Fixtures []league.Match
	Uploader Uploader
	// Database tells whether store.InitDatabase has been called, which saved
	// scenarios and snapshots need
	Database bool
	// Predict overrides the global prediction configuration
	Predict *predict.PredictConfig
}

// Service ties the stores to the league and prediction packages. Every
// method takes the user's temporary results and never persists them.
type Service struct {
	official   store.OfficialStore
	historical store.HistoricalStore
	uploader   Uploader
	database   bool
	predictCfg *predict.PredictConfig

	mu       sync.RWMutex
	teams    []league.Team
	fixtures []league.Match
}

func New(opts Options) *Service {
	s := &Service{
		official:   opts.Official,
		historical: opts.Historical,
		uploader:   opts.Uploader,
		database:   opts.Database,
		predictCfg: opts.Predict,
		teams:      opts.Teams,
		fixtures:   opts.Fixtures,
	}
	if s.teams == nil {
		s.teams = league.DefaultTeams()
	}
	if s.fixtures == nil {
		s.fixtures = league.DefaultFixtures()
	}
	return s
}

// State is the persisted view of the season: base table, fixtures with the
// official results applied, and the historical matches
type State struct {
	Teams      []league.Team             `json:"teams"`
	Fixtures   []league.Match            `json:"fixtures"`
	Official   league.OfficialResults    `json:"official"`
	Historical []predict.HistoricalMatch `json:"historical"`
}

func (s *Service) base() ([]league.Team, []league.Match) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return league.CloneTeams(s.teams), league.CloneMatches(s.fixtures)
}

// State loads the official and historical results concurrently
func (s *Service) State(ctx context.Context) (State, error) {
	teams, fixtures := s.base()

	var official league.OfficialResults
	var historical []predict.HistoricalMatch
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		official, err = s.official.Load(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		historical, err = s.historical.Load(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return State{}, fmt.Errorf("failed to load league state: %w", err)
	}

	return State{
		Teams:      teams,
		Fixtures:   league.ApplyOfficialResults(fixtures, official),
		Official:   official,
		Historical: historical,
	}, nil
}

// Fixtures returns the fixtures with official and then temporary results
func (s *Service) Fixtures(ctx context.Context, temp league.TempResults) ([]league.Match, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return league.ApplyTempResults(st.Fixtures, temp), nil
}

func (s *Service) Standings(ctx context.Context, temp league.TempResults) ([]league.Team, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return league.CalculateStandings(st.Teams, league.ApplyTempResults(st.Fixtures, temp)), nil
}

// ResetTemp returns the temporary results a cleared board starts from:
// only the official, locked results
func (s *Service) ResetTemp(ctx context.Context) (league.TempResults, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return league.LockedTempResults(league.ResetResults(st.Fixtures)), nil
}

// Import replaces the base teams and fixtures after validating them
func (s *Service) Import(data []byte) (league.LeagueData, error) {
	ld, err := league.ImportLeague(data)
	if err != nil {
		return league.LeagueData{}, err
	}
	s.mu.Lock()
	s.teams = league.CloneTeams(ld.Teams)
	s.fixtures = league.CloneMatches(ld.Fixtures)
	s.mu.Unlock()
	return ld, nil
}

// TeamName returns a team's name, or "" when unknown
func (s *Service) TeamName(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := league.FindTeam(s.teams, id); ok {
		return t.Name
	}
	return ""
}
