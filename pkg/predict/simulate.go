package predict

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/league"
	"golang.org/x/sync/errgroup"
)

// TeamPrediction is the end-of-season outlook of one team. Percentages are
// 0..100 and PlayoffPromotion includes direct promotion.
type TeamPrediction struct {
	TeamID           int     `json:"teamId"`
	DirectPromotion  float64 `json:"directPromotion"`
	PlayoffPromotion float64 `json:"playoffPromotion"`
	Safe             float64 `json:"safe"`
	Playout          float64 `json:"playoutRelegation"`
	Relegation       float64 `json:"relegation"`
	AveragePosition  float64 `json:"averagePosition"`
	MaxPoints        int     `json:"maxPoints"`
	MinPoints        int     `json:"minPoints"`
	Simulations      int     `json:"simulations"`
}

// SeasonSimulation is the outcome of simulating the rest of the season for
// every team at once
type SeasonSimulation struct {
	Teams       []TeamPrediction `json:"teams"`
	Simulations int              `json:"simulations"`
	// PositionProbabilities[teamID][p] is the percentage of finishing p+1
	PositionProbabilities map[int][]float64 `json:"positionProbabilities"`
}

// simulation is the shared, read-only input of every worker
type simulation struct {
	cfg       *PredictConfig
	table     []league.Team
	index     map[int]int
	remaining []league.Match
	expected  [][2]float64
}

// tally accumulates finishing positions, indexed by the team's row in the
// current table
type tally struct {
	positions [][]int
	runs      int
}

func newTally(n int) *tally {
	t := &tally{positions: make([][]int, n)}
	for i := range t.positions {
		t.positions[i] = make([]int, n)
	}
	return t
}

func (t *tally) add(o *tally) {
	for i := range o.positions {
		for p, c := range o.positions[i] {
			t.positions[i][p] += c
		}
	}
	t.runs += o.runs
}

// SimulateTeam runs the Monte Carlo simulation and reports one team.
// teams is the base table, the results in fixtures are applied to it.
// A nil cfg uses the global configuration.
func SimulateTeam(ctx context.Context, teams []league.Team, fixtures []league.Match, teamID int, cfg *PredictConfig) (TeamPrediction, error) {
	if _, ok := league.FindTeam(teams, teamID); !ok {
		return TeamPrediction{}, fmt.Errorf("%w: %d", league.ErrUnknownTeam, teamID)
	}
	season, err := SimulateAll(ctx, teams, fixtures, cfg)
	if err != nil {
		return TeamPrediction{}, err
	}
	for _, tp := range season.Teams {
		if tp.TeamID == teamID {
			return tp, nil
		}
	}
	return TeamPrediction{}, fmt.Errorf("%w: %d", league.ErrUnknownTeam, teamID)
}

// SimulateAll plays out the remaining fixtures cfg.Simulations times across
// cfg.SimulationWorkers goroutines. A non-zero cfg.Seed makes the result
// reproducible.
func SimulateAll(ctx context.Context, teams []league.Team, fixtures []league.Match, cfg *PredictConfig) (SeasonSimulation, error) {
	if cfg == nil {
		cfg = current()
	}
	if err := ValidateConfig(cfg); err != nil {
		return SeasonSimulation{}, err
	}

	sim := newSimulation(teams, fixtures, cfg)
	n := len(sim.table)
	total := newTally(n)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	start := time.Now()
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	workers := cfg.SimulationWorkers
	if workers > cfg.Simulations {
		workers = cfg.Simulations
	}
	for w := 0; w < workers; w++ {
		runs := cfg.Simulations / workers
		if w < cfg.Simulations%workers {
			runs++
		}
		rng := rand.New(rand.NewSource(seed + int64(w)))
		g.Go(func() error {
			local := newTally(n)
			scratch := make([]league.Team, n)
			for i := 0; i < runs; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				sim.run(rng, scratch, local)
			}
			mu.Lock()
			total.add(local)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SeasonSimulation{}, fmt.Errorf("simulation aborted: %w", err)
	}
	logger.Debug("Simulated season", total.runs, "times over", len(sim.remaining), "matches in", time.Since(start))

	return sim.report(total), nil
}

func newSimulation(teams []league.Team, fixtures []league.Match, cfg *PredictConfig) *simulation {
	table := league.CalculateStandings(teams, fixtures)
	sim := &simulation{
		cfg:       cfg,
		table:     table,
		index:     make(map[int]int, len(table)),
		remaining: league.RemainingMatches(fixtures),
	}
	for i, t := range table {
		sim.index[t.ID] = i
	}
	if cfg.SimulationModel == ModelPoisson {
		stats := teamStatsWith(cfg, teams, fixtures, nil)
		sim.expected = make([][2]float64, len(sim.remaining))
		for i, m := range sim.remaining {
			_, home, away := predictWith(cfg, m, stats, table, nil)
			sim.expected[i] = [2]float64{home, away}
		}
	}
	return sim
}

// run plays one season into scratch and records the finishing positions
func (s *simulation) run(rng *rand.Rand, scratch []league.Team, t *tally) {
	copy(scratch, s.table)
	byID := make(map[int]*league.Team, len(scratch))
	for i := range scratch {
		byID[scratch[i].ID] = &scratch[i]
	}

	for i, m := range s.remaining {
		home, okH := byID[m.HomeTeamID]
		away, okA := byID[m.AwayTeamID]
		if !okH || !okA {
			continue
		}
		var r league.Result
		if s.expected != nil {
			r = league.Result{
				HomeGoals: poissonRandom(s.expected[i][0], rng),
				AwayGoals: poissonRandom(s.expected[i][1], rng),
			}
		} else {
			r = s.strengthResult(rng, *home, *away)
		}
		league.ApplyResult(home, away, r)
	}

	league.SortStandings(scratch)
	for p, team := range scratch {
		t.positions[s.index[team.ID]][p]++
	}
	t.runs++
}

// strengthResult draws a result from the points per game of both sides.
// Goals are nominal: 2-1 for a win, 1-1 for a draw.
func (s *simulation) strengthResult(rng *rand.Rand, home, away league.Team) league.Result {
	hs, as := strength(home), strength(away)
	draw := s.cfg.SimulationDrawProbability

	homeWin := 0.5 + s.cfg.SimulationHomeBonus
	if hs+as > 0 {
		homeWin = hs/(hs+as) + s.cfg.SimulationHomeBonus
	}
	if homeWin > 1-draw {
		homeWin = 1 - draw
	}
	if homeWin < 0 {
		homeWin = 0
	}

	x := rng.Float64()
	switch {
	case x < homeWin:
		return league.Result{HomeGoals: 2, AwayGoals: 1}
	case x < homeWin+draw:
		return league.Result{HomeGoals: 1, AwayGoals: 1}
	default:
		return league.Result{HomeGoals: 1, AwayGoals: 2}
	}
}

// strength is points per game, neutral when nothing has been played
func strength(t league.Team) float64 {
	if t.Played == 0 {
		return 1.0
	}
	return float64(t.Points) / float64(t.Played)
}

func (s *simulation) report(t *tally) SeasonSimulation {
	out := SeasonSimulation{
		Simulations:           t.runs,
		PositionProbabilities: make(map[int][]float64, len(s.table)),
	}
	runs := float64(t.runs)
	for i, team := range s.table {
		tp := TeamPrediction{
			TeamID:      team.ID,
			MinPoints:   team.Points,
			MaxPoints:   team.Points + league.PointsForWin*len(league.RemainingForTeam(s.remaining, team.ID)),
			Simulations: t.runs,
		}
		probs := make([]float64, len(s.table))
		positionSum := 0
		for p, c := range t.positions[i] {
			pct := float64(c) / runs * 100
			probs[p] = pct
			positionSum += (p + 1) * c

			switch league.ZoneFor(p + 1) {
			case league.ZoneDirectPromotion:
				tp.DirectPromotion += pct
				tp.PlayoffPromotion += pct
			case league.ZonePromotionPlayoff:
				tp.PlayoffPromotion += pct
			case league.ZoneSafe:
				tp.Safe += pct
			case league.ZoneRelegationPlayout:
				tp.Playout += pct
			case league.ZoneRelegation:
				tp.Relegation += pct
			}
		}
		tp.AveragePosition = float64(positionSum) / runs
		out.Teams = append(out.Teams, tp)
		out.PositionProbabilities[team.ID] = probs
	}
	return out
}
