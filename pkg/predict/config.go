package predict

import (
	"fmt"
	"sync"
)

// Simulation models understood by SimulateTeam and SimulateAll
const (
	ModelStrength = "strength"
	ModelPoisson  = "poisson"
)

// PredictConfig holds every tunable number used by the prediction model
type PredictConfig struct {
	// === EXPECTED GOALS ===
	LeagueAvgHomeGoals    float64 // Average goals scored by home sides (default: 1.5)
	LeagueAvgAwayGoals    float64 // Average goals scored by away sides (default: 1.0)
	FormWeight            float64 // Goals added per point of mean form (default: 0.2)
	HomeAdvantage         float64 // Goals added to the home side (default: 0.2)
	StandingsFactorWeight float64 // Weight per point of table difference (default: 0.02)
	StandingsMultiplier   float64 // Extra emphasis on the table difference (default: 2)
	PoissonMaxGoals       int     // Score range summed over, 0..N (default: 10)

	// === TEAM STATS ===
	RecentMatches int // Matches analysed per team (default: 10)
	FormMatches   int // Matches that make up the form (default: 5)

	// === PROBABILITY ADJUSTMENTS ===
	BigGapPoints      int     // Point gap above which the favourite is boosted (default: 10)
	BigGapBoost       float64 // Probability moved to the favourite (default: 0.2)
	ConfidenceMatches int     // Historical matches needed for full confidence (default: 20)
	MaxConfidence     float64 // Confidence ceiling (default: 0.9)

	// === MONTE CARLO ===
	Simulations               int     // Simulated seasons (default: 1000)
	SimulationWorkers         int     // Goroutines sharing the simulations (default: 4)
	SimulationModel           string  // "strength" or "poisson" (default: strength)
	SimulationHomeBonus       float64 // Added to the home win chance (default: 0.1)
	SimulationDrawProbability float64 // Fixed draw chance (default: 0.25)
	Seed                      int64   // 0 seeds from the clock
}

// DefaultConfig returns the default configuration
func DefaultConfig() *PredictConfig {
	return &PredictConfig{
		LeagueAvgHomeGoals:    1.5,
		LeagueAvgAwayGoals:    1.0,
		FormWeight:            0.2,
		HomeAdvantage:         0.2,
		StandingsFactorWeight: 0.02,
		StandingsMultiplier:   2,
		PoissonMaxGoals:       10,

		RecentMatches: 10,
		FormMatches:   5,

		BigGapPoints:      10,
		BigGapBoost:       0.2,
		ConfidenceMatches: 20,
		MaxConfidence:     0.9,

		Simulations:               1000,
		SimulationWorkers:         4,
		SimulationModel:           ModelStrength,
		SimulationHomeBonus:       0.1,
		SimulationDrawProbability: 0.25,
	}
}

// Global configuration instance
var Config *PredictConfig

var configMu sync.RWMutex

func init() {
	Config = DefaultConfig()
}

// current returns the configuration in force
func current() *PredictConfig {
	configMu.RLock()
	defer configMu.RUnlock()
	return Config
}

// UpdateConfig validates and installs a new global configuration
func UpdateConfig(newConfig *PredictConfig) error {
	if err := ValidateConfig(newConfig); err != nil {
		return err
	}
	configMu.Lock()
	Config = newConfig
	configMu.Unlock()
	return nil
}

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *PredictConfig) error {
	if config == nil {
		return fmt.Errorf("config must not be nil")
	}
	if config.LeagueAvgHomeGoals <= 0 || config.LeagueAvgAwayGoals <= 0 {
		return fmt.Errorf("league goal averages must be positive, got: %f / %f",
			config.LeagueAvgHomeGoals, config.LeagueAvgAwayGoals)
	}
	if config.PoissonMaxGoals < 3 {
		return fmt.Errorf("PoissonMaxGoals should be at least 3 to capture realistic scores, got: %d", config.PoissonMaxGoals)
	}
	if config.RecentMatches < 1 || config.FormMatches < 1 {
		return fmt.Errorf("RecentMatches and FormMatches must be at least 1")
	}
	if config.ConfidenceMatches < 1 {
		return fmt.Errorf("ConfidenceMatches must be at least 1, got: %d", config.ConfidenceMatches)
	}
	probabilities := map[string]float64{
		"BigGapBoost":               config.BigGapBoost,
		"MaxConfidence":             config.MaxConfidence,
		"SimulationHomeBonus":       config.SimulationHomeBonus,
		"SimulationDrawProbability": config.SimulationDrawProbability,
	}
	for name, p := range probabilities {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be between 0.0 and 1.0, got: %f", name, p)
		}
	}
	if config.Simulations < 1 {
		return fmt.Errorf("Simulations must be at least 1, got: %d", config.Simulations)
	}
	if config.SimulationWorkers < 1 {
		return fmt.Errorf("SimulationWorkers must be at least 1, got: %d", config.SimulationWorkers)
	}
	if config.SimulationModel != ModelStrength && config.SimulationModel != ModelPoisson {
		return fmt.Errorf("unknown simulation model %q", config.SimulationModel)
	}
	return nil
}
