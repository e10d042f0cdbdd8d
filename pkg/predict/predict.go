package predict

import (
	"math"

	"github.com/richard-senior/rfef/pkg/league"
)

// Factors are the inputs that shaped a prediction, kept for explanation
type Factors struct {
	HomeAdvantage       float64 `json:"homeAdvantage"`
	HomeFormFactor      float64 `json:"homeFormFactor"`
	AwayFormFactor      float64 `json:"awayFormFactor"`
	HomeAttackStrength  float64 `json:"homeAttackStrength"`
	HomeDefenseStrength float64 `json:"homeDefenseStrength"`
	AwayAttackStrength  float64 `json:"awayAttackStrength"`
	AwayDefenseStrength float64 `json:"awayDefenseStrength"`
	StandingsFactor     float64 `json:"standingsFactor"`
	HeadToHead          string  `json:"headToHead,omitempty"`
}

// MatchPrediction is the forecast for one fixture
type MatchPrediction struct {
	MatchID            int     `json:"matchId"`
	HomeTeamID         int     `json:"homeTeamId"`
	AwayTeamID         int     `json:"awayTeamId"`
	HomeWinProbability float64 `json:"homeWinProbability"`
	DrawProbability    float64 `json:"drawProbability"`
	AwayWinProbability float64 `json:"awayWinProbability"`
	PredictedHomeGoals float64 `json:"predictedHomeGoals"`
	PredictedAwayGoals float64 `json:"predictedAwayGoals"`
	Confidence         float64 `json:"confidence"`
	Factors            Factors `json:"factors"`
}

const (
	minExpectedGoals = 0.1
	minProbability   = 0.05
	maxProbability   = 0.95
)

func fallbackPrediction(match league.Match, cfg *PredictConfig) MatchPrediction {
	return MatchPrediction{
		MatchID:            match.ID,
		HomeTeamID:         match.HomeTeamID,
		AwayTeamID:         match.AwayTeamID,
		HomeWinProbability: 0.33,
		DrawProbability:    0.34,
		AwayWinProbability: 0.33,
		PredictedHomeGoals: 1,
		PredictedAwayGoals: 1,
		Confidence:         0.1,
		Factors: Factors{
			HomeAdvantage:       cfg.HomeAdvantage,
			HomeAttackStrength:  1,
			HomeDefenseStrength: 1,
			AwayAttackStrength:  1,
			AwayDefenseStrength: 1,
		},
	}
}

// PredictMatch forecasts a fixture from team stats and the current table.
// Unknown teams or missing stats produce a neutral fallback prediction.
func PredictMatch(match league.Match, stats map[int]TeamStats, teams []league.Team, historical []HistoricalMatch) MatchPrediction {
	p, _, _ := predictWith(current(), match, stats, teams, historical)
	return p
}

// predictWith also returns the unrounded expected goals of both sides
func predictWith(cfg *PredictConfig, match league.Match, stats map[int]TeamStats, teams []league.Team, historical []HistoricalMatch) (MatchPrediction, float64, float64) {
	home, okHome := league.FindTeam(teams, match.HomeTeamID)
	away, okAway := league.FindTeam(teams, match.AwayTeamID)
	if !okHome || !okAway {
		p := fallbackPrediction(match, cfg)
		return p, p.PredictedHomeGoals, p.PredictedAwayGoals
	}
	homeStats, okHome := stats[home.ID]
	awayStats, okAway := stats[away.ID]
	if !okHome || !okAway {
		p := fallbackPrediction(match, cfg)
		return p, p.PredictedHomeGoals, p.PredictedAwayGoals
	}

	homeForm := mean(homeStats.Form)
	awayForm := mean(awayStats.Form)

	pointsDiff := home.Points - away.Points
	sf := float64(pointsDiff) * cfg.StandingsFactorWeight * cfg.StandingsMultiplier

	predHome := cfg.LeagueAvgHomeGoals*homeStats.HomeAttackStrength*awayStats.AwayDefenseStrength +
		homeForm*cfg.FormWeight + cfg.HomeAdvantage
	predAway := cfg.LeagueAvgAwayGoals*awayStats.AwayAttackStrength*homeStats.HomeDefenseStrength +
		awayForm*cfg.FormWeight

	switch {
	case sf > 0:
		predHome += sf * 1.5
		predAway = math.Max(minExpectedGoals, predAway-sf*0.5)
	case sf < 0:
		predAway += -sf * 1.5
		predHome = math.Max(minExpectedGoals, predHome+sf*0.5)
	}
	predHome = math.Max(minExpectedGoals, predHome)
	predAway = math.Max(minExpectedGoals, predAway)

	pHome, pDraw, pAway := outcomeProbabilities(predHome, predAway, cfg.PoissonMaxGoals)
	total := pHome + pDraw + pAway
	pHome, pDraw, pAway = pHome/total, pDraw/total, pAway/total

	if abs(pointsDiff) > cfg.BigGapPoints {
		if pointsDiff > 0 {
			pHome = math.Min(maxProbability, pHome+cfg.BigGapBoost)
			pAway = math.Max(minProbability, pAway-cfg.BigGapBoost)
		} else {
			pAway = math.Min(maxProbability, pAway+cfg.BigGapBoost)
			pHome = math.Max(minProbability, pHome-cfg.BigGapBoost)
		}
		pDraw = math.Max(minProbability, 1-pHome-pAway)
	}

	dataPoints := 0
	for _, h := range historical {
		if h.Involves(home.ID) || h.Involves(away.ID) {
			dataPoints++
		}
	}
	confidence := math.Min(cfg.MaxConfidence, float64(dataPoints)/float64(cfg.ConfidenceMatches))

	p := MatchPrediction{
		MatchID:            match.ID,
		HomeTeamID:         match.HomeTeamID,
		AwayTeamID:         match.AwayTeamID,
		HomeWinProbability: pHome,
		DrawProbability:    pDraw,
		AwayWinProbability: pAway,
		PredictedHomeGoals: roundTo(predHome, 1),
		PredictedAwayGoals: roundTo(predAway, 1),
		Confidence:         confidence,
		Factors: Factors{
			HomeAdvantage:       cfg.HomeAdvantage,
			HomeFormFactor:      homeForm,
			AwayFormFactor:      awayForm,
			HomeAttackStrength:  homeStats.HomeAttackStrength,
			HomeDefenseStrength: homeStats.HomeDefenseStrength,
			AwayAttackStrength:  awayStats.AwayAttackStrength,
			AwayDefenseStrength: awayStats.AwayDefenseStrength,
			StandingsFactor:     sf,
			HeadToHead:          headToHead(home.ID, away.ID, historical),
		},
	}
	return p, predHome, predAway
}

// PredictMatches forecasts every fixture that has no result yet, using the
// table produced by the results already in the fixtures
func PredictMatches(fixtures []league.Match, teams []league.Team, historical []HistoricalMatch) []MatchPrediction {
	stats := CalculateTeamStats(teams, fixtures, historical)
	table := league.CalculateStandings(teams, fixtures)

	var out []MatchPrediction
	for _, m := range fixtures {
		if m.HasResult() {
			continue
		}
		out = append(out, PredictMatch(m, stats, table, historical))
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
