package predict

import (
	"fmt"
	"math"

	"github.com/richard-senior/rfef/pkg/league"
)

// Side names used when describing which team a factor helps
const (
	SideHome    = "home"
	SideAway    = "away"
	SideNeutral = "neutral"
)

// Factor is the single input that moved a prediction the most
type Factor struct {
	Name        string  `json:"name"`
	Impact      float64 `json:"impact"`
	Favours     string  `json:"favours"`
	Description string  `json:"description"`
}

const (
	decisiveStandingsFactor = 0.3
	advantageMargin         = 0.5
)

// MostLikelyResult picks the outcome a reader should expect.
// A large table difference decides on its own, then a clear balance of
// factors, then the raw probabilities.
func MostLikelyResult(p MatchPrediction) league.Outcome {
	f := p.Factors
	if math.Abs(f.StandingsFactor) > decisiveStandingsFactor {
		if f.StandingsFactor > 0 {
			return league.HomeWin
		}
		return league.AwayWin
	}

	home := f.HomeAdvantage + f.HomeFormFactor + (f.HomeAttackStrength - f.AwayDefenseStrength) + f.StandingsFactor
	away := f.AwayFormFactor + (f.AwayAttackStrength - f.HomeDefenseStrength) - f.HomeAdvantage - f.StandingsFactor
	switch {
	case home > away+advantageMargin:
		return league.HomeWin
	case away > home+advantageMargin:
		return league.AwayWin
	}

	switch {
	case p.HomeWinProbability > p.DrawProbability && p.HomeWinProbability > p.AwayWinProbability:
		return league.HomeWin
	case p.AwayWinProbability > p.DrawProbability && p.AwayWinProbability > p.HomeWinProbability:
		return league.AwayWin
	default:
		return league.Draw
	}
}

// MostInfluentialFactor weighs each factor and returns the strongest one.
// Team names are used in the description.
func MostInfluentialFactor(p MatchPrediction, homeName, awayName string) Factor {
	f := p.Factors
	candidates := []Factor{
		{Name: "homeAdvantage", Impact: f.HomeAdvantage * 10},
		{Name: "homeForm", Impact: f.HomeFormFactor * 5},
		{Name: "awayForm", Impact: f.AwayFormFactor * 5},
		{Name: "attackDiff", Impact: (f.HomeAttackStrength - f.AwayDefenseStrength) * 3},
		{Name: "defenseDiff", Impact: (f.AwayAttackStrength - f.HomeDefenseStrength) * -3},
		{Name: "standings", Impact: f.StandingsFactor * 15},
	}

	top := Factor{Name: "none", Favours: SideNeutral, Description: "No factor stands out."}
	for _, c := range candidates {
		if math.Abs(c.Impact) > math.Abs(top.Impact) {
			top = c
		}
	}

	switch top.Name {
	case "homeAdvantage":
		top.Favours = SideHome
		top.Description = fmt.Sprintf("%s has a strong advantage playing at home.", homeName)
	case "homeForm":
		top.Favours, top.Description = formSide(top.Impact, SideHome, homeName)
	case "awayForm":
		top.Favours, top.Description = formSide(top.Impact, SideAway, awayName)
	case "attackDiff":
		if top.Impact > 0 {
			top.Favours = SideHome
			top.Description = fmt.Sprintf("%s's attack is stronger than %s's defence.", homeName, awayName)
		} else {
			top.Favours = SideAway
			top.Description = fmt.Sprintf("%s's defence is stronger than %s's attack.", awayName, homeName)
		}
	case "defenseDiff":
		if top.Impact > 0 {
			top.Favours = SideHome
			top.Description = fmt.Sprintf("%s's defence is stronger than %s's attack.", homeName, awayName)
		} else {
			top.Favours = SideAway
			top.Description = fmt.Sprintf("%s's attack is stronger than %s's defence.", awayName, homeName)
		}
	case "standings":
		if top.Impact > 0 {
			top.Favours = SideHome
			top.Description = fmt.Sprintf("%s is placed higher in the table than %s.", homeName, awayName)
		} else {
			top.Favours = SideAway
			top.Description = fmt.Sprintf("%s is placed higher in the table than %s.", awayName, homeName)
		}
	}
	return top
}

func formSide(impact float64, side, name string) (string, string) {
	if impact > 0 {
		return side, fmt.Sprintf("%s is in good form.", name)
	}
	other := SideHome
	if side == SideHome {
		other = SideAway
	}
	return other, fmt.Sprintf("%s is in poor form.", name)
}
