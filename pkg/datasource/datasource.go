package datasource

import (
	"context"
	"errors"
)

// ErrNoAPIKey is returned by API-Football calls when no key is configured
var ErrNoAPIKey = errors.New("API_FOOTBALL_KEY is not configured")

// FinishedFixture is a played match with both teams resolved to league ids
type FinishedFixture struct {
	HomeTeamID int    `json:"homeTeamId"`
	AwayTeamID int    `json:"awayTeamId"`
	HomeGoals  int    `json:"homeGoals"`
	AwayGoals  int    `json:"awayGoals"`
	HomeName   string `json:"homeName"`
	AwayName   string `json:"awayName"`
}

// ResultSource returns the finished matches of a round
type ResultSource interface {
	FinishedFixtures(ctx context.Context, round int) ([]FinishedFixture, error)
}
