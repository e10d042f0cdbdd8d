package notify

import (
	"context"
	"fmt"
	"strings"
)

// ResultLine is one match of an update, with team names resolved
type ResultLine struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeGoals int    `json:"homeGoals"`
	AwayGoals int    `json:"awayGoals"`
}

// Update is what gets announced after official results are stored
type Update struct {
	Matchday int          `json:"matchday"`
	Source   string       `json:"source"`
	Results  []ResultLine `json:"results"`
}

// Notifier announces stored results
type Notifier interface {
	MatchdayUpdated(ctx context.Context, u Update) error
}

// NopNotifier is used when nothing is configured
type NopNotifier struct{}

func (NopNotifier) MatchdayUpdated(ctx context.Context, u Update) error {
	return nil
}

// Description renders the results one per line
func Description(u Update) string {
	var sb strings.Builder
	for _, r := range u.Results {
		fmt.Fprintf(&sb, "%s **%d - %d** %s\n", r.Home, r.HomeGoals, r.AwayGoals, r.Away)
	}
	if sb.Len() == 0 {
		return "No results."
	}
	return strings.TrimRight(sb.String(), "\n")
}
