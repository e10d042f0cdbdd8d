package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/transport"
)

const (
	APIFootballBaseURL = "https://v3.football.api-sports.io"
	// Primera RFEF Grupo 1
	APIFootballLeague = 435
)

var roundPattern = regexp.MustCompile(`Regular Season - (\d+)`)

type apiFixture struct {
	Fixture struct {
		ID     int    `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
			Long  string `json:"long"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID    int    `json:"id"`
		Round string `json:"round"`
	} `json:"league"`
	Teams struct {
		Home apiTeam `json:"home"`
		Away apiTeam `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type apiTeam struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type apiResponse struct {
	Response []apiFixture `json:"response"`
	// API-Football sends [] when there are no errors and an object otherwise
	Errors json.RawMessage `json:"errors"`
}

func (r apiResponse) err() error {
	var errs map[string]string
	if len(r.Errors) == 0 || json.Unmarshal(r.Errors, &errs) != nil || len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("api-football returned errors: %v", errs)
}

// APIFootballClient reads fixtures from API-Football v3
type APIFootballClient struct {
	http    *transport.Client
	baseURL string
	key     string
	season  int
	roster  *league.Roster
}

func NewAPIFootballClient(client *transport.Client, key string, season int, roster *league.Roster) *APIFootballClient {
	return &APIFootballClient{
		http:    client,
		baseURL: APIFootballBaseURL,
		key:     key,
		season:  season,
		roster:  roster,
	}
}

// WithBaseURL points the client somewhere else, for tests and proxies
func (c *APIFootballClient) WithBaseURL(base string) *APIFootballClient {
	c.baseURL = base
	return c
}

func (c *APIFootballClient) fixtures(ctx context.Context, extra url.Values) (apiResponse, error) {
	if c.key == "" {
		return apiResponse{}, ErrNoAPIKey
	}
	q := url.Values{}
	q.Set("league", strconv.Itoa(APIFootballLeague))
	q.Set("season", strconv.Itoa(c.season))
	for k, v := range extra {
		q[k] = v
	}
	u := c.baseURL + "/fixtures?" + q.Encode()
	logger.Debug("Fetching fixtures from API-Football", u)

	var resp apiResponse
	if err := c.http.GetJSON(ctx, u, http.Header{"x-apisports-key": {c.key}}, &resp); err != nil {
		return apiResponse{}, err
	}
	if err := resp.err(); err != nil {
		return apiResponse{}, err
	}
	return resp, nil
}

// CurrentRound returns the highest regular season round among the last ten
// fixtures, or 0 when it cannot be told
func (c *APIFootballClient) CurrentRound(ctx context.Context) (int, error) {
	resp, err := c.fixtures(ctx, url.Values{"last": {"10"}})
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, f := range resp.Response {
		if n := ParseRound(f.League.Round); n > highest {
			highest = n
		}
	}
	return highest, nil
}

// FinishedFixtures returns the full-time results of a round. Fixtures whose
// teams cannot be resolved are dropped with a warning.
func (c *APIFootballClient) FinishedFixtures(ctx context.Context, round int) ([]FinishedFixture, error) {
	resp, err := c.fixtures(ctx, url.Values{"round": {fmt.Sprintf("Regular Season - %d", round)}})
	if err != nil {
		return nil, err
	}

	var out []FinishedFixture
	for _, f := range resp.Response {
		if f.Fixture.Status.Short != "FT" {
			continue
		}
		home, okHome := c.roster.Resolve(f.Teams.Home.Name)
		away, okAway := c.roster.Resolve(f.Teams.Away.Name)
		if !okHome || !okAway {
			logger.Warn("No mapping for fixture teams", f.Teams.Home.Name, f.Teams.Away.Name)
			continue
		}
		out = append(out, FinishedFixture{
			HomeTeamID: home,
			AwayTeamID: away,
			HomeGoals:  goals(f.Goals.Home),
			AwayGoals:  goals(f.Goals.Away),
			HomeName:   f.Teams.Home.Name,
			AwayName:   f.Teams.Away.Name,
		})
	}
	logger.Info(fmt.Sprintf("Found %d finished fixtures for round %d", len(out), round))
	return out, nil
}

func goals(g *int) int {
	if g == nil {
		return 0
	}
	return *g
}

// ParseRound extracts N from "Regular Season - N", returning 0 otherwise
func ParseRound(s string) int {
	m := roundPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
