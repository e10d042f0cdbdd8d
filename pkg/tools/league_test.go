package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/predict"
	"github.com/richard-senior/rfef/pkg/protocol"
	"github.com/richard-senior/rfef/pkg/server"
	"github.com/richard-senior/rfef/pkg/service"
	"github.com/richard-senior/rfef/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *server.Server {
	t.Helper()
	dir := t.TempDir()
	cfg := predict.DefaultConfig()
	cfg.Simulations = 100
	cfg.Seed = 11
	svc := service.New(service.Options{
		Official:   store.NewFileOfficialStore(filepath.Join(dir, "official.json")),
		Historical: store.NewFileHistoricalStore(filepath.Join(dir, "historical.json")),
		Predict:    cfg,
	})
	s := server.New(nil, "rfef", "test")
	roster := league.DefaultRoster()
	roster.AddAlias("Los Chicharreros", 1)
	Register(s, svc, roster)
	return s
}

// call runs a tool through tools/call and decodes its text content into v
func call(t *testing.T, s *server.Server, name string, args map[string]any, v any) protocol.ToolCallResult {
	t.Helper()
	req, err := protocol.NewJsonRpcRequest("tools/call", map[string]any{"name": name, "arguments": args}, 1)
	require.NoError(t, err)
	resp := s.HandleRequest(context.Background(), req)
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var res protocol.ToolCallResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Content, 1)
	if !res.IsError && v != nil {
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), v))
	}
	return res
}

func TestRegisterListsLeagueTools(t *testing.T) {
	var names []string
	for _, tool := range newServer(t).Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"league_standings", "predict_match", "predict_matchday", "simulate_team", "what_if", "official_results", "convert_official_to_historical"}, names)
}

func TestStandingsTool(t *testing.T) {
	s := newServer(t)
	var table []league.Team
	res := call(t, s, "league_standings", map[string]any{
		"results": map[string]any{"3": map[string]any{"home": "4", "away": "0"}},
	}, &table)
	require.False(t, res.IsError)
	require.Len(t, table, 20)

	res = call(t, s, "league_standings", map[string]any{"results": []any{1, 2}}, nil)
	assert.True(t, res.IsError)
}

func TestPredictTools(t *testing.T) {
	s := newServer(t)

	var one service.PredictionView
	res := call(t, s, "predict_match", map[string]any{"matchId": 3}, &one)
	require.False(t, res.IsError)
	assert.Equal(t, "CD Tenerife", one.HomeName)

	res = call(t, s, "predict_match", map[string]any{"matchId": "3"}, &one)
	assert.False(t, res.IsError)

	res = call(t, s, "predict_match", map[string]any{}, nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "no matchId parameter was sent", res.Content[0].Text)

	var day []service.PredictionView
	res = call(t, s, "predict_matchday", map[string]any{"matchday": 22}, &day)
	require.False(t, res.IsError)
	assert.Len(t, day, 10)
}

func TestSimulateTeamByName(t *testing.T) {
	s := newServer(t)

	var tp predict.TeamPrediction
	res := call(t, s, "simulate_team", map[string]any{"team": "Zamora"}, &tp)
	require.False(t, res.IsError, res.Content[0].Text)
	assert.Equal(t, 8, tp.TeamID)
	assert.Equal(t, 100, tp.Simulations)

	res = call(t, s, "simulate_team", map[string]any{"team": "Los Chicharreros"}, &tp)
	require.False(t, res.IsError)
	assert.Equal(t, 1, tp.TeamID)

	res = call(t, s, "simulate_team", map[string]any{"team": "Manchester United"}, nil)
	assert.True(t, res.IsError)
	res = call(t, s, "simulate_team", map[string]any{}, nil)
	assert.True(t, res.IsError)
}

func TestWhatIfTool(t *testing.T) {
	s := newServer(t)

	var sr predict.ScenarioResult
	res := call(t, s, "what_if", map[string]any{"type": "points", "teamId": 1, "targetPoints": 500}, &sr)
	require.False(t, res.IsError)
	assert.False(t, sr.Possible)

	res = call(t, s, "what_if", map[string]any{"type": "position", "teamId": 1}, nil)
	assert.True(t, res.IsError)
}

func TestOfficialResultsTool(t *testing.T) {
	var o league.OfficialResults
	res := call(t, newServer(t), "official_results", nil, &o)
	require.False(t, res.IsError)
	assert.Empty(t, o.Matchdays)
}

func TestIntArg(t *testing.T) {
	n, err := intArg(map[string]any{"x": 4.0}, "x")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = intArg(map[string]any{"x": 4.5}, "x")
	assert.Error(t, err)
	_, err = intArg(map[string]any{"x": true}, "x")
	assert.Error(t, err)
}

func TestConvertOfficialTool(t *testing.T) {
	s := newServer(t)

	var matches []predict.HistoricalMatch
	res := call(t, s, "convert_official_to_historical", nil, &matches)
	require.False(t, res.IsError)
	assert.Empty(t, matches)

	res = call(t, s, "convert_official_to_historical", map[string]any{
		"includeAll": true,
		"results":    map[string]any{"3": map[string]any{"home": "2", "away": "1"}},
	}, &matches)
	require.False(t, res.IsError, res.Content[0].Text)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].HomeTeamID)
	assert.Equal(t, 20, matches[0].AwayTeamID)
	assert.Equal(t, 22, matches[0].Matchday)
}
