package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/predict"
	"github.com/richard-senior/rfef/pkg/service"
	"github.com/richard-senior/rfef/pkg/store"
	"github.com/richard-senior/rfef/pkg/updater"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	override int
	report   updater.Report
	err      error
}

func (f *fakeJob) Run(_ context.Context, override int) (updater.Report, error) {
	f.override = override
	return f.report, f.err
}

func setup(t *testing.T) (http.Handler, *fakeJob) {
	t.Helper()
	dir := t.TempDir()
	cfg := predict.DefaultConfig()
	cfg.Simulations = 100
	cfg.Seed = 3
	svc := service.New(service.Options{
		Official:   store.NewFileOfficialStore(filepath.Join(dir, "official.json")),
		Historical: store.NewFileHistoricalStore(filepath.Join(dir, "historical.json")),
		Predict:    cfg,
	})
	job := &fakeJob{report: updater.Report{Success: true, Matchday: 24, Updated: 3}}
	h := NewHandler(svc, job, "s3cret", false)
	h.now = func() time.Time { return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC) }
	return h.SetupRoutes(), job
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// decodeData re-decodes the envelope's data into v
func decodeData(t *testing.T, resp Response, v any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

const day22 = `{"matchday":22,"matches":[
	{"id":1,"result":{"homeGoals":2,"awayGoals":0,"isOfficial":true},"locked":true}]}`

func TestOfficialResultsEndpoints(t *testing.T) {
	h, _ := setup(t)

	rec, resp := do(t, h, "GET", "/api/official-results", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	rec, resp = do(t, h, "POST", "/api/official-results", day22)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var official league.OfficialResults
	decodeData(t, resp, &official)
	require.Len(t, official.Matchdays, 1)

	rec, resp = do(t, h, "POST", "/api/official-results", `{"matchday":99,"matches":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)

	rec, _ = do(t, h, "POST", "/api/official-results", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, "POST", "/api/official-results",
		`{"matchday":22,"matches":[{"id":500,"result":{"homeGoals":1,"awayGoals":0},"locked":true}]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// a malformed id is a bad request, not a missing match
	rec, resp = do(t, h, "POST", "/api/official-results",
		`{"matchday":22,"matches":[{"id":0,"result":{"homeGoals":1,"awayGoals":0},"locked":true}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "invalid input")
}

func TestHistoricalEndpoints(t *testing.T) {
	h, _ := setup(t)

	rec, resp := do(t, h, "POST", "/api/historical-matches", `{"matches":[{"id":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "matches must be an array", resp.Error)
	rec, _ = do(t, h, "POST", "/api/historical-matches", `null`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, h, "POST", "/api/historical-matches", `[{"id":"one"}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = do(t, h, "POST", "/api/historical-matches",
		`[{"id":1,"date":"2025-10-01","homeTeamId":1,"awayTeamId":2,"homeGoals":1,"awayGoals":1,"season":"2025/26"}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved historicalBody
	decodeData(t, resp, &saved)
	require.Len(t, saved.Matches, 1)
	assert.Equal(t, 1, saved.Matches[0].HomeTeamID)

	_, resp = do(t, h, "GET", "/api/historical-matches", "")
	var body historicalBody
	decodeData(t, resp, &body)
	require.Len(t, body.Matches, 1)
	assert.Equal(t, 2, body.Matches[0].AwayTeamID)

	rec, _ = do(t, h, "POST", "/api/historical-matches", `[]`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, resp = do(t, h, "GET", "/api/historical-matches", "")
	decodeData(t, resp, &body)
	assert.Empty(t, body.Matches)
}

func TestConvertOfficialEndpoint(t *testing.T) {
	h, _ := setup(t)

	rec, _ := do(t, h, "POST", "/api/official-results", day22)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := do(t, h, "POST", "/api/historical-matches/from-official", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var converted historicalBody
	decodeData(t, resp, &converted)
	require.Len(t, converted.Matches, 1)
	assert.Equal(t, 1000, converted.Matches[0].ID)
	assert.Equal(t, "2026-02-10", converted.Matches[0].Date)
	assert.Equal(t, 2, converted.Matches[0].HomeGoals)

	// temporary results only count with includeAll
	rec, resp = do(t, h, "POST", "/api/historical-matches/from-official",
		`{"includeAll":true,"results":{"3":{"home":"1","away":"1"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, resp, &converted)
	assert.Len(t, converted.Matches, 2)

	_, resp = do(t, h, "GET", "/api/historical-matches", "")
	var stored historicalBody
	decodeData(t, resp, &stored)
	assert.Len(t, stored.Matches, 2)
}

func TestCronEndpoint(t *testing.T) {
	h, job := setup(t)

	rec, _ := do(t, h, "GET", "/api/cron/update-results", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/api/cron/update-results?round=25", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, job.override)
	var report updater.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Updated)

	job.err = errors.New("upstream down")
	req = httptest.NewRequest("GET", "/api/cron/update-results", nil)
	req.Header.Set("x-vercel-cron", "true")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	// with a secret configured the cron header alone is not enough
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStandingsAndShareLink(t *testing.T) {
	h, _ := setup(t)

	rec, resp := do(t, h, "POST", "/api/standings", `{"results":{"3":{"home":"5","away":"0"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var view StandingsView
	decodeData(t, resp, &view)
	require.Len(t, view.Standings, 20)
	require.NotEmpty(t, view.Share)

	// the share parameter reproduces the same table
	_, resp = do(t, h, "GET", "/api/standings?state="+view.Share, "")
	var shared []league.Team
	decodeData(t, resp, &shared)
	assert.Equal(t, view.Standings, shared)

	rec, _ = do(t, h, "GET", "/api/standings?state="+url.QueryEscape("garbage"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictionEndpoints(t *testing.T) {
	h, _ := setup(t)

	rec, resp := do(t, h, "GET", "/api/predictions?matchday=22", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var preds []service.PredictionView
	decodeData(t, resp, &preds)
	assert.Len(t, preds, 10)

	rec, resp = do(t, h, "GET", "/api/predictions/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var one service.PredictionView
	decodeData(t, resp, &one)
	assert.Equal(t, "CD Tenerife", one.HomeName)

	rec, _ = do(t, h, "GET", "/api/predictions/9999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = do(t, h, "GET", "/api/teams/1/simulation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tp predict.TeamPrediction
	decodeData(t, resp, &tp)
	assert.Equal(t, 100, tp.Simulations)

	rec, _ = do(t, h, "GET", "/api/teams/77/simulation", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWhatIfEndpoint(t *testing.T) {
	h, _ := setup(t)

	rec, resp := do(t, h, "POST", "/api/scenarios/what-if", `{"type":"points","teamId":1,"targetPoints":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res predict.ScenarioResult
	decodeData(t, resp, &res)
	assert.True(t, res.Guaranteed)

	rec, _ = do(t, h, "POST", "/api/scenarios/what-if", `{"type":"points","teamId":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSavedScenariosWithoutDatabase(t *testing.T) {
	h, _ := setup(t)
	rec, _ := do(t, h, "GET", "/api/scenarios", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, resp := do(t, h, "POST", "/api/scenarios", `{"tempResults":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", resp.Error)
}

func TestExportEndpoint(t *testing.T) {
	h, _ := setup(t)

	rec, _ := do(t, h, "GET", "/api/export?format=markdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "standings.md")
	assert.Contains(t, rec.Body.String(), "CD Tenerife")

	rec, _ = do(t, h, "GET", "/api/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, "GET", "/api/export?format=json&upload=true", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestImportEndpoint(t *testing.T) {
	h, _ := setup(t)

	rec, resp := do(t, h, "POST", "/api/import", `{"teams":[{"id":1,"name":"A"},{"id":2,"name":"B"}],
		"fixtures":[{"id":1,"matchday":22,"homeTeamId":1,"awayTeamId":3}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "unknown team")

	rec, resp = do(t, h, "POST", "/api/import", `{"teams":[{"id":1,"name":"A"},{"id":2,"name":"B"}],
		"fixtures":[{"id":1,"matchday":22,"homeTeamId":1,"awayTeamId":2}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2 teams and 1 fixtures imported", resp.Message)

	_, resp = do(t, h, "GET", "/api/standings", "")
	var table []league.Team
	decodeData(t, resp, &table)
	assert.Len(t, table, 2)
}

func TestStatsEndpoint(t *testing.T) {
	h, _ := setup(t)
	rec, resp := do(t, h, "GET", "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st service.Stats
	decodeData(t, resp, &st)
	assert.Len(t, st.BestDefences, 5)
}
