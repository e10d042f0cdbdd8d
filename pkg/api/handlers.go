package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/export"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/predict"
	"github.com/richard-senior/rfef/pkg/service"
	"github.com/richard-senior/rfef/pkg/store"
	"github.com/richard-senior/rfef/pkg/updater"
)

// maxBodyBytes bounds request bodies, a full league import is well under it
const maxBodyBytes = 4 << 20

// Job is the results update run by the cron endpoint
type Job interface {
	Run(ctx context.Context, roundOverride int) (updater.Report, error)
}

// Handler serves the league API
type Handler struct {
	svc        *service.Service
	job        Job
	cronSecret string
	dev        bool
	now        func() time.Time
}

func NewHandler(svc *service.Service, job Job, cronSecret string, dev bool) *Handler {
	return &Handler{
		svc:        svc,
		job:        job,
		cronSecret: cronSecret,
		dev:        dev,
		now:        time.Now,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)

	api := r.PathPrefix("/api").Subrouter()

	// persisted data
	api.HandleFunc("/official-results", h.handleGetOfficial).Methods("GET")
	api.HandleFunc("/official-results", h.handlePostOfficial).Methods("POST")
	api.HandleFunc("/historical-matches", h.handleGetHistorical).Methods("GET")
	api.HandleFunc("/historical-matches", h.handlePostHistorical).Methods("POST")
	api.HandleFunc("/historical-matches/from-official", h.handleConvertOfficial).Methods("POST")
	api.HandleFunc("/cron/update-results", h.handleCron).Methods("GET")

	// league views
	api.HandleFunc("/standings", h.handleGetStandings).Methods("GET")
	api.HandleFunc("/standings", h.handlePostStandings).Methods("POST")
	api.HandleFunc("/predictions", h.handlePredictions).Methods("GET")
	api.HandleFunc("/predictions/{id:[0-9]+}", h.handlePrediction).Methods("GET")
	api.HandleFunc("/teams/{id:[0-9]+}/simulation", h.handleSimulation).Methods("GET")
	api.HandleFunc("/stats", h.handleStats).Methods("GET")

	// scenarios
	api.HandleFunc("/scenarios/what-if", h.handleWhatIf).Methods("POST")
	api.HandleFunc("/scenarios", h.handleListScenarios).Methods("GET")
	api.HandleFunc("/scenarios", h.handleSaveScenario).Methods("POST")
	api.HandleFunc("/scenarios/{id}", h.handleGetScenario).Methods("GET")
	api.HandleFunc("/scenarios/{id}", h.handleDeleteScenario).Methods("DELETE")
	api.HandleFunc("/history", h.handleListSnapshots).Methods("GET")
	api.HandleFunc("/history", h.handleAddSnapshot).Methods("POST")

	// import and export
	api.HandleFunc("/export", h.handleExport).Methods("GET")
	api.HandleFunc("/import", h.handleImport).Methods("POST")

	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug(r.Method, r.URL.Path, time.Since(start).String())
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// tempFromQuery reads the temporary results from a shared "?state=" link
func tempFromQuery(w http.ResponseWriter, r *http.Request) (league.TempResults, bool) {
	param := r.URL.Query().Get("state")
	if param == "" {
		return nil, true
	}
	state, err := league.DecodeShareState(param)
	if err != nil {
		writeFailure(w, err)
		return nil, false
	}
	return state.Results, true
}

////////////////////////////////////////////////////////////////////////
////// Official and historical results
////////////////////////////////////////////////////////////////////////

func (h *Handler) handleGetOfficial(w http.ResponseWriter, r *http.Request) {
	official, err := h.svc.Official(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, official)
}

func (h *Handler) handlePostOfficial(w http.ResponseWriter, r *http.Request) {
	var u league.MatchdayUpdate
	if !decodeBody(w, r, &u) {
		return
	}
	official, err := h.svc.SubmitOfficial(r.Context(), u)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: official, Message: "Official results saved"})
}

type historicalBody struct {
	Matches []predict.HistoricalMatch `json:"matches"`
}

func (h *Handler) handleGetHistorical(w http.ResponseWriter, r *http.Request) {
	matches, err := h.svc.Historical(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	if matches == nil {
		matches = []predict.HistoricalMatch{}
	}
	writeData(w, historicalBody{Matches: matches})
}

// handlePostHistorical replaces the historical matches with the posted
// array and echoes what was stored
func (h *Handler) handlePostHistorical(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if !decodeBody(w, r, &raw) {
		return
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		writeError(w, http.StatusBadRequest, "matches must be an array")
		return
	}
	var matches []predict.HistoricalMatch
	if err := json.Unmarshal(raw, &matches); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if err := h.svc.ReplaceHistorical(r.Context(), matches); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    historicalBody{Matches: matches},
		Message: strconv.Itoa(len(matches)) + " historical matches saved",
	})
}

type convertBody struct {
	IncludeAll bool               `json:"includeAll"`
	Results    league.TempResults `json:"results"`
}

// handleConvertOfficial turns the season's results into the historical set
func (h *Handler) handleConvertOfficial(w http.ResponseWriter, r *http.Request) {
	var body convertBody
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}
	matches, err := h.svc.ConvertOfficialToHistorical(r.Context(), body.Results, body.IncludeAll, h.now())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    historicalBody{Matches: matches},
		Message: strconv.Itoa(len(matches)) + " results converted to historical matches",
	})
}

// handleCron runs the results update. The report is written as is so the
// scheduler sees success and matchesUpdated at the top level.
func (h *Handler) handleCron(w http.ResponseWriter, r *http.Request) {
	if !updater.Authorize(r, h.cronSecret, h.dev) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	override := 0
	if s := r.URL.Query().Get("round"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid round")
			return
		}
		override = n
	}
	report, err := h.job.Run(r.Context(), override)
	if err != nil {
		logger.Error("Results update failed", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

////////////////////////////////////////////////////////////////////////
////// League views
////////////////////////////////////////////////////////////////////////

func (h *Handler) handleGetStandings(w http.ResponseWriter, r *http.Request) {
	temp, ok := tempFromQuery(w, r)
	if !ok {
		return
	}
	table, err := h.svc.Standings(r.Context(), temp)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, table)
}

type standingsBody struct {
	Results league.TempResults `json:"results"`
}

// StandingsView is the table for a set of temporary results and the value of
// the "state" parameter that shares it
type StandingsView struct {
	Standings []league.Team `json:"standings"`
	Share     string        `json:"share"`
}

func (h *Handler) handlePostStandings(w http.ResponseWriter, r *http.Request) {
	var body standingsBody
	if !decodeBody(w, r, &body) {
		return
	}
	table, err := h.svc.Standings(r.Context(), body.Results)
	if err != nil {
		writeFailure(w, err)
		return
	}
	share, err := league.EncodeShareState(league.ShareState{Results: body.Results, Timestamp: h.now().UTC()})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, StandingsView{Standings: table, Share: share})
}

func (h *Handler) handlePredictions(w http.ResponseWriter, r *http.Request) {
	temp, ok := tempFromQuery(w, r)
	if !ok {
		return
	}
	var preds []service.PredictionView
	var err error
	if s := r.URL.Query().Get("matchday"); s != "" {
		md, convErr := strconv.Atoi(s)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid matchday")
			return
		}
		preds, err = h.svc.PredictMatchday(r.Context(), md, temp)
	} else {
		preds, err = h.svc.Predictions(r.Context(), temp)
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, preds)
}

func (h *Handler) handlePrediction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	temp, ok := tempFromQuery(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Prediction(r.Context(), id, temp)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, p)
}

func (h *Handler) handleSimulation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	temp, ok := tempFromQuery(w, r)
	if !ok {
		return
	}
	tp, err := h.svc.Simulate(r.Context(), id, temp)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, tp)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	temp, ok := tempFromQuery(w, r)
	if !ok {
		return
	}
	st, err := h.svc.Stats(r.Context(), temp)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, st)
}

////////////////////////////////////////////////////////////////////////
////// Scenarios and history
////////////////////////////////////////////////////////////////////////

type whatIfBody struct {
	predict.ScenarioConfig
	Results league.TempResults `json:"results"`
}

func (h *Handler) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	var body whatIfBody
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := h.svc.Scenario(r.Context(), body.ScenarioConfig, body.Results)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, res)
}

func (h *Handler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Scenarios(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	if list == nil {
		list = []store.Scenario{}
	}
	writeData(w, list)
}

func (h *Handler) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	var sc store.Scenario
	if !decodeBody(w, r, &sc) {
		return
	}
	if sc.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	saved, err := h.svc.SaveScenario(r.Context(), sc)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, saved)
}

func (h *Handler) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := h.svc.LoadScenario(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, sc)
}

func (h *Handler) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteScenario(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Scenario deleted"})
}

func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Snapshots(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	if list == nil {
		list = []store.Snapshot{}
	}
	writeData(w, list)
}

type snapshotBody struct {
	Description string             `json:"description"`
	Results     league.TempResults `json:"results"`
}

func (h *Handler) handleAddSnapshot(w http.ResponseWriter, r *http.Request) {
	var body snapshotBody
	if !decodeBody(w, r, &body) {
		return
	}
	snap, err := h.svc.Snapshot(r.Context(), body.Description, body.Results)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, snap)
}

////////////////////////////////////////////////////////////////////////
////// Import and export
////////////////////////////////////////////////////////////////////////

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	temp, ok := tempFromQuery(w, r)
	if !ok {
		return
	}

	if upload, _ := strconv.ParseBool(q.Get("upload")); upload {
		loc, err := h.svc.ExportAndUpload(r.Context(), f, temp, h.now())
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeData(w, map[string]string{"location": loc})
		return
	}

	body, err := h.svc.Export(r.Context(), f, temp)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="standings.`+f.Extension()+`"`)
	if _, err := w.Write(body); err != nil {
		logger.Warn("Failed to write export", err)
	}
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read body: "+err.Error())
		return
	}
	ld, err := h.svc.Import(data)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: strconv.Itoa(len(ld.Teams)) + " teams and " + strconv.Itoa(len(ld.Fixtures)) + " fixtures imported",
	})
}
