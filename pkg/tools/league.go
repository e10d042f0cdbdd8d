package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/richard-senior/rfef/pkg/predict"
	"github.com/richard-senior/rfef/pkg/protocol"
	"github.com/richard-senior/rfef/pkg/server"
	"github.com/richard-senior/rfef/pkg/service"
	"github.com/richard-senior/rfef/pkg/util"
)

// Register adds every league tool to the server. Team names are resolved
// with roster, or the default roster when it is nil.
func Register(s *server.Server, svc *service.Service, roster *league.Roster) {
	if roster == nil {
		roster = league.DefaultRoster()
	}
	lt := &leagueTools{svc: svc, roster: roster}
	s.RegisterTool(StandingsTool(), lt.handleStandings)
	s.RegisterTool(PredictMatchTool(), lt.handlePredictMatch)
	s.RegisterTool(PredictMatchdayTool(), lt.handlePredictMatchday)
	s.RegisterTool(SimulateTeamTool(), lt.handleSimulateTeam)
	s.RegisterTool(WhatIfTool(), lt.handleWhatIf)
	s.RegisterTool(OfficialResultsTool(), lt.handleOfficialResults)
	s.RegisterTool(ConvertOfficialTool(), lt.handleConvertOfficial)
}

type leagueTools struct {
	svc    *service.Service
	roster *league.Roster
}

var resultsProperty = protocol.ToolProperty{
	Type: "object",
	Description: `Optional what-if results keyed by match id, eg {"3": {"home": "2", "away": "1"}}.
	Official results cannot be overridden.`,
}

var teamProperties = map[string]protocol.ToolProperty{
	"teamId": {Type: "number", Description: "The team's id"},
	"team":   {Type: "string", Description: "The team's name, used when teamId is not given. Misspellings are tolerated."},
}

////////////////////////////////////////////////////////////////////////
////// Tool definitions
////////////////////////////////////////////////////////////////////////

func StandingsTool() protocol.Tool {
	return protocol.Tool{
		Name:        "league_standings",
		Description: "Returns the Primera RFEF Grupo 1 table after the official results and any what-if results.",
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: map[string]protocol.ToolProperty{"results": resultsProperty},
			Required:   []string{},
		},
	}
}

func PredictMatchTool() protocol.Tool {
	return protocol.Tool{
		Name:        "predict_match",
		Description: "Predicts one fixture: win/draw/loss probabilities, expected goals, predicted score and the most influential factor.",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"matchId": {Type: "number", Description: "The fixture id"},
				"results": resultsProperty,
			},
			Required: []string{"matchId"},
		},
	}
}

func PredictMatchdayTool() protocol.Tool {
	return protocol.Tool{
		Name:        "predict_matchday",
		Description: "Predicts every fixture of a matchday (22 to 38) that has no result yet.",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"matchday": {Type: "number", Description: "The matchday, 22 to 38"},
				"results":  resultsProperty,
			},
			Required: []string{"matchday"},
		},
	}
}

func SimulateTeamTool() protocol.Tool {
	props := map[string]protocol.ToolProperty{"results": resultsProperty}
	for k, v := range teamProperties {
		props[k] = v
	}
	return protocol.Tool{
		Name: "simulate_team",
		Description: `Simulates the rest of the season many times and returns a team's chances of
		direct promotion, promotion playoff, safety, relegation playout and relegation, with its average finishing position.`,
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{},
		},
	}
}

func WhatIfTool() protocol.Tool {
	props := map[string]protocol.ToolProperty{
		"type": {
			Type:        "string",
			Description: "The question to answer",
			Enum:        []string{string(predict.ScenarioPromotion), string(predict.ScenarioRelegation), string(predict.ScenarioPoints), string(predict.ScenarioPosition)},
		},
		"targetPoints":   {Type: "number", Description: "Required for type points"},
		"targetPosition": {Type: "number", Description: "Required for type position"},
		"results":        resultsProperty,
	}
	for k, v := range teamProperties {
		props[k] = v
	}
	return protocol.Tool{
		Name:        "what_if",
		Description: "Works out which results a team needs from its remaining fixtures to reach promotion, safety, a points total or a position.",
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"type"},
		},
	}
}

func OfficialResultsTool() protocol.Tool {
	return protocol.Tool{
		Name:        "official_results",
		Description: "Returns the stored official results, grouped by matchday.",
		InputSchema: protocol.InputSchema{
			Type:     "object",
			Required: []string{},
		},
	}
}

func ConvertOfficialTool() protocol.Tool {
	return protocol.Tool{
		Name:        "convert_official_to_historical",
		Description: "Replaces the historical matches used for predictions with this season's official results.",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"includeAll": {Type: "boolean", Description: "Also convert the what-if results sent in results"},
				"results":    resultsProperty,
			},
			Required: []string{},
		},
	}
}

////////////////////////////////////////////////////////////////////////
////// Handlers
////////////////////////////////////////////////////////////////////////

func (lt *leagueTools) handleStandings(ctx context.Context, args map[string]any) (any, error) {
	temp, err := tempResults(args)
	if err != nil {
		return nil, err
	}
	return lt.svc.Standings(ctx, temp)
}

func (lt *leagueTools) handlePredictMatch(ctx context.Context, args map[string]any) (any, error) {
	id, err := intArg(args, "matchId")
	if err != nil {
		return nil, err
	}
	temp, err := tempResults(args)
	if err != nil {
		return nil, err
	}
	return lt.svc.Prediction(ctx, id, temp)
}

func (lt *leagueTools) handlePredictMatchday(ctx context.Context, args map[string]any) (any, error) {
	md, err := intArg(args, "matchday")
	if err != nil {
		return nil, err
	}
	temp, err := tempResults(args)
	if err != nil {
		return nil, err
	}
	return lt.svc.PredictMatchday(ctx, md, temp)
}

func (lt *leagueTools) handleSimulateTeam(ctx context.Context, args map[string]any) (any, error) {
	id, err := lt.teamArg(args)
	if err != nil {
		return nil, err
	}
	temp, err := tempResults(args)
	if err != nil {
		return nil, err
	}
	logger.Info("Simulating season for team", id)
	return lt.svc.Simulate(ctx, id, temp)
}

func (lt *leagueTools) handleWhatIf(ctx context.Context, args map[string]any) (any, error) {
	id, err := lt.teamArg(args)
	if err != nil {
		return nil, err
	}
	kind, _ := args["type"].(string)
	cfg := predict.ScenarioConfig{Type: predict.ScenarioType(kind), TeamID: id}
	if _, ok := args["targetPoints"]; ok {
		n, err := intArg(args, "targetPoints")
		if err != nil {
			return nil, err
		}
		cfg.TargetPoints = &n
	}
	if _, ok := args["targetPosition"]; ok {
		n, err := intArg(args, "targetPosition")
		if err != nil {
			return nil, err
		}
		cfg.TargetPosition = &n
	}
	temp, err := tempResults(args)
	if err != nil {
		return nil, err
	}
	return lt.svc.Scenario(ctx, cfg, temp)
}

func (lt *leagueTools) handleOfficialResults(ctx context.Context, _ map[string]any) (any, error) {
	return lt.svc.Official(ctx)
}

func (lt *leagueTools) handleConvertOfficial(ctx context.Context, args map[string]any) (any, error) {
	includeAll, _ := args["includeAll"].(bool)
	temp, err := tempResults(args)
	if err != nil {
		return nil, err
	}
	return lt.svc.ConvertOfficialToHistorical(ctx, temp, includeAll, time.Now())
}

////////////////////////////////////////////////////////////////////////
////// Argument helpers
////////////////////////////////////////////////////////////////////////

// intArg reads a whole number sent either as a JSON number or a string
func intArg(args map[string]any, name string) (int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, fmt.Errorf("no %s parameter was sent", name)
	}
	n, err := util.GetAsInteger(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// teamArg resolves teamId, or failing that the team name
func (lt *leagueTools) teamArg(args map[string]any) (int, error) {
	if _, ok := args["teamId"]; ok {
		return intArg(args, "teamId")
	}
	name, _ := args["team"].(string)
	if name == "" {
		return 0, fmt.Errorf("either teamId or team must be sent")
	}
	id, ok := lt.roster.Resolve(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", league.ErrUnknownTeam, name)
	}
	return id, nil
}

func tempResults(args map[string]any) (league.TempResults, error) {
	raw, ok := args["results"]
	if !ok || raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var temp league.TempResults
	if err := json.Unmarshal(data, &temp); err != nil {
		return nil, fmt.Errorf("%w: results: %v", league.ErrInvalidResult, err)
	}
	return temp, nil
}
