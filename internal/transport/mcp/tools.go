package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/domain/trip"
	"github.com/kailas-cloud/wayfarer/internal/transport/api"
	"github.com/kailas-cloud/wayfarer/internal/usecase/retrieval"
)

func (s *Server) registerKnowledgeTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "retrieve_knowledge",
		Description: "Find travel knowledge snippets relevant to a query. Results are ranked by semantic similarity, boosted by overlap with the traveler's interests, and optionally restricted to a destination.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Free-text question or topic"},
				"location": {"type": "string", "description": "Destination filter, matched case-insensitively against the snippet destination"},
				"interests": {"type": "array", "items": {"type": "string"}, "description": "Traveler interests such as food, culture, nightlife"},
				"top_k": {"type": "number", "description": "Maximum number of results (default 3)"}
			},
			"required": ["query"]
		}`),
	}, s.handleRetrieveKnowledge)
}

func (s *Server) registerRiskTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "assess_risk",
		Description: "Score the budget, weather and crowding risk of a trip and fold them into a 0-100 quality score. Forecast, events and holidays are optional inputs.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"destination": {"type": "string"},
				"budget": {"type": "number", "description": "Total budget in the trip currency, must be positive"},
				"duration_days": {"type": "number", "description": "Trip length in days, must be positive"},
				"interests": {"type": "array", "items": {"type": "string"}},
				"exchange_rate": {"type": "number", "description": "Trip currency per unit of cost currency (default 1)"},
				"start_date": {"type": "string", "description": "YYYY-MM-DD"},
				"end_date": {"type": "string", "description": "YYYY-MM-DD"},
				"forecast": {"type": "array", "items": {"type": "object", "properties": {
					"date": {"type": "string"},
					"condition": {"type": "string"},
					"precipitation_chance": {"type": "number"},
					"temperature_high": {"type": "number"},
					"temperature_low": {"type": "number"}
				}}},
				"events": {"type": "array", "items": {"type": "object", "properties": {
					"name": {"type": "string"},
					"date": {"type": "string"},
					"category": {"type": "string"},
					"popularity": {"type": "string", "enum": ["low", "medium", "high"]}
				}}},
				"holidays": {"type": "array", "items": {"type": "object", "properties": {
					"name": {"type": "string"},
					"date": {"type": "string"}
				}}}
			},
			"required": ["destination", "budget", "duration_days"]
		}`),
	}, s.handleAssessRisk)
}

func (s *Server) registerPlanTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "plan_trip",
		Description: "Plan a trip: fetch weather, events, holidays and exchange rates, assess risk, gather destination tips and decide whether the plan needs human approval.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"destination": {"type": "string"},
				"start_date": {"type": "string", "description": "YYYY-MM-DD"},
				"end_date": {"type": "string", "description": "YYYY-MM-DD, at most 30 days after start_date"},
				"budget": {"type": "number"},
				"currency": {"type": "string", "description": "ISO 4217 code (default USD)"},
				"interests": {"type": "array", "items": {"type": "string"}}
			},
			"required": ["destination", "start_date", "end_date", "budget"]
		}`),
	}, s.handlePlanTrip)
}

func (s *Server) handleRetrieveKnowledge(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args api.RetrieveRequest
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	topK := 0
	if args.TopK != nil {
		topK = *args.TopK
	}

	r, err := s.retriever.NewRequest(args.Query, args.Location, args.Interests, topK)
	if err != nil {
		return toolError("%v", err), nil
	}
	results, err := s.retriever.Retrieve(ctx, &r)
	if err != nil {
		s.logger.Warn("retrieve_knowledge failed", zap.Error(err))
		return toolError("retrieval failed: %v", err), nil
	}

	return jsonResult(api.RetrieveResponse{
		Items:   api.KnowledgeFromResults(results),
		Total:   len(results),
		Summary: retrieval.Summary(results),
	})
}

func (s *Server) handleAssessRisk(_ context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args api.AssessRequest
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	in, err := api.AssessInputFromAPI(&args)
	if err != nil {
		return toolError("%v", err), nil
	}
	assessment, err := s.assessor.Assess(in)
	if err != nil {
		return toolError("%v", err), nil
	}
	return jsonResult(api.AssessmentToAPI(&assessment))
}

func (s *Server) handlePlanTrip(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args api.PlanRequest
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	t, err := trip.New(args.Destination, args.StartDate, args.EndDate, args.Budget, args.Currency, args.Interests)
	if err != nil {
		return toolError("%v", err), nil
	}
	plan, err := s.planner.Plan(ctx, t)
	if err != nil {
		s.logger.Warn("plan_trip failed", zap.Error(err))
		return toolError("planning failed: %v", err), nil
	}
	return jsonResult(api.PlanToAPI(plan))
}

func jsonResult(v any) (*gomcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(format string, args ...any) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
