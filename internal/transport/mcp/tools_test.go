package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/document"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/request"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
	"github.com/kailas-cloud/wayfarer/internal/domain/trip"
	"github.com/kailas-cloud/wayfarer/internal/transport/api"
	planneruc "github.com/kailas-cloud/wayfarer/internal/usecase/planner"
	riskuc "github.com/kailas-cloud/wayfarer/internal/usecase/risk"
)

// --- Mocks ---

type stubRetriever struct {
	results []result.Result
	err     error
}

func (s *stubRetriever) NewRequest(query, location string, interests []string, topK int) (request.Request, error) {
	return request.New(query, location, interests, topK)
}

func (s *stubRetriever) Retrieve(context.Context, *request.Request) ([]result.Result, error) {
	return s.results, s.err
}

type stubPlanner struct {
	err error
}

func (s *stubPlanner) Plan(_ context.Context, t trip.Trip) (*planneruc.Plan, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &planneruc.Plan{
		ID:        "plan-42",
		Trip:      t,
		Source:    "mock",
		Gate:      planneruc.Gate{Decision: planneruc.NeedsApproval, Reasons: []string{"weather risk is high"}},
		CreatedAt: time.Now(),
	}, nil
}

// --- Helpers ---

func makeServer(t *testing.T, ret *stubRetriever, opts ...ServerOption) *Server {
	t.Helper()
	scorer, err := riskuc.NewScorer(riskuc.DefaultTables())
	if err != nil {
		t.Fatalf("NewScorer error: %v", err)
	}
	s, err := NewServer(ret, scorer, opts...)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	return s
}

func callTool(t *testing.T, s *Server, name string, args any) *gomcp.CallToolResult {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("failed to marshal args: %v", err)
	}
	req := &gomcp.CallToolRequest{
		Params: &gomcp.CallToolParamsRaw{
			Name:      name,
			Arguments: argsJSON,
		},
	}

	ctx := context.Background()
	var res *gomcp.CallToolResult
	switch name {
	case "retrieve_knowledge":
		res, err = s.handleRetrieveKnowledge(ctx, req)
	case "assess_risk":
		res, err = s.handleAssessRisk(ctx, req)
	case "plan_trip":
		res, err = s.handlePlanTrip(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return res
}

func getTextContent(res *gomcp.CallToolResult) string {
	if len(res.Content) == 0 {
		return ""
	}
	if tc, ok := res.Content[0].(*gomcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

// --- Tests ---

func TestNewServer_RequiresDependencies(t *testing.T) {
	if _, err := NewServer(nil, nil); err == nil {
		t.Fatal("expected error for nil retriever")
	}
	if _, err := NewServer(&stubRetriever{}, nil); err == nil {
		t.Fatal("expected error for nil assessor")
	}
}

func TestRetrieveKnowledge(t *testing.T) {
	meta, err := document.NewMetadata("Paris", []string{"culture"}, []string{"Louvre"}, document.Source{Name: "Guide"})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := document.New("paris-1", "The Louvre is closed on Tuesdays.", meta)
	if err != nil {
		t.Fatal(err)
	}
	s := makeServer(t, &stubRetriever{results: []result.Result{result.New(doc, 0.3, 0.77, 1, 0.92)}})

	res := callTool(t, s, "retrieve_knowledge", map[string]any{
		"query":     "museums",
		"location":  "Paris",
		"interests": []string{"culture"},
	})
	if res.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(res))
	}

	var resp api.RetrieveResponse
	if err := json.Unmarshal([]byte(getTextContent(res)), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ID != "paris-1" {
		t.Errorf("unexpected items: %+v", resp.Items)
	}
	if !strings.Contains(resp.Summary, "Louvre") {
		t.Errorf("summary = %q", resp.Summary)
	}
}

func TestRetrieveKnowledge_Errors(t *testing.T) {
	s := makeServer(t, &stubRetriever{err: fmt.Errorf("embed: %w", domain.ErrModelUnavailable)})

	res := callTool(t, s, "retrieve_knowledge", map[string]any{"query": ""})
	if !res.IsError || !strings.Contains(getTextContent(res), "query") {
		t.Errorf("empty query: %s", getTextContent(res))
	}

	res = callTool(t, s, "retrieve_knowledge", map[string]any{"query": "food"})
	if !res.IsError || !strings.Contains(getTextContent(res), "unavailable") {
		t.Errorf("model unavailable: %s", getTextContent(res))
	}
}

func TestAssessRisk(t *testing.T) {
	s := makeServer(t, &stubRetriever{})

	res := callTool(t, s, "assess_risk", map[string]any{
		"destination":   "Bangkok",
		"budget":        100,
		"duration_days": 5,
		"interests":     []string{"food", "nightlife"},
	})
	if res.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(res))
	}

	var a api.Assessment
	if err := json.Unmarshal([]byte(getTextContent(res)), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// (50 + 30 + 40) * 5 = 600 against 100.
	if a.Budget.Tier != "budget" || a.Budget.Level != "high" {
		t.Errorf("budget = %+v", a.Budget)
	}
	if len(a.HighRisks) == 0 || a.HighRisks[0] != "budget" {
		t.Errorf("high risks = %v", a.HighRisks)
	}
}

func TestAssessRisk_InvalidInput(t *testing.T) {
	s := makeServer(t, &stubRetriever{})

	res := callTool(t, s, "assess_risk", map[string]any{
		"destination":   "Rome",
		"budget":        -5,
		"duration_days": 2,
	})
	if !res.IsError {
		t.Fatal("expected error for negative budget")
	}
	if !strings.Contains(getTextContent(res), "invalid input") {
		t.Errorf("message = %q", getTextContent(res))
	}

	res = callTool(t, s, "assess_risk", map[string]any{
		"destination":   "Tokyo",
		"budget":        1000,
		"duration_days": 5,
		"start_date":    "2026-12-31",
		"end_date":      "2026-12-20",
		"holidays":      []map[string]string{{"name": "Christmas", "date": "2026-12-25"}},
	})
	if !res.IsError || !strings.Contains(getTextContent(res), "window") {
		t.Errorf("reversed window: %s", getTextContent(res))
	}
}

func TestPlanTrip(t *testing.T) {
	s := makeServer(t, &stubRetriever{}, WithPlanner(&stubPlanner{}))

	res := callTool(t, s, "plan_trip", map[string]any{
		"destination": "Kyoto",
		"start_date":  "2026-11-10",
		"end_date":    "2026-11-12",
		"budget":      1500,
	})
	if res.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(res))
	}

	var p api.PlanResponse
	if err := json.Unmarshal([]byte(getTextContent(res)), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != "plan-42" || p.Days != 3 || p.Gate.Decision != "needs_approval" {
		t.Errorf("plan = %+v", p)
	}
}

func TestPlanTrip_Errors(t *testing.T) {
	s := makeServer(t, &stubRetriever{}, WithPlanner(&stubPlanner{err: domain.ErrInvalidInput}))

	res := callTool(t, s, "plan_trip", map[string]any{
		"destination": "Kyoto",
		"start_date":  "2026-11-10",
		"end_date":    "2027-01-10",
		"budget":      1500,
	})
	if !res.IsError || !strings.Contains(getTextContent(res), "30 days") {
		t.Errorf("long trip: %s", getTextContent(res))
	}

	res = callTool(t, s, "plan_trip", map[string]any{
		"destination": "Kyoto",
		"start_date":  "2026-11-10",
		"end_date":    "2026-11-11",
		"budget":      1500,
	})
	if !res.IsError || !strings.Contains(getTextContent(res), "planning failed") {
		t.Errorf("planner error: %s", getTextContent(res))
	}
}
