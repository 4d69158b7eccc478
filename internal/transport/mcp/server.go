// Package mcp exposes knowledge retrieval, risk scoring and trip planning
// as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"errors"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/domain/risk"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/request"
	"github.com/kailas-cloud/wayfarer/internal/domain/search/result"
	"github.com/kailas-cloud/wayfarer/internal/domain/trip"
	planneruc "github.com/kailas-cloud/wayfarer/internal/usecase/planner"
	riskuc "github.com/kailas-cloud/wayfarer/internal/usecase/risk"
	"github.com/kailas-cloud/wayfarer/internal/version"
)

// Retriever answers knowledge queries.
type Retriever interface {
	NewRequest(query, location string, interests []string, topK int) (request.Request, error)
	Retrieve(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// Assessor scores trip risk.
type Assessor interface {
	Assess(in riskuc.AssessInput) (risk.Assessment, error)
}

// Planner runs the trip planning pipeline.
type Planner interface {
	Plan(ctx context.Context, t trip.Trip) (*planneruc.Plan, error)
}

// Server wraps the MCP server with the wayfarer services.
type Server struct {
	mcp       *gomcp.Server
	retriever Retriever
	assessor  Assessor
	planner   Planner
	logger    *zap.Logger
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithPlanner enables the plan_trip tool.
func WithPlanner(p Planner) ServerOption {
	return func(s *Server) {
		s.planner = p
	}
}

// WithLogger sets the logger. MCP speaks over stdout, so the logger must write elsewhere.
func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates an MCP server with knowledge and risk tools.
func NewServer(retriever Retriever, assessor Assessor, opts ...ServerOption) (*Server, error) {
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if assessor == nil {
		return nil, errors.New("assessor is required")
	}

	s := &Server{
		mcp: gomcp.NewServer(
			&gomcp.Implementation{
				Name:    "wayfarer",
				Version: version.Version,
			},
			nil,
		),
		retriever: retriever,
		assessor:  assessor,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerKnowledgeTools()
	s.registerRiskTools()
	if s.planner != nil {
		s.registerPlanTools()
	}

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
