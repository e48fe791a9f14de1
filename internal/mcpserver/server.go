// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the tree portfolio and species knowledge base for LLM
// integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pattarin/treebank/internal/models"
	"github.com/pattarin/treebank/internal/treeservice"
)

// Server wraps the MCP server with Tree Bank tools.
type Server struct {
	mcp *server.MCPServer
	svc *treeservice.Service
}

// New creates a new MCP server with all Tree Bank tools registered.
func New(svc *treeservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Tree Bank",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_trees",
		mcp.WithDescription("List all trees in the portfolio with their health scores and environmental values."),
	), s.listTrees)

	s.mcp.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Read a single portfolio tree, including its care log history."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Numeric tree id (1-based)")),
	), s.getTree)

	s.mcp.AddTool(mcp.NewTool("add_care_log",
		mcp.WithDescription("Append a care activity (watering, pruning, fertilizing...) to a tree. "+
			"Bumps the tree's last checkup date."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Numeric tree id")),
		mcp.WithString("activity", mcp.Required(), mcp.Description("Short activity label, e.g. 'watering'")),
		mcp.WithString("notes", mcp.Description("Optional free-text notes")),
	), s.addCareLog)

	s.mcp.AddTool(mcp.NewTool("portfolio_stats",
		mcp.WithDescription("Aggregate portfolio statistics: tree count, total value, average health, carbon total."),
	), s.portfolioStats)

	s.mcp.AddTool(mcp.NewTool("lookup_species",
		mcp.WithDescription("Resolve a species name against the knowledge base. Always returns a record; "+
			"unknown names get a generic baseline profile."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Common or scientific species name")),
	), s.lookupSpecies)

	s.mcp.AddTool(mcp.NewTool("add_species",
		mcp.WithDescription("Add or replace a species record in the knowledge base. "+
			"Content MUST follow the species record contract; read it first via the "+
			"get_species_contract tool or the treebank://species-format resource."),
		mcp.WithString("record", mcp.Required(), mcp.Description("JSON object following the species record contract")),
	), s.addSpecies)

	s.mcp.AddTool(mcp.NewTool("get_species_contract",
		mcp.WithDescription("Returns the canonical species record contract. "+
			"Call this before adding or updating species records."),
	), s.getSpeciesContract)

	// Resource: species record contract.
	s.mcp.AddResource(
		mcp.NewResource("treebank://species-format", "Species Record Contract",
			mcp.WithResourceDescription("Canonical knowledge-base record format that all species entries must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSpeciesFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listTrees(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trees := s.svc.Trees(ctx)
	if len(trees) == 0 {
		return mcp.NewToolResultText("the portfolio is empty"), nil
	}
	out, _ := json.MarshalIndent(trees, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, ok := s.svc.Tree(ctx, id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no tree with id %d", id)), nil
	}
	out, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addCareLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	activity, err := req.RequireString("activity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes := ""
	if n, err := req.RequireString("notes"); err == nil {
		notes = n
	}

	rec, err := s.svc.AddCareLog(ctx, id, activity, notes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("logged %q for %s (%d entries)", activity, rec.DisplayID, len(rec.CareLogs))), nil
}

func (s *Server) portfolioStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.Statistics(ctx), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) lookupSpecies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec := s.svc.ResolveSpecies(ctx, name)
	out, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addSpecies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("record")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rec models.SpeciesRecord
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("record does not match the species contract: %v", err)), nil
	}

	if err := s.svc.AddSpecies(ctx, rec); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("stored species record: %s", rec.Name)), nil
}

func (s *Server) getSpeciesContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SpeciesFormatContract), nil
}

func (s *Server) readSpeciesFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "treebank://species-format",
			MIMEType: "text/markdown",
			Text:     SpeciesFormatContract,
		},
	}, nil
}
