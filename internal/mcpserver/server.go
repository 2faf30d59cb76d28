// Package mcpserver exposes the card actions as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/alnah/go-md2card/internal/cards"
)

// Tool names.
const (
	ToolSetActiveNote = "set_active_note"
	ToolCopyCard      = "copy_active_card"
	ToolExportCard    = "export_active_card"
	ToolRenderAll     = "render_all_cards"
	ToolNumberCards   = "number_cards"
	ToolPreviewCard   = "preview_card"
)

// commandFor maps the command tools to card commands.
var commandFor = map[string]string{
	ToolCopyCard:    cards.CommandCopy,
	ToolExportCard:  cards.CommandExport,
	ToolRenderAll:   cards.CommandRenderAll,
	ToolNumberCards: cards.CommandNumber,
}

// Server wraps the MCP server with the card tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *cards.Service
	tracker *cards.Tracker
}

// New creates an MCP server with every card tool registered.
func New(svc *cards.Service, tracker *cards.Tracker, version string) *Server {
	s := &Server{svc: svc, tracker: tracker}

	s.mcp = server.NewMCPServer(
		"md2card",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool(ToolSetActiveNote,
		mcp.WithDescription("Set the note the card tools act on."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path of the note (e.g. Cards/hero.md)")),
	), s.setActiveNote)

	s.mcp.AddTool(mcp.NewTool(ToolCopyCard,
		mcp.WithDescription("Render the active note as a card and copy the PNG to the clipboard."),
	), s.runCommand(ToolCopyCard))

	s.mcp.AddTool(mcp.NewTool(ToolExportCard,
		mcp.WithDescription("Render the active note as a card, save the PNG in the attachment folder "+
			"and link it from the note's frontmatter."),
	), s.runCommand(ToolExportCard))

	s.mcp.AddTool(mcp.NewTool(ToolRenderAll,
		mcp.WithDescription("Export a card for every note carrying the card tag. "+
			"Failures are reported per note and do not stop the batch."),
	), s.runCommand(ToolRenderAll))

	s.mcp.AddTool(mcp.NewTool(ToolNumberCards,
		mcp.WithDescription("Give every tagged note without a number the next free number, "+
			"in alphabetical path order."),
	), s.runCommand(ToolNumberCards))

	s.mcp.AddTool(mcp.NewTool(ToolPreviewCard,
		mcp.WithDescription("Render a note as a card image without saving it."),
		mcp.WithString("path", mcp.Description("Vault-relative note path (defaults to the active note)")),
	), s.previewCard)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) setActiveNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.tracker.SetActive(p)
	return jsonResult(s.tracker.Context())
}

func (s *Server) runCommand(tool string) server.ToolHandlerFunc {
	name := commandFor[tool]
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := s.svc.Run(ctx, name, s.tracker.Context(), nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(res)
	}
}

func (s *Server) previewCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := req.GetString("path", "")
	if p == "" {
		ac := s.tracker.Context()
		p = ac.Fallback
	}
	if p == "" {
		return mcp.NewToolResultError(cards.ErrNoActiveDocument.Error()), nil
	}

	res, err := s.svc.Preview(ctx, p, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultImage("card for "+p, base64.StdEncoding.EncodeToString(res.PNG), "image/png"), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
