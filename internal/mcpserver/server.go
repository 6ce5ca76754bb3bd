// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only taxonomy tools for LLM integration via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/taxonomy/internal/apperr"
	"github.com/starford/taxonomy/internal/codec"
	"github.com/starford/taxonomy/internal/taxonservice"
)

// DocumentFormatURI is the resource URI of the document format description.
const DocumentFormatURI = "taxonomy://document-format"

// Server wraps the MCP server with taxonomy tools.
type Server struct {
	mcp *server.MCPServer
	svc *taxonservice.Service
}

// New creates a new MCP server with all taxonomy tools registered.
func New(svc *taxonservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Taxonomy",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_taxonomy",
		mcp.WithDescription("Export the whole stored taxonomy as a path-keyed document. "+
			"Read the format via get_document_format or the "+DocumentFormatURI+" resource."),
		mcp.WithString("format", mcp.Description("Document format: toml (default), json or yaml")),
	), s.getTaxonomy)

	s.mcp.AddTool(mcp.NewTool("lookup_entry",
		mcp.WithDescription("Look up one entry by identifier and return its full path, parent, title, synonyms and children."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Kebab-case entry identifier (e.g. web-design)")),
	), s.lookupEntry)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List the full path of every stored entry, one per line."),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("validate_document",
		mcp.WithDescription("Check that a document would convert cleanly without storing it. "+
			"Returns the entry count and any advisory warnings."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Document text")),
		mcp.WithString("format", mcp.Description("Document format: toml (default), json or yaml")),
	), s.validateDocument)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the description of the editable taxonomy document format."),
	), s.getDocumentFormat)

	s.mcp.AddResource(
		mcp.NewResource(DocumentFormatURI, "Taxonomy Document Format",
			mcp.WithResourceDescription("Path-keyed document format used to edit the taxonomy."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// Serve runs the MCP protocol over in and out until ctx is cancelled or
// in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func formatArg(req mcp.CallToolRequest) (codec.Format, error) {
	raw, err := req.RequireString("format")
	if err != nil || raw == "" {
		return codec.FormatTOML, nil
	}
	return codec.ParseFormat(raw)
}

func (s *Server) getTaxonomy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, err := formatArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := s.svc.Load(ctx, &buf, f); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) lookupEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Lookup(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode entry: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.svc.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(m) == 0 {
		return mcp.NewToolResultText("no entries stored"), nil
	}
	paths := make([]string, 0, len(m))
	for _, p := range m.Paths() {
		paths = append(paths, p.String())
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) validateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := formatArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Check(ctx, strings.NewReader(content), f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ok: %d entries", res.Entries)
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "\nwarning (%s): %s", w.Kind, w.Message)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getDocumentFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormat), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DocumentFormatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}
