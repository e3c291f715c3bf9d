// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the clawmarks operations to LLM agents via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/clawmarks/internal/markservice"
	"github.com/starford/clawmarks/internal/models"
)

// Server wraps the MCP server with clawmarks tools.
type Server struct {
	mcp *server.MCPServer
	svc *markservice.Service
}

// New creates a new MCP server with all clawmarks tools registered.
func New(svc *markservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Clawmarks",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_trail",
		mcp.WithDescription("Create a named trail grouping related marks into one thread of exploration."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name for the trail")),
		mcp.WithString("description", mcp.Description("Optional longer description")),
	), s.createTrail)

	s.mcp.AddTool(mcp.NewTool("list_trails",
		mcp.WithDescription("List all trails in creation order, optionally filtered by status."),
		mcp.WithString("status", mcp.Description("Filter by status"), mcp.Enum(models.TrailStatusActive, models.TrailStatusArchived)),
	), s.listTrails)

	s.mcp.AddTool(mcp.NewTool("get_trail",
		mcp.WithDescription("Get a trail together with every mark that belongs to it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Trail id (t_...)")),
	), s.getTrail)

	s.mcp.AddTool(mcp.NewTool("archive_trail",
		mcp.WithDescription("Archive a trail. One-way and idempotent; archived trails keep their marks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Trail id (t_...)")),
	), s.archiveTrail)

	s.mcp.AddTool(mcp.NewTool("delete_trail",
		mcp.WithDescription("Delete a trail and every mark on it. Permanent; other marks' references to the removed marks are not pruned."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Trail id (t_...)")),
	), s.deleteTrail)

	s.mcp.AddTool(mcp.NewTool("add_mark",
		mcp.WithDescription("Attach an annotated mark to a source location on an existing trail. "+
			"Read the clawmarks://mark-guide resource (or the get_mark_guide tool) for conventions "+
			"on types, tags, and annotations."),
		mcp.WithString("trail_id", mcp.Required(), mcp.Description("Trail the mark belongs to")),
		mcp.WithString("file", mcp.Required(), mcp.Description("Relative file path")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-indexed line number")),
		mcp.WithNumber("column", mcp.Description("Optional column number")),
		mcp.WithString("annotation", mcp.Required(), mcp.Description("Free text explaining why this location matters")),
		mcp.WithString("type", mcp.Description("Semantic mark type; defaults to reference"), mcp.Enum(models.MarkTypes...)),
		mcp.WithArray("tags", mcp.Description("Tags; a leading # is added when missing")),
	), s.addMark)

	s.mcp.AddTool(mcp.NewTool("get_mark",
		mcp.WithDescription("Get a single mark by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Mark id (m_...)")),
	), s.getMark)

	s.mcp.AddTool(mcp.NewTool("update_mark",
		mcp.WithDescription("Partially update a mark; omitted fields are left untouched."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Mark id (m_...)")),
		mcp.WithString("annotation", mcp.Description("New annotation text")),
		mcp.WithString("type", mcp.Description("New mark type"), mcp.Enum(models.MarkTypes...)),
		mcp.WithArray("tags", mcp.Description("Replacement tag list")),
		mcp.WithNumber("line", mcp.Description("New line number")),
		mcp.WithNumber("column", mcp.Description("New column number")),
	), s.updateMark)

	s.mcp.AddTool(mcp.NewTool("delete_mark",
		mcp.WithDescription("Delete a mark and prune its id from every other mark's references."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Mark id (m_...)")),
	), s.deleteMark)

	s.mcp.AddTool(mcp.NewTool("list_marks",
		mcp.WithDescription("List marks matching the conjunction of the given filters, in creation order."),
		mcp.WithString("trail_id", mcp.Description("Filter by trail")),
		mcp.WithString("file", mcp.Description("Filter by file path")),
		mcp.WithString("type", mcp.Description("Filter by mark type"), mcp.Enum(models.MarkTypes...)),
		mcp.WithString("tag", mcp.Description("Filter by tag membership")),
	), s.listMarks)

	s.mcp.AddTool(mcp.NewTool("link_marks",
		mcp.WithDescription("Add a directed reference from one mark to another. Returns linked=false when "+
			"either mark is missing or the edge already exists."),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("Mark the edge starts from")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Mark the edge points to")),
	), s.linkMarks)

	s.mcp.AddTool(mcp.NewTool("unlink_marks",
		mcp.WithDescription("Remove a directed reference between two marks."),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("Mark the edge starts from")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Mark the edge points to")),
	), s.unlinkMarks)

	s.mcp.AddTool(mcp.NewTool("get_references",
		mcp.WithDescription("Get the marks a mark points at (outgoing) and the marks pointing back (incoming)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Mark id (m_...)")),
	), s.getReferences)

	s.mcp.AddTool(mcp.NewTool("add_tag",
		mcp.WithDescription("Attach a tag to a mark; a leading # is added when missing."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Mark id (m_...)")),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to attach")),
	), s.addTag)

	s.mcp.AddTool(mcp.NewTool("remove_tag",
		mcp.WithDescription("Detach a tag from a mark."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Mark id (m_...)")),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to detach")),
	), s.removeTag)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag across all marks, sorted and deduplicated."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("search_marks",
		mcp.WithDescription("Substring search over mark annotations, file paths, and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchMarks)

	s.mcp.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Store diagnostics: project root, backing file, schema version, entity counts."),
	), s.getStatus)

	s.mcp.AddTool(mcp.NewTool("reload",
		mcp.WithDescription("Discard the cached document and re-read the backing file, picking up external edits."),
	), s.reload)

	s.mcp.AddTool(mcp.NewTool("get_mark_guide",
		mcp.WithDescription("Returns the clawmarks usage guide: mark types, tag and annotation conventions."),
	), s.getMarkGuide)

	// Resource: usage guide.
	s.mcp.AddResource(
		mcp.NewResource("clawmarks://mark-guide", "Mark Guide",
			mcp.WithResourceDescription("Conventions for trails, marks, types, tags, and references."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMarkGuideResource,
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

// jsonResult pretty-prints v as the tool result text.
func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) createTrail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	trail, err := s.svc.CreateTrail(ctx, name, req.GetString("description", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(trail), nil
}

func (s *Server) listTrails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trails, err := s.svc.ListTrails(ctx, req.GetString("status", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(trails), nil
}

func (s *Server) getTrail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetTrail(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail), nil
}

func (s *Server) archiveTrail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	trail, err := s.svc.ArchiveTrail(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(trail), nil
}

func (s *Server) deleteTrail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	deleted, err := s.svc.DeleteTrail(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]bool{"deleted": deleted}), nil
}

func (s *Server) addMark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params markservice.AddMarkParams
	if err := req.BindArguments(&params); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := params.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mark, err := s.svc.AddMark(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(mark), nil
}

func (s *Server) getMark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mark, err := s.svc.GetMark(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(mark), nil
}

func (s *Server) updateMark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var upd markservice.MarkUpdate
	if err := req.BindArguments(&upd); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := upd.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mark, err := s.svc.UpdateMark(ctx, id, upd)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(mark), nil
}

func (s *Server) deleteMark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	deleted, err := s.svc.DeleteMark(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]bool{"deleted": deleted}), nil
}

func (s *Server) listMarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	marks, err := s.svc.ListMarks(ctx, markservice.MarkFilter{
		TrailID: req.GetString("trail_id", ""),
		File:    req.GetString("file", ""),
		Type:    req.GetString("type", ""),
		Tag:     req.GetString("tag", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(marks), nil
}

func (s *Server) linkMarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := req.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetID, err := req.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	linked, err := s.svc.LinkMarks(ctx, sourceID, targetID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]bool{"linked": linked}), nil
}

func (s *Server) unlinkMarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := req.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetID, err := req.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	unlinked, err := s.svc.UnlinkMarks(ctx, sourceID, targetID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]bool{"unlinked": unlinked}), nil
}

func (s *Server) getReferences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refs, err := s.svc.GetReferences(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(refs), nil
}

func (s *Server) addTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	added, err := s.svc.AddTag(ctx, id, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]bool{"added": added}), nil
}

func (s *Server) removeTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	removed, err := s.svc.RemoveTag(ctx, id, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]bool{"removed": removed}), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.ListTags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags), nil
}

func (s *Server) searchMarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.SearchMarks(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) reload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.svc.Reload(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) getMarkGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MarkGuide), nil
}

func (s *Server) readMarkGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "clawmarks://mark-guide",
			MIMEType: "text/markdown",
			Text:     MarkGuide,
		},
	}, nil
}
