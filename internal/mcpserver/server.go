// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the post catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/authoring"
	"github.com/starford/folio/internal/catalog"
	"github.com/starford/folio/internal/comments"
)

const formatURI = "folio://post-format"

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp       *server.MCPServer
	catalog   *catalog.Catalog
	authoring *authoring.Service
	comments  *comments.Service
}

// New creates an MCP server with every tool registered. comments may be nil,
// in which case list_comments is not offered.
func New(cat *catalog.Catalog, auth *authoring.Service, cmts *comments.Service) *Server {
	s := &Server{catalog: cat, authoring: auth, comments: cmts}

	s.mcp = server.NewMCPServer(
		"Folio",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List published posts, newest first, as JSON metadata."),
		mcp.WithString("tag", mcp.Description("Only posts carrying this exact tag")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read the full source of a post, front matter included."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug (file name without extension)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Find posts whose title contains the query, ignoring case."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Title substring")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("related_posts",
		mcp.WithDescription("Posts sharing the most tags with the given post."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug")),
		mcp.WithNumber("limit", mcp.Description("Maximum results, default 3")),
	), s.relatedPosts)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("All distinct tags in first-seen order."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("archive",
		mcp.WithDescription("Posts grouped by publication year."),
	), s.archive)

	s.mcp.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Create a new post. Content MUST follow the post format "+
			"returned by get_post_format or the "+formatURI+" resource."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Lowercase letters, digits and hyphens")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Post source with YAML front matter")),
	), s.createPost)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the post format contract. Call this before creating posts."),
	), s.getPostFormat)

	if cmts != nil {
		s.mcp.AddTool(mcp.NewTool("list_comments",
			mcp.WithDescription("Reader comments on a post as a reply tree."),
			mcp.WithString("postSlug", mcp.Required(), mcp.Description("Post slug")),
		), s.listComments)
	}

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Post Format Contract",
			mcp.WithResourceDescription("Front matter and body conventions for posts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ps, err := s.catalog.All(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if tag := req.GetString("tag", ""); tag != "" {
		ps = ps.ByTag(tag)
	}
	return jsonResult(ps)
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.authoring.Get(ctx, s.catalog.Deriver().SlugOf(slug))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidSlug) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ps, err := s.catalog.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ps)
}

func (s *Server) relatedPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ps, err := s.catalog.Related(ctx, slug, req.GetInt("limit", catalog.DefaultRelatedLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ps)
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.catalog.Tags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags found"), nil
	}
	return mcp.NewToolResultText(strings.Join(tags, "\n")), nil
}

func (s *Server) archive(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := s.catalog.ByYear(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(groups)
}

func (s *Server) createPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.authoring.Create(ctx, slug, []byte(content)); err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			return mcp.NewToolResultError(fmt.Sprintf("post already exists: %s", slug)), nil
		case errors.Is(err, apperr.ErrInvalidSlug):
			return mcp.NewToolResultError(fmt.Sprintf("invalid slug: %s", slug)), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", slug)), nil
}

func (s *Server) listComments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	postSlug, err := req.RequireString("postSlug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	forest, err := s.comments.Tree(ctx, postSlug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(forest)
}

func (s *Server) getPostFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
