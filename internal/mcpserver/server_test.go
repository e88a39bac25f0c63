package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/folio/internal/authoring"
	"github.com/starford/folio/internal/catalog"
	"github.com/starford/folio/internal/comments"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/testutil"
)

func testServer(t *testing.T) (*Server, *storage.FS, *comments.Service) {
	t.Helper()
	_, store := testutil.TestContent(t, map[string]string{
		"hello-world.mdx": testutil.PostSource("Hello World", "2025-12-01", []string{"nextjs", "react"}, "# Hello"),
		"second-post.mdx": testutil.PostSource("Second Post", "2025-12-03", []string{"typescript", "react"}, "Second."),
		"third-post.mdx":  testutil.PostSource("Third Post", "2024-06-05", []string{"nextjs", "typescript"}, "Third."),
	})
	cmts := comments.NewService(comments.NewMemoryStore(), comments.NewBcryptHasher(bcrypt.MinCost))
	srv := New(catalog.New(store, nil), authoring.NewService(store), cmts)
	return srv, store, cmts
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper, so dispatch to the handlers.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_posts":
		result, err = srv.listPosts(ctx, req)
	case "read_post":
		result, err = srv.readPost(ctx, req)
	case "search_posts":
		result, err = srv.searchPosts(ctx, req)
	case "related_posts":
		result, err = srv.relatedPosts(ctx, req)
	case "list_tags":
		result, err = srv.listTags(ctx, req)
	case "archive":
		result, err = srv.archive(ctx, req)
	case "create_post":
		result, err = srv.createPost(ctx, req)
	case "list_comments":
		result, err = srv.listComments(ctx, req)
	case "get_post_format":
		result, err = srv.getPostFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func slugs(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var posts []models.PostMetadata
	if err := json.Unmarshal([]byte(resultText(r)), &posts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return strings.Join(out, ",")
}

func TestListPosts(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "list_posts", map[string]interface{}{})
	if got := slugs(t, r); got != "second-post,hello-world,third-post" {
		t.Errorf("list_posts = %s", got)
	}

	r = callTool(t, srv, "list_posts", map[string]interface{}{"tag": "nextjs"})
	if got := slugs(t, r); got != "hello-world,third-post" {
		t.Errorf("list_posts tag=nextjs = %s", got)
	}
}

func TestCreateAndReadPost(t *testing.T) {
	srv, _, _ := testServer(t)
	source := testutil.PostSource("New", "2026-01-01", []string{"go"}, "Body")

	r := callTool(t, srv, "create_post", map[string]interface{}{
		"slug":    "new-post",
		"content": source,
	})
	if text := resultText(r); text != "created: new-post" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_post", map[string]interface{}{"slug": "new-post"})
	if text := resultText(r); text != source {
		t.Errorf("read result = %q", text)
	}

	r = callTool(t, srv, "create_post", map[string]interface{}{
		"slug":    "new-post",
		"content": source,
	})
	if !r.IsError {
		t.Error("expected error for duplicate post")
	}
}

func TestCreatePost_InvalidSlug(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "create_post", map[string]interface{}{
		"slug":    "../escape",
		"content": "x",
	})
	if !r.IsError || !strings.Contains(resultText(r), "invalid slug") {
		t.Errorf("result = %q, want invalid slug error", resultText(r))
	}
}

func TestReadPostMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_post", map[string]interface{}{"slug": "nope"})
	if !r.IsError {
		t.Error("expected error for missing post")
	}
}

func TestReadPostRequiresSlug(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_post", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error when slug is missing")
	}
}

func TestSearchPosts(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "search_posts", map[string]interface{}{"query": "POST"})
	if got := slugs(t, r); got != "second-post,third-post" {
		t.Errorf("search = %s", got)
	}
}

func TestRelatedPosts(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "related_posts", map[string]interface{}{"slug": "hello-world"})
	if got := slugs(t, r); got != "second-post,third-post" {
		t.Errorf("related = %s", got)
	}

	r = callTool(t, srv, "related_posts", map[string]interface{}{"slug": "hello-world", "limit": 1})
	if got := slugs(t, r); got != "second-post" {
		t.Errorf("related limit=1 = %s", got)
	}
}

func TestListTags(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "list_tags", map[string]interface{}{})
	if text := resultText(r); text != "typescript\nreact\nnextjs" {
		t.Errorf("tags = %q", text)
	}
}

func TestListTags_Empty(t *testing.T) {
	_, store := testutil.TestContent(t, nil)
	srv := New(catalog.New(store, nil), authoring.NewService(store), nil)
	r := callTool(t, srv, "list_tags", map[string]interface{}{})
	if text := resultText(r); text != "no tags found" {
		t.Errorf("tags = %q", text)
	}
}

func TestArchive(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "archive", map[string]interface{}{})
	var groups []catalog.YearGroup
	if err := json.Unmarshal([]byte(resultText(r)), &groups); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(groups) != 2 || groups[0].Year != 2025 || groups[1].Year != 2024 {
		t.Fatalf("groups = %+v", groups)
	}
	if len(groups[0].Posts) != 2 {
		t.Errorf("2025 posts = %d, want 2", len(groups[0].Posts))
	}
}

func TestListComments(t *testing.T) {
	srv, _, cmts := testServer(t)
	root, err := cmts.Create(context.Background(), comments.CreateInput{
		PostSlug: "hello-world", Author: "kim", Content: "first", Password: "pw",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cmts.Create(context.Background(), comments.CreateInput{
		PostSlug: "hello-world", Author: "lee", Content: "reply", Password: "pw", ParentID: root.ID,
	}); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_comments", map[string]interface{}{"postSlug": "hello-world"})
	var forest []*comments.Node
	if err := json.Unmarshal([]byte(resultText(r)), &forest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(forest) != 1 || len(forest[0].Replies) != 1 {
		t.Fatalf("forest = %+v", forest)
	}
	if strings.Contains(resultText(r), "password") {
		t.Error("comment tree leaked a password field")
	}
}

func TestGetPostFormat(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_post_format", map[string]interface{}{})
	if text := resultText(r); !strings.Contains(text, "Post Format Contract") {
		t.Errorf("format = %q", text)
	}
}

func TestReadPostFormatResource(t *testing.T) {
	srv, _, _ := testServer(t)
	contents, err := srv.readPostFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != formatURI || tc.Text != PostFormatContract {
		t.Errorf("resource = %+v", contents[0])
	}
}
