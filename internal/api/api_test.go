package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/folio/internal/authoring"
	"github.com/starford/folio/internal/catalog"
	"github.com/starford/folio/internal/comments"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/testutil"
	"github.com/starford/folio/internal/views"
)

var fixtures = map[string]string{
	"hello-world.mdx": "---\ntitle: Hello World\ndate: 2025-12-01\ntags: [nextjs, react]\n---\n# Title\n\nThis is the body text.",
	"second-post.mdx": "---\ntitle: Second Post\ndate: 2025-12-03\ntags: [typescript, react]\n---\nSecond body.",
	"third-post.mdx":  "---\ntitle: Third Post\ndate: 2025-12-05\ntags: [nextjs, typescript, 리액트]\n---\nThird body.",
}

type recordedEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordedEvents) PublishCommentEvent(kind, postSlug, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+postSlug+":"+id)
}

func (r *recordedEvents) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type testEnv struct {
	router http.Handler
	site   http.Handler
	dir    string
	events *recordedEvents
}

// newTestEnv seeds a temp content dir and wires every handler dependency.
// A non-empty adminToken enables token mode on the admin routes.
func newTestEnv(t *testing.T, adminToken string) *testEnv {
	t.Helper()
	dir, store := testutil.TestContent(t, fixtures)

	events := &recordedEvents{}
	h := NewHandler(Deps{
		Catalog:   catalog.New(store, nil),
		Comments:  comments.NewService(comments.NewMemoryStore(), comments.NewBcryptHasher(bcrypt.MinCost)),
		Views:     views.NewMemory(),
		Authoring: authoring.NewService(store),
		Events:    events,
		Site:      SiteInfo{Name: "Test Blog", URL: "https://blog.example/", Description: "Notes", Language: "ko"},
	})
	return &testEnv{
		router: NewRouter(h, AdminAuth{Enabled: adminToken != "", Token: adminToken}, nil),
		site:   NewSiteRouter(h),
		dir:    dir,
		events: events,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func slugsOf(ps []models.PostMetadata) string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = p.Slug
	}
	return strings.Join(s, ",")
}

func TestListPosts(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodGet, "/posts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[PostListResponse](t, w)
	if got := slugsOf(resp.Posts); got != "third-post,second-post,hello-world" || resp.Total != 3 {
		t.Errorf("posts = %s total = %d", got, resp.Total)
	}

	resp = decode[PostListResponse](t, env.do(t, http.MethodGet, "/posts?tag=react", nil))
	if got := slugsOf(resp.Posts); got != "second-post,hello-world" {
		t.Errorf("tag filter = %s", got)
	}

	resp = decode[PostListResponse](t, env.do(t, http.MethodGet, "/posts?q=hello", nil))
	if got := slugsOf(resp.Posts); got != "hello-world" {
		t.Errorf("search = %s", got)
	}
}

func TestGetPost(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodGet, "/posts/second-post", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	detail := decode[PostDetail](t, w)
	if detail.Title != "Second Post" || !strings.Contains(detail.HTML, "<p>Second body.</p>") {
		t.Errorf("detail = %+v", detail)
	}
	if detail.Prev == nil || detail.Prev.Slug != "hello-world" {
		t.Errorf("prev = %+v", detail.Prev)
	}
	if detail.Next == nil || detail.Next.Slug != "third-post" {
		t.Errorf("next = %+v", detail.Next)
	}
	if got := slugsOf(detail.Related); got != "third-post,hello-world" {
		t.Errorf("related = %s", got)
	}
}

func TestGetPost_Excerpt(t *testing.T) {
	env := newTestEnv(t, "")
	detail := decode[PostDetail](t, env.do(t, http.MethodGet, "/posts/hello-world", nil))
	if detail.Excerpt != "Title This is the body text." {
		t.Errorf("excerpt = %q", detail.Excerpt)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	env := newTestEnv(t, "")
	if w := env.do(t, http.MethodGet, "/posts/ghost", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing post = %d, want 404", w.Code)
	}
}

func TestRelatedAndAdjacent(t *testing.T) {
	env := newTestEnv(t, "")

	resp := decode[PostListResponse](t, env.do(t, http.MethodGet, "/posts/hello-world/related?limit=1", nil))
	if got := slugsOf(resp.Posts); got != "third-post" {
		t.Errorf("related = %s", got)
	}

	n := decode[catalog.Neighbors](t, env.do(t, http.MethodGet, "/posts/third-post/adjacent", nil))
	if n.Next != nil || n.Prev == nil || n.Prev.Slug != "second-post" {
		t.Errorf("adjacent = %+v", n)
	}
}

func TestTagsAndArchive(t *testing.T) {
	env := newTestEnv(t, "")

	tags := decode[TagListResponse](t, env.do(t, http.MethodGet, "/tags", nil))
	if strings.Join(tags.Tags, ",") != "nextjs,typescript,리액트,react" {
		t.Errorf("tags = %v", tags.Tags)
	}

	byTag := decode[TagPostsResponse](t, env.do(t, http.MethodGet, "/tags/%EB%A6%AC%EC%95%A1%ED%8A%B8", nil))
	if byTag.Tag != "리액트" || slugsOf(byTag.Posts) != "third-post" {
		t.Errorf("by tag = %+v", byTag)
	}

	archive := decode[ArchiveResponse](t, env.do(t, http.MethodGet, "/archive", nil))
	if len(archive.Years) != 1 || archive.Years[0].Year != 2025 || len(archive.Years[0].Posts) != 3 {
		t.Errorf("archive = %+v", archive)
	}
}

func TestPostsByTag_DecodesOnce(t *testing.T) {
	env := newTestEnv(t, "")
	byTag := decode[TagPostsResponse](t, env.do(t, http.MethodGet, "/tags/%2541", nil))
	if byTag.Tag != "%41" || len(byTag.Posts) != 0 {
		t.Errorf("by tag = %+v, want tag %%41 with no posts", byTag)
	}
}

func createComment(t *testing.T, env *testEnv, body map[string]string) models.Comment {
	t.Helper()
	w := env.do(t, http.MethodPost, "/comments", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create comment = %d body = %s", w.Code, w.Body.String())
	}
	return decode[CommentResponse](t, w).Comment
}

func TestCommentLifecycle(t *testing.T) {
	env := newTestEnv(t, "")

	c := createComment(t, env, map[string]string{
		"postSlug": "hello-world", "author": "  kim  ", "content": "first!", "password": "abcd",
	})
	if c.Author != "kim" || c.ID == "" {
		t.Errorf("comment = %+v", c)
	}
	if strings.Contains(env.do(t, http.MethodGet, "/comments?postSlug=hello-world", nil).Body.String(), "$2a$") {
		t.Error("password hash leaked in listing")
	}

	w := env.do(t, http.MethodPut, "/comments", map[string]string{
		"postSlug": "hello-world", "commentId": c.ID, "content": "hijack", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password update = %d, want 401", w.Code)
	}

	w = env.do(t, http.MethodPut, "/comments", map[string]string{
		"postSlug": "hello-world", "commentId": c.ID, "content": "edited", "password": "abcd",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d body = %s", w.Code, w.Body.String())
	}
	if updated := decode[CommentResponse](t, w).Comment; updated.Content != "edited" || updated.UpdatedAt == nil {
		t.Errorf("updated = %+v", updated)
	}

	w = env.do(t, http.MethodDelete, "/comments", map[string]string{
		"postSlug": "hello-world", "commentId": c.ID, "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password delete = %d, want 401", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/comments", map[string]string{
		"postSlug": "hello-world", "commentId": c.ID, "password": "abcd",
	})
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/comments", map[string]string{
		"postSlug": "hello-world", "commentId": c.ID, "password": "abcd",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}

	got := strings.Join(env.events.list(), " ")
	want := "created:hello-world:" + c.ID + " updated:hello-world:" + c.ID + " deleted:hello-world:" + c.ID
	if got != want {
		t.Errorf("events = %q, want %q", got, want)
	}
}

func TestCreateComment_Validation(t *testing.T) {
	env := newTestEnv(t, "")
	cases := map[string]map[string]string{
		"missing slug":   {"author": "kim", "content": "x", "password": "abcd"},
		"blank author":   {"postSlug": "p", "author": "   ", "content": "x", "password": "abcd"},
		"long author":    {"postSlug": "p", "author": strings.Repeat("가", 51), "content": "x", "password": "abcd"},
		"long content":   {"postSlug": "p", "author": "kim", "content": strings.Repeat("a", 2001), "password": "abcd"},
		"short password": {"postSlug": "p", "author": "kim", "content": "x", "password": "abc"},
		"long password":  {"postSlug": "p", "author": "kim", "content": "x", "password": strings.Repeat("p", 21)},
	}
	for name, body := range cases {
		w := env.do(t, http.MethodPost, "/comments", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}

	if w := env.do(t, http.MethodPost, "/comments", "{not json"); w.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", w.Code)
	}

	w := env.do(t, http.MethodPost, "/comments", map[string]string{"postSlug": "p", "author": "kim", "content": "x"})
	resp := decode[errResponse](t, w)
	if resp.Fields["password"] == "" {
		t.Errorf("expected password field error, got %+v", resp)
	}

	long := map[string]string{"postSlug": "p", "author": strings.Repeat("가", 50), "content": "x", "password": "abcd"}
	if w := env.do(t, http.MethodPost, "/comments", long); w.Code != http.StatusCreated {
		t.Errorf("50-char author = %d, want 201", w.Code)
	}
}

func TestCommentTree(t *testing.T) {
	env := newTestEnv(t, "")
	root := createComment(t, env, map[string]string{
		"postSlug": "p", "author": "a", "content": "root", "password": "abcd",
	})
	createComment(t, env, map[string]string{
		"postSlug": "p", "author": "b", "content": "reply", "password": "abcd", "parentId": root.ID,
	})

	w := env.do(t, http.MethodPost, "/comments", map[string]string{
		"postSlug": "other", "author": "b", "content": "stray", "password": "abcd", "parentId": root.ID,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("cross-post reply = %d, want 400", w.Code)
	}

	tree := decode[CommentTreeResponse](t, env.do(t, http.MethodGet, "/comments?postSlug=p&tree=1", nil))
	if len(tree.Comments) != 1 || len(tree.Comments[0].Replies) != 1 {
		t.Fatalf("tree = %+v", tree)
	}
	if tree.Comments[0].Replies[0].Content != "reply" {
		t.Errorf("reply = %+v", tree.Comments[0].Replies[0])
	}

	flat := decode[struct {
		Comments []models.Comment `json:"comments"`
	}](t, env.do(t, http.MethodGet, "/comments?postSlug=p", nil))
	if len(flat.Comments) != 2 {
		t.Errorf("flat = %d comments, want 2", len(flat.Comments))
	}
}

func TestListComments_RequiresSlug(t *testing.T) {
	env := newTestEnv(t, "")
	if w := env.do(t, http.MethodGet, "/comments", nil); w.Code != http.StatusBadRequest {
		t.Errorf("no slug = %d, want 400", w.Code)
	}
}

func TestViews(t *testing.T) {
	env := newTestEnv(t, "")

	v := decode[ViewsResponse](t, env.do(t, http.MethodGet, "/views/hello-world", nil))
	if v.Views != 0 {
		t.Errorf("initial views = %d", v.Views)
	}
	env.do(t, http.MethodPost, "/views/hello-world", nil)
	v = decode[ViewsResponse](t, env.do(t, http.MethodPost, "/views/hello-world", nil))
	if v.Slug != "hello-world" || v.Views != 2 {
		t.Errorf("views = %+v", v)
	}
}

func TestAdmin_CreateUpdateDelete(t *testing.T) {
	env := newTestEnv(t, "")
	src := "---\ntitle: Fresh\ndate: 2026-01-01\n---\nNew post."

	w := env.do(t, http.MethodPost, "/admin/posts", map[string]string{"slug": "fresh", "content": src})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d body = %s", w.Code, w.Body.String())
	}
	doc := decode[AdminPost](t, w)
	if w.Header().Get("ETag") != `"`+doc.Checksum+`"` {
		t.Errorf("etag = %q", w.Header().Get("ETag"))
	}

	list := decode[PostListResponse](t, env.do(t, http.MethodGet, "/posts", nil))
	if !strings.HasPrefix(slugsOf(list.Posts), "fresh,") {
		t.Errorf("catalog did not pick up new post: %s", slugsOf(list.Posts))
	}

	if w := env.do(t, http.MethodPost, "/admin/posts", map[string]string{"slug": "fresh", "content": src}); w.Code != http.StatusConflict {
		t.Errorf("duplicate = %d, want 409", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/admin/posts", map[string]string{"slug": "Bad Slug", "content": src}); w.Code != http.StatusBadRequest {
		t.Errorf("bad slug = %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodPut, "/admin/posts/fresh", map[string]string{"content": "edited"}, "If-Match", `"stale"`)
	if w.Code != http.StatusConflict {
		t.Errorf("stale update = %d, want 409", w.Code)
	}
	w = env.do(t, http.MethodPut, "/admin/posts/fresh", map[string]string{"content": "edited"}, "If-Match", `"`+doc.Checksum+`"`)
	if w.Code != http.StatusOK {
		t.Errorf("update = %d body = %s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodPut, "/admin/posts/ghost", map[string]string{"content": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}

	got := decode[AdminPost](t, env.do(t, http.MethodGet, "/admin/posts/fresh", nil))
	if got.Content != "edited" {
		t.Errorf("content = %q", got.Content)
	}

	if w := env.do(t, http.MethodDelete, "/admin/posts/fresh", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/admin/posts/fresh", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestAdmin_List(t *testing.T) {
	env := newTestEnv(t, "")
	resp := decode[AdminPostListResponse](t, env.do(t, http.MethodGet, "/admin/posts", nil))
	if len(resp.Posts) != 3 || resp.Posts[0].Name != "hello-world.mdx" || resp.Posts[0].Checksum == "" {
		t.Errorf("admin list = %+v", resp.Posts)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	env := newTestEnv(t, "secret123")
	w := env.do(t, http.MethodGet, "/admin/posts", nil, "Authorization", "Bearer secret123")
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	env := newTestEnv(t, "secret123")
	w := env.do(t, http.MethodGet, "/admin/posts", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	env := newTestEnv(t, "secret123")
	w := env.do(t, http.MethodDelete, "/admin/posts/hello-world", nil, "Authorization", "Bearer wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "hello-world.mdx")); err != nil {
		t.Errorf("post removed despite bad token: %v", err)
	}
}

func TestAuthMiddleware_PublicRoutesOpen(t *testing.T) {
	env := newTestEnv(t, "secret123")
	if w := env.do(t, http.MethodGet, "/posts", nil); w.Code != http.StatusOK {
		t.Errorf("public list with admin token mode = %d, want 200", w.Code)
	}
}

func TestFeed(t *testing.T) {
	env := newTestEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/feed.xml", nil)
	w := httptest.NewRecorder()
	env.site.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("feed = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`<rss version="2.0"`,
		"<title>Test Blog</title>",
		"<link>https://blog.example/posts/third-post</link>",
		"<category>react</category>",
		"<pubDate>Fri, 05 Dec 2025 00:00:00 +0000</pubDate>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("feed missing %q", want)
		}
	}
	if strings.Index(body, "third-post") > strings.Index(body, "hello-world") {
		t.Error("feed items not newest first")
	}
}

func TestSitemap(t *testing.T) {
	env := newTestEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	w := httptest.NewRecorder()
	env.site.ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "<loc>https://blog.example/posts/hello-world</loc>") {
		t.Errorf("sitemap missing post url: %s", body)
	}
	if !strings.Contains(body, "<lastmod>2025-12-01</lastmod>") {
		t.Errorf("sitemap missing lastmod")
	}
}

func TestSSEEvents_Mounted(t *testing.T) {
	dir := t.TempDir()
	store, _ := storage.NewFS(dir, ".mdx")
	h := NewHandler(Deps{Catalog: catalog.New(store, nil)})
	called := false
	sse := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	router := NewRouter(h, AdminAuth{Enabled: true, Token: "tok"}, sse)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if !called || w.Code != http.StatusOK {
		t.Errorf("events handler not reachable without admin token: called=%v code=%d", called, w.Code)
	}
}
