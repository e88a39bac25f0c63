package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starford/folio/internal/catalog"
	"github.com/starford/folio/internal/content"
)

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts, newest first
//	@Tags			posts
//	@Produce		json
//	@Param			tag	query		string	false	"Only posts carrying this tag"
//	@Param			q	query		string	false	"Case-insensitive title substring"
//	@Success		200	{object}	PostListResponse
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.catalog.All(r.Context())
	if err != nil {
		h.writeError(w, "list posts", err)
		return
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		ps = ps.ByTag(tag)
	}
	if q := r.URL.Query().Get("q"); strings.TrimSpace(q) != "" {
		ps = ps.Search(q)
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: ps, Total: len(ps)})
}

// GetPost handles GET /api/posts/{slug}.
//
//	@Summary		Get a post with rendered HTML, related posts and neighbours
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	PostDetail
//	@Failure		404		{object}	errResponse
//	@Router			/posts/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := h.catalog.Deriver().SlugOf(pathParam(r, "slug"))
	ps, err := h.catalog.All(r.Context())
	if err != nil {
		h.writeError(w, "get post", err, slog.String("slug", slug))
		return
	}
	meta, ok := ps.Find(slug)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("post not found"))
		return
	}
	body, ok, err := h.catalog.Deriver().Body(r.Context(), slug)
	if err != nil {
		h.writeError(w, "get post", err, slog.String("slug", slug))
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("post not found"))
		return
	}
	adj := ps.Adjacent(slug)
	writeJSON(w, http.StatusOK, PostDetail{
		PostMetadata: meta,
		HTML:         string(content.RenderHTML(body)),
		Related:      ps.Related(slug, catalog.DefaultRelatedLimit),
		Prev:         adj.Prev,
		Next:         adj.Next,
	})
}

// RelatedPosts handles GET /api/posts/{slug}/related.
//
//	@Summary		Posts sharing tags with a post
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Param			limit	query		int		false	"Maximum results (default 3)"
//	@Success		200		{object}	PostListResponse
//	@Router			/posts/{slug}/related [get]
func (h *Handler) RelatedPosts(w http.ResponseWriter, r *http.Request) {
	slug := pathParam(r, "slug")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ps, err := h.catalog.Related(r.Context(), slug, limit)
	if err != nil {
		h.writeError(w, "related posts", err, slog.String("slug", slug))
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: ps, Total: len(ps)})
}

// AdjacentPosts handles GET /api/posts/{slug}/adjacent.
//
//	@Summary		Older and newer neighbours of a post
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	catalog.Neighbors
//	@Router			/posts/{slug}/adjacent [get]
func (h *Handler) AdjacentPosts(w http.ResponseWriter, r *http.Request) {
	slug := pathParam(r, "slug")
	n, err := h.catalog.Adjacent(r.Context(), slug)
	if err != nil {
		h.writeError(w, "adjacent posts", err, slog.String("slug", slug))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// ListTags handles GET /api/tags.
//
//	@Summary		All distinct tags
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.Tags(r.Context())
	if err != nil {
		h.writeError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// PostsByTag handles GET /api/tags/{tag}.
//
//	@Summary		Posts carrying a tag
//	@Tags			tags
//	@Produce		json
//	@Param			tag	path		string	true	"Tag (exact, case-sensitive)"
//	@Success		200	{object}	TagPostsResponse
//	@Router			/tags/{tag} [get]
func (h *Handler) PostsByTag(w http.ResponseWriter, r *http.Request) {
	tag := pathParam(r, "tag")
	ps, err := h.catalog.ByTag(r.Context(), tag)
	if err != nil {
		h.writeError(w, "posts by tag", err, slog.String("tag", tag))
		return
	}
	writeJSON(w, http.StatusOK, TagPostsResponse{Tag: tag, Posts: ps})
}

// Archive handles GET /api/archive.
//
//	@Summary		Posts grouped by year
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	ArchiveResponse
//	@Router			/archive [get]
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.ByYear(r.Context())
	if err != nil {
		h.writeError(w, "archive", err)
		return
	}
	writeJSON(w, http.StatusOK, ArchiveResponse{Years: groups})
}
