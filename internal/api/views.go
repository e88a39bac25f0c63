package api

import (
	"log/slog"
	"net/http"
)

// GetViews handles GET /api/views/{slug}.
//
//	@Summary		Read a post's view count
//	@Tags			views
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	ViewsResponse
//	@Router			/views/{slug} [get]
func (h *Handler) GetViews(w http.ResponseWriter, r *http.Request) {
	slug := pathParam(r, "slug")
	n, err := h.views.Get(r.Context(), slug)
	if err != nil {
		h.writeError(w, "get views", err, slog.String("slug", slug))
		return
	}
	writeJSON(w, http.StatusOK, ViewsResponse{Slug: slug, Views: n})
}

// IncrementViews handles POST /api/views/{slug}.
//
//	@Summary		Count one view of a post
//	@Tags			views
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	ViewsResponse
//	@Router			/views/{slug} [post]
func (h *Handler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	slug := pathParam(r, "slug")
	n, err := h.views.Increment(r.Context(), slug)
	if err != nil {
		h.writeError(w, "increment views", err, slog.String("slug", slug))
		return
	}
	writeJSON(w, http.StatusOK, ViewsResponse{Slug: slug, Views: n})
}
