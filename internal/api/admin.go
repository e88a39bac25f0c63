package api

import (
	"log/slog"
	"net/http"
	"strconv"
)

func setETag(w http.ResponseWriter, checksum string) {
	w.Header().Set("ETag", strconv.Quote(checksum))
}

// AdminListPosts handles GET /api/admin/posts.
//
//	@Summary		List stored documents with checksums
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	AdminPostListResponse
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/posts [get]
func (h *Handler) AdminListPosts(w http.ResponseWriter, r *http.Request) {
	entries, err := h.authoring.List(r.Context())
	if err != nil {
		h.writeError(w, "admin list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, AdminPostListResponse{Posts: entries})
}

// AdminGetPost handles GET /api/admin/posts/{slug}.
//
//	@Summary		Get a document's raw source
//	@Tags			admin
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	AdminPost
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/posts/{slug} [get]
func (h *Handler) AdminGetPost(w http.ResponseWriter, r *http.Request) {
	slug := pathParam(r, "slug")
	doc, err := h.authoring.Get(r.Context(), slug)
	if err != nil {
		h.writeError(w, "admin get post", err, slog.String("slug", slug))
		return
	}
	setETag(w, doc.Checksum)
	writeJSON(w, http.StatusOK, doc)
}

// AdminCreatePost handles POST /api/admin/posts.
//
//	@Summary		Create a document
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreatePostRequest	true	"Slug and source"
//	@Success		201		{object}	AdminPost
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/posts [post]
func (h *Handler) AdminCreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}
	doc, err := h.authoring.Create(r.Context(), req.Slug, []byte(req.Content))
	if err != nil {
		h.writeError(w, "admin create post", err, slog.String("slug", req.Slug))
		return
	}
	setETag(w, doc.Checksum)
	writeJSON(w, http.StatusCreated, doc)
}

// AdminUpdatePost handles PUT /api/admin/posts/{slug}.
//
//	@Summary		Replace a document with optimistic concurrency
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			slug		path		string				true	"Post slug"
//	@Param			If-Match	header		string				false	"SHA-256 checksum of the current source"
//	@Param			body		body		UpdatePostRequest	true	"New source"
//	@Success		200			{object}	AdminPost
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/posts/{slug} [put]
func (h *Handler) AdminUpdatePost(w http.ResponseWriter, r *http.Request) {
	slug := pathParam(r, "slug")
	var req UpdatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}
	doc, err := h.authoring.Update(r.Context(), slug, []byte(req.Content), r.Header.Get("If-Match"))
	if err != nil {
		h.writeError(w, "admin update post", err, slog.String("slug", slug))
		return
	}
	setETag(w, doc.Checksum)
	writeJSON(w, http.StatusOK, doc)
}

// AdminDeletePost handles DELETE /api/admin/posts/{slug}.
//
//	@Summary		Delete a document
//	@Tags			admin
//	@Param			slug	path	string	true	"Post slug"
//	@Success		204		"Post deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/posts/{slug} [delete]
func (h *Handler) AdminDeletePost(w http.ResponseWriter, r *http.Request) {
	slug := pathParam(r, "slug")
	if err := h.authoring.Delete(r.Context(), slug); err != nil {
		h.writeError(w, "admin delete post", err, slog.String("slug", slug))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
