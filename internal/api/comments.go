package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/folio/internal/comments"
)

// ListComments handles GET /api/comments.
//
//	@Summary		Comments on a post, oldest first
//	@Tags			comments
//	@Produce		json
//	@Param			postSlug	query		string	true	"Post slug"
//	@Param			tree		query		bool	false	"Return a reply forest instead of a flat list"
//	@Success		200			{object}	CommentListResponse
//	@Failure		400			{object}	errResponse
//	@Router			/comments [get]
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	postSlug := strings.TrimSpace(q.Get("postSlug"))
	if postSlug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("postSlug is required"))
		return
	}

	if tree := q.Get("tree"); tree == "1" || tree == "true" {
		forest, err := h.comments.Tree(r.Context(), postSlug)
		if err != nil {
			h.writeError(w, "list comments", err, slog.String("post_slug", postSlug))
			return
		}
		writeJSON(w, http.StatusOK, CommentListResponse{Comments: forest})
		return
	}

	list, err := h.comments.List(r.Context(), postSlug)
	if err != nil {
		h.writeError(w, "list comments", err, slog.String("post_slug", postSlug))
		return
	}
	writeJSON(w, http.StatusOK, CommentListResponse{Comments: list})
}

// CreateComment handles POST /api/comments.
//
//	@Summary		Post a comment or reply
//	@Tags			comments
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateCommentRequest	true	"Comment to create"
//	@Success		201		{object}	CommentResponse
//	@Failure		400		{object}	errResponse
//	@Router			/comments [post]
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	req.normalize()
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	c, err := h.comments.Create(r.Context(), comments.CreateInput{
		PostSlug: req.PostSlug,
		Author:   req.Author,
		Content:  req.Content,
		Password: req.Password,
		ParentID: req.ParentID,
	})
	if err != nil {
		h.writeError(w, "create comment", err, slog.String("post_slug", req.PostSlug))
		return
	}
	h.publishComment("created", c.PostSlug, c.ID)
	writeJSON(w, http.StatusCreated, CommentResponse{Comment: c})
}

// UpdateComment handles PUT /api/comments.
//
//	@Summary		Edit a comment's content
//	@Tags			comments
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UpdateCommentRequest	true	"New content and the comment password"
//	@Success		200		{object}	CommentResponse
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/comments [put]
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req UpdateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	req.normalize()
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	c, err := h.comments.Update(r.Context(), req.PostSlug, req.CommentID, req.Content, req.Password)
	if err != nil {
		h.writeError(w, "update comment", err,
			slog.String("post_slug", req.PostSlug), slog.String("comment_id", req.CommentID))
		return
	}
	h.publishComment("updated", c.PostSlug, c.ID)
	writeJSON(w, http.StatusOK, CommentResponse{Comment: c})
}

// DeleteComment handles DELETE /api/comments.
//
//	@Summary		Delete a comment
//	@Tags			comments
//	@Accept			json
//	@Param			body	body	DeleteCommentRequest	true	"Comment reference and password"
//	@Success		204		"Comment deleted"
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/comments [delete]
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	var req DeleteCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	if err := h.comments.Delete(r.Context(), req.PostSlug, req.CommentID, req.Password); err != nil {
		h.writeError(w, "delete comment", err,
			slog.String("post_slug", req.PostSlug), slog.String("comment_id", req.CommentID))
		return
	}
	h.publishComment("deleted", req.PostSlug, req.CommentID)
	w.WriteHeader(http.StatusNoContent)
}
