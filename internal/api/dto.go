package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/authoring"
	"github.com/starford/folio/internal/catalog"
	"github.com/starford/folio/internal/comments"
	"github.com/starford/folio/internal/models"
)

// Comment field limits, in characters.
const (
	maxAuthorLen   = 50
	maxContentLen  = 2000
	minPasswordLen = 4
	maxPasswordLen = 20
)

// CreateCommentRequest is the request body for POST /api/comments.
type CreateCommentRequest struct {
	PostSlug string `json:"postSlug" example:"hello-world" validate:"required"`
	Author   string `json:"author" example:"kim" validate:"required"`
	Content  string `json:"content" example:"Nice post!" validate:"required"`
	Password string `json:"password" example:"abcd" validate:"required"`
	ParentID string `json:"parentId,omitempty" example:"01JEXAMPLE0000000000000000"`
}

func (r *CreateCommentRequest) normalize() {
	r.PostSlug = strings.TrimSpace(r.PostSlug)
	r.Author = strings.TrimSpace(r.Author)
	r.Content = strings.TrimSpace(r.Content)
	r.ParentID = strings.TrimSpace(r.ParentID)
}

// Validate checks field presence and lengths.
func (r CreateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostSlug, validation.Required),
		validation.Field(&r.Author, validation.Required, validation.RuneLength(1, maxAuthorLen)),
		validation.Field(&r.Content, validation.Required, validation.RuneLength(1, maxContentLen)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(minPasswordLen, maxPasswordLen)),
	)
}

// UpdateCommentRequest is the request body for PUT /api/comments.
type UpdateCommentRequest struct {
	PostSlug  string `json:"postSlug" example:"hello-world" validate:"required"`
	CommentID string `json:"commentId" example:"01JEXAMPLE0000000000000000" validate:"required"`
	Content   string `json:"content" example:"Edited." validate:"required"`
	Password  string `json:"password" example:"abcd" validate:"required"`
}

func (r *UpdateCommentRequest) normalize() {
	r.PostSlug = strings.TrimSpace(r.PostSlug)
	r.CommentID = strings.TrimSpace(r.CommentID)
	r.Content = strings.TrimSpace(r.Content)
}

// Validate checks field presence and lengths.
func (r UpdateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostSlug, validation.Required),
		validation.Field(&r.CommentID, validation.Required),
		validation.Field(&r.Content, validation.Required, validation.RuneLength(1, maxContentLen)),
		validation.Field(&r.Password, validation.Required),
	)
}

// DeleteCommentRequest is the request body for DELETE /api/comments.
type DeleteCommentRequest struct {
	PostSlug  string `json:"postSlug" example:"hello-world" validate:"required"`
	CommentID string `json:"commentId" example:"01JEXAMPLE0000000000000000" validate:"required"`
	Password  string `json:"password" example:"abcd" validate:"required"`
}

// Validate checks field presence.
func (r DeleteCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostSlug, validation.Required),
		validation.Field(&r.CommentID, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// CreatePostRequest is the request body for POST /api/admin/posts.
type CreatePostRequest struct {
	Slug    string `json:"slug" example:"hello-world" validate:"required"`
	Content string `json:"content" example:"---\ntitle: Hello\n---\nBody" validate:"required"`
}

// Validate checks field presence.
func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Slug, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

// UpdatePostRequest is the request body for PUT /api/admin/posts/{slug}.
type UpdatePostRequest struct {
	Content string `json:"content" example:"---\ntitle: Hello\n---\nEdited" validate:"required"`
}

// Validate checks field presence.
func (r UpdatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// PostListResponse wraps catalog listings.
type PostListResponse struct {
	Posts []models.PostMetadata `json:"posts" validate:"required"`
	Total int                   `json:"total" example:"12" validate:"required"`
}

// PostDetail is a post with its rendered body and navigation.
type PostDetail struct {
	models.PostMetadata
	HTML    string                `json:"html" validate:"required"`
	Related []models.PostMetadata `json:"related" validate:"required"`
	Prev    *models.PostMetadata  `json:"prev"`
	Next    *models.PostMetadata  `json:"next"`
}

// TagListResponse wraps the tag list.
type TagListResponse struct {
	Tags []string `json:"tags" validate:"required"`
}

// TagPostsResponse lists the posts carrying one tag.
type TagPostsResponse struct {
	Tag   string                `json:"tag" example:"react" validate:"required"`
	Posts []models.PostMetadata `json:"posts" validate:"required"`
}

// ArchiveResponse groups posts by year.
type ArchiveResponse struct {
	Years []catalog.YearGroup `json:"years" validate:"required"`
}

// CommentListResponse holds either a flat list or a reply forest.
type CommentListResponse struct {
	Comments any `json:"comments" validate:"required"`
}

// CommentTreeResponse is the tree=1 variant, for documentation.
type CommentTreeResponse struct {
	Comments []*comments.Node `json:"comments" validate:"required"`
}

// CommentResponse wraps a single comment.
type CommentResponse struct {
	Comment models.Comment `json:"comment" validate:"required"`
}

// ViewsResponse reports a post's view count.
type ViewsResponse struct {
	Slug  string `json:"slug" example:"hello-world" validate:"required"`
	Views int64  `json:"views" example:"42" validate:"required"`
}

// AdminPostListResponse lists stored documents for the admin UI.
type AdminPostListResponse struct {
	Posts []authoring.Entry `json:"posts" validate:"required"`
}

// AdminPost is the raw document returned by the admin endpoints.
type AdminPost = authoring.Document
