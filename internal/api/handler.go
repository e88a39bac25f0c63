package api

import (
	"log/slog"

	"github.com/starford/folio/internal/authoring"
	"github.com/starford/folio/internal/catalog"
	"github.com/starford/folio/internal/comments"
	"github.com/starford/folio/internal/views"
)

// EventSink receives change notifications raised by handlers.
type EventSink interface {
	PublishCommentEvent(kind, postSlug, id string)
}

// SiteInfo describes the blog for feeds and the sitemap.
type SiteInfo struct {
	Name        string
	URL         string
	Description string
	Language    string
}

// Deps are the services the handlers call into. Events may be nil.
type Deps struct {
	Catalog   *catalog.Catalog
	Comments  *comments.Service
	Views     views.Counter
	Authoring *authoring.Service
	Events    EventSink
	Site      SiteInfo
	Logger    *slog.Logger
}

// Handler holds API route handlers.
type Handler struct {
	catalog   *catalog.Catalog
	comments  *comments.Service
	views     views.Counter
	authoring *authoring.Service
	events    EventSink
	site      SiteInfo
	logger    *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		catalog:   d.Catalog,
		comments:  d.Comments,
		views:     d.Views,
		authoring: d.Authoring,
		events:    d.Events,
		site:      d.Site,
		logger:    logger,
	}
}

func (h *Handler) publishComment(kind, postSlug, id string) {
	if h.events != nil {
		h.events.PublishCommentEvent(kind, postSlug, id)
	}
}
