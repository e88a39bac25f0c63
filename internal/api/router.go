package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AdminAuth configures protection of the /admin routes.
type AdminAuth struct {
	Enabled bool
	Token   string
}

// NewRouter creates a chi router with all API routes mounted, to be served
// under /api. sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(h *Handler, admin AdminAuth, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	// Catalog.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)
	r.Get("/posts/{slug}/related", h.RelatedPosts)
	r.Get("/posts/{slug}/adjacent", h.AdjacentPosts)
	r.Get("/tags", h.ListTags)
	r.Get("/tags/{tag}", h.PostsByTag)
	r.Get("/archive", h.Archive)

	// Comments. Mutations are authorised per comment by password.
	r.Get("/comments", h.ListComments)
	r.Post("/comments", h.CreateComment)
	r.Put("/comments", h.UpdateComment)
	r.Delete("/comments", h.DeleteComment)

	// View counters.
	r.Get("/views/{slug}", h.GetViews)
	r.Post("/views/{slug}", h.IncrementViews)

	// Authoring.
	r.Route("/admin", func(r chi.Router) {
		r.Use(AuthMiddleware(admin.Enabled, admin.Token))
		r.Get("/posts", h.AdminListPosts)
		r.Post("/posts", h.AdminCreatePost)
		r.Get("/posts/{slug}", h.AdminGetPost)
		r.Put("/posts/{slug}", h.AdminUpdatePost)
		r.Delete("/posts/{slug}", h.AdminDeletePost)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// NewSiteRouter serves the documents consumed by feed readers and crawlers.
func NewSiteRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/feed.xml", h.Feed)
	r.Get("/sitemap.xml", h.Sitemap)
	return r
}
