package api

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/folio/internal/catalog"
)

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Self          atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate,omitempty"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

func (h *Handler) baseURL() string {
	return strings.TrimRight(h.site.URL, "/")
}

func (h *Handler) postURL(slug string) string {
	return h.baseURL() + "/posts/" + url.PathEscape(slug)
}

func writeXML(w http.ResponseWriter, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	_ = enc.Encode(v)
}

// Feed handles GET /feed.xml with an RSS 2.0 document over every post.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	ps, err := h.catalog.All(r.Context())
	if err != nil {
		h.writeError(w, "feed", err)
		return
	}

	items := make([]rssItem, 0, len(ps))
	for _, p := range ps {
		link := h.postURL(p.Slug)
		desc := p.Excerpt
		if desc == "" {
			desc = p.Title + " - " + strings.Join(p.Tags, ", ")
		}
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Description: desc,
			Categories:  p.Tags,
		}
		if t, ok := catalog.ParseDate(p.Date); ok {
			item.PubDate = t.UTC().Format(time.RFC1123Z)
		}
		items = append(items, item)
	}

	writeXML(w, "application/rss+xml; charset=utf-8", rssDoc{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         h.site.Name,
			Link:          h.baseURL(),
			Description:   h.site.Description,
			Language:      h.site.Language,
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
			Self: atomLink{
				Href: h.baseURL() + "/feed.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: items,
		},
	})
}

// Sitemap handles GET /sitemap.xml listing the index, tag pages and posts.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	ps, err := h.catalog.All(r.Context())
	if err != nil {
		h.writeError(w, "sitemap", err)
		return
	}
	base := h.baseURL()
	urls := []sitemapURL{
		{Loc: base, ChangeFreq: "daily", Priority: 1},
		{Loc: base + "/tags", ChangeFreq: "weekly", Priority: 0.6},
		{Loc: base + "/search", ChangeFreq: "monthly", Priority: 0.4},
	}
	for _, p := range ps {
		u := sitemapURL{Loc: h.postURL(p.Slug), ChangeFreq: "monthly", Priority: 0.8}
		if t, ok := catalog.ParseDate(p.Date); ok {
			u.LastMod = t.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	for _, tag := range ps.Tags() {
		urls = append(urls, sitemapURL{Loc: base + "/tags/" + url.PathEscape(tag), ChangeFreq: "weekly", Priority: 0.5})
	}
	writeXML(w, "application/xml; charset=utf-8", sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}
