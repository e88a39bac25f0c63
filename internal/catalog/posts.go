package catalog

import (
	"sort"
	"strings"

	"github.com/starford/folio/internal/models"
)

// DefaultRelatedLimit applies when Related is called with a non-positive limit.
const DefaultRelatedLimit = 3

// Posts is a catalog snapshot sorted by date, newest first.
type Posts []models.PostMetadata

// YearGroup holds the posts published in one calendar year. Year is 0 for
// posts whose date could not be parsed.
type YearGroup struct {
	Year  int                   `json:"year"`
	Posts []models.PostMetadata `json:"posts"`
}

// Neighbors are the posts on either side of a post in catalog order.
type Neighbors struct {
	Prev *models.PostMetadata `json:"prev"` // older
	Next *models.PostMetadata `json:"next"` // newer
}

// sortByDate orders posts newest first, preserving input order on ties.
func sortByDate(posts []models.PostMetadata) {
	sort.SliceStable(posts, func(i, j int) bool {
		return newer(posts[i].Date, posts[j].Date)
	})
}

func (ps Posts) index(slug string) int {
	for i, p := range ps {
		if p.Slug == slug {
			return i
		}
	}
	return -1
}

// Find returns the post with slug.
func (ps Posts) Find(slug string) (models.PostMetadata, bool) {
	if i := ps.index(slug); i >= 0 {
		return ps[i], true
	}
	return models.PostMetadata{}, false
}

// Tags returns every distinct tag in first-seen order.
func (ps Posts) Tags() []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range ps {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

// ByTag returns the posts carrying tag.
func (ps Posts) ByTag(tag string) Posts {
	out := Posts{}
	for _, p := range ps {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// Search returns posts whose title contains query, ignoring case.
func (ps Posts) Search(query string) Posts {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append(Posts{}, ps...)
	}
	out := Posts{}
	for _, p := range ps {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	return out
}

// Related ranks other posts by the number of distinct tags they share with
// slug. Posts sharing none are excluded; ties keep catalog order.
func (ps Posts) Related(slug string, limit int) Posts {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	target, ok := ps.Find(slug)
	if !ok {
		return Posts{}
	}
	want := make(map[string]struct{}, len(target.Tags))
	for _, t := range target.Tags {
		want[t] = struct{}{}
	}

	type scored struct {
		post  models.PostMetadata
		score int
	}
	var candidates []scored
	for _, p := range ps {
		if p.Slug == slug {
			continue
		}
		score := 0
		counted := make(map[string]struct{}, len(p.Tags))
		for _, t := range p.Tags {
			if _, dup := counted[t]; dup {
				continue
			}
			counted[t] = struct{}{}
			if _, hit := want[t]; hit {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{post: p, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := Posts{}
	for i := 0; i < len(candidates) && i < limit; i++ {
		out = append(out, candidates[i].post)
	}
	return out
}

// Adjacent returns the newer and older neighbours of slug.
func (ps Posts) Adjacent(slug string) Neighbors {
	i := ps.index(slug)
	if i < 0 {
		return Neighbors{}
	}
	var n Neighbors
	if i+1 < len(ps) {
		prev := ps[i+1]
		n.Prev = &prev
	}
	if i > 0 {
		next := ps[i-1]
		n.Next = &next
	}
	return n
}

// ByYear groups posts by year, in the order each year is first seen.
func (ps Posts) ByYear() []YearGroup {
	groups := []YearGroup{}
	pos := make(map[int]int)
	for _, p := range ps {
		y := Year(p.Date)
		i, ok := pos[y]
		if !ok {
			i = len(groups)
			pos[y] = i
			groups = append(groups, YearGroup{Year: y})
		}
		groups[i].Posts = append(groups[i].Posts, p)
	}
	return groups
}
