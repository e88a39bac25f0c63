// Package models defines the domain types shared by the catalog, comment, and API layers.
package models

import "time"

// PostMetadata is the derived, queryable record for one content document.
// It is recomputed from storage on every catalog build and never mutated in place.
type PostMetadata struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	Excerpt     string   `json:"excerpt"`
	ReadingTime int      `json:"readingTime"` // minutes
	WordCount   int      `json:"wordCount"`   // characters after markup stripping
}

// HasTag reports whether the post carries tag (exact, case-sensitive).
func (p PostMetadata) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DocumentInfo is a lightweight listing entry for a stored document.
type DocumentInfo struct {
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Checksum   string    `json:"checksum"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
