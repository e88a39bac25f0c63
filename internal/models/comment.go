package models

import "time"

// Comment is the externally visible shape of a comment. It never carries the
// password hash; that lives only on the persisted record.
type Comment struct {
	ID        string     `json:"id"`
	PostSlug  string     `json:"postSlug"`
	Author    string     `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	ParentID  string     `json:"parentId,omitempty"`
}
