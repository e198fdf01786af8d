package model

import "time"

// Post is a member-authored board entry grouped by category. Author is
// hydrated on every read; Tags carries the full attached tag set.
type Post struct {
	ID           string         `json:"id"`
	MemberID     string         `json:"member_id"`
	Category     string         `json:"category"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	ImageURL     *string        `json:"image_url,omitempty"`
	ViewCount    int            `json:"view_count"`
	LikeCount    int            `json:"like_count"`
	CommentCount int            `json:"comment_count"`
	Tags         []string       `json:"tags"`
	Author       *AuthorSummary `json:"author,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CreatePostParams holds the attributes for inserting a post. Tags becomes
// the post's complete tag set.
type CreatePostParams struct {
	MemberID string
	Category string
	Title    string
	Content  string
	ImageURL *string
	Tags     []string
}

// PostUpdate lists the post fields a member may change on their own post.
// Nil pointer fields are left untouched. A nil Tags keeps the existing tag
// set; a non-nil Tags replaces it.
type PostUpdate struct {
	Category *string
	Title    *string
	Content  *string
	ImageURL *string
	Tags     []string
}

// IsEmpty reports whether the update carries no changes.
func (u PostUpdate) IsEmpty() bool {
	return u.Category == nil && u.Title == nil && u.Content == nil &&
		u.ImageURL == nil && u.Tags == nil
}
