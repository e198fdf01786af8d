package model

import "time"

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a member's rated write-up of a location, optionally linked to a
// place. Author and Place are hydrated on every read; Tags carries the full
// attached tag set.
type Review struct {
	ID         string         `json:"id"`
	MemberID   string         `json:"member_id"`
	PlaceID    *string        `json:"place_id,omitempty"`
	Location   string         `json:"location"`
	Rating     int            `json:"rating"`
	Comment    string         `json:"comment"`
	ImageURL   *string        `json:"image_url,omitempty"`
	LikeCount  int            `json:"like_count"`
	ReplyCount int            `json:"reply_count"`
	Tags       []string       `json:"tags"`
	Author     *AuthorSummary `json:"author,omitempty"`
	Place      *PlaceSummary  `json:"place,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CreateReviewParams holds the attributes for inserting a review. Tags
// becomes the review's complete tag set.
type CreateReviewParams struct {
	MemberID string
	PlaceID  *string
	Location string
	Rating   int
	Comment  string
	ImageURL *string
	Tags     []string
}

// ReviewUpdate lists the review fields a member may change on their own
// review. Nil pointer fields are left untouched. A nil Tags keeps the
// existing tag set; a non-nil Tags (including an empty one) replaces it.
type ReviewUpdate struct {
	Location *string
	Rating   *int
	Comment  *string
	ImageURL *string
	Tags     []string
}

// IsEmpty reports whether the update carries no changes.
func (u ReviewUpdate) IsEmpty() bool {
	return u.Location == nil && u.Rating == nil && u.Comment == nil &&
		u.ImageURL == nil && u.Tags == nil
}
