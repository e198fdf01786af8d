package model

import "time"

// TargetType discriminates which entity kind a wishlist row points to.
type TargetType string

// Recognized wishlist target types.
const (
	TargetReview TargetType = "REVIEW"
	TargetPost   TargetType = "POST"
	TargetPlace  TargetType = "PLACE"
)

// Valid reports whether t is one of the recognized target types.
func (t TargetType) Valid() bool {
	switch t {
	case TargetReview, TargetPost, TargetPlace:
		return true
	}
	return false
}

// Wishlist marks a member's saved target. Exactly one of Review, Post or
// Place is populated on hydrated reads, matching TargetType. The triple
// (MemberID, TargetType, TargetID) is unique per member.
type Wishlist struct {
	ID         string     `json:"id"`
	MemberID   string     `json:"member_id"`
	TargetType TargetType `json:"target_type"`
	TargetID   string     `json:"target_id"`
	Review     *Review    `json:"review,omitempty"`
	Post       *Post      `json:"post,omitempty"`
	Place      *Place     `json:"place,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
