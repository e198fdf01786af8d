package model

import "time"

// Role constants for members.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Member status constants. Deleting a member never removes the row; it
// transitions status from ACTIVE to WITHDRAWN.
const (
	StatusActive    = "ACTIVE"
	StatusWithdrawn = "WITHDRAWN"
)

// Member represents a registered account. PasswordHash is the stored
// credential material and is never serialized.
type Member struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthorSummary is the slice of a member joined onto reviews, posts and
// wishlist targets: enough to render an author line, nothing more.
type AuthorSummary struct {
	Nickname     string  `json:"nickname"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// CreateMemberParams holds the attributes for member signup. Password is the
// plaintext credential; the repository hashes it before storage.
type CreateMemberParams struct {
	Email        string
	Password     string
	Nickname     string
	ProfileImage *string
	Role         string
}

// MemberUpdate lists the member fields that may change after signup.
// Nil fields are left untouched.
type MemberUpdate struct {
	Nickname     *string
	ProfileImage *string
}

// IsEmpty reports whether the update carries no changes.
func (u MemberUpdate) IsEmpty() bool {
	return u.Nickname == nil && u.ProfileImage == nil
}
