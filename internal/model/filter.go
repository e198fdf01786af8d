package model

// DefaultPageLimit applies when a search is issued without an explicit limit.
const DefaultPageLimit = 50

// Page is limit/offset pagination. A zero Limit falls back to
// DefaultPageLimit; a negative Offset is treated as zero.
type Page struct {
	Limit  int
	Offset int
}

// Normalize returns the effective limit and offset.
func (p Page) Normalize() (limit, offset int) {
	limit = p.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	offset = p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// SearchResult is the uniform shape returned by every search: one page of
// items plus the total match count ignoring pagination.
type SearchResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// MemberFilter selects members. Keyword matches nickname or email,
// case-insensitive. WITHDRAWN members are excluded unless IncludeInactive.
type MemberFilter struct {
	Keyword         string
	IncludeInactive bool
	Page            Page
}

// PlaceFilter selects places. Keyword matches name, detail or accessibility
// notes. Results order alphabetically by name.
type PlaceFilter struct {
	Keyword         string
	Region          string
	RecommendedOnly bool
	Page            Page
}

// ReviewFilter selects reviews. Keyword matches location or comment. Tags
// uses exact-coverage semantics: a review matches only if it carries every
// requested tag. All supplied filters combine with AND.
type ReviewFilter struct {
	Keyword   string
	MemberID  string
	PlaceID   string
	MinRating *int
	Tags      []string
	Page      Page
}

// PostFilter selects posts. Keyword matches title or content. Tags uses
// exact-coverage semantics, as with reviews.
type PostFilter struct {
	Keyword  string
	Category string
	MemberID string
	Tags     []string
	Page     Page
}
