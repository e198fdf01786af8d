package repository

import (
	"context"

	"github.com/forgo/travelog/api/internal/model"
)

// Store bundles the five entity repositories behind one handle. Both
// backends implement it; the active one is selected once at composition
// time and injected into callers.
type Store interface {
	Members() MemberRepository
	Places() PlaceRepository
	Reviews() ReviewRepository
	Posts() PostRepository
	Wishlists() WishlistRepository

	// Ping verifies the backend is reachable and initialized.
	Ping(ctx context.Context) error
	// Close releases the backend. For the local adapter this flushes a
	// final snapshot before shutting the engine down.
	Close() error
}

// MemberRepository manages accounts. Member deletion is always soft: the
// row is retained with status WITHDRAWN, and all default reads filter to
// ACTIVE members.
type MemberRepository interface {
	// Create registers a member, hashing the supplied password. Returns
	// ErrEmailExists when the email is taken.
	Create(ctx context.Context, params model.CreateMemberParams) (*model.Member, error)
	// FindByID returns the member or (nil, nil). WITHDRAWN members are
	// only visible when includeInactive is set.
	FindByID(ctx context.Context, id string, includeInactive bool) (*model.Member, error)
	// FindByEmail returns the member regardless of status, or (nil, nil).
	FindByEmail(ctx context.Context, email string) (*model.Member, error)
	Search(ctx context.Context, filter model.MemberFilter) (*model.SearchResult[model.Member], error)
	// Update applies the non-nil fields to the member's own row.
	Update(ctx context.Context, id string, update model.MemberUpdate) (*model.Member, error)
	// Delete soft-deletes: status transitions ACTIVE to WITHDRAWN.
	Delete(ctx context.Context, id string) error
}

// PlaceRepository manages points of interest. Places have no owner; update
// and delete are unscoped.
type PlaceRepository interface {
	Create(ctx context.Context, params model.CreatePlaceParams) (*model.Place, error)
	FindByID(ctx context.Context, id string) (*model.Place, error)
	// Search orders alphabetically by name, unlike the other entities.
	Search(ctx context.Context, filter model.PlaceFilter) (*model.SearchResult[model.Place], error)
	FindByRegion(ctx context.Context, region string, page model.Page) (*model.SearchResult[model.Place], error)
	FindRecommended(ctx context.Context, page model.Page) (*model.SearchResult[model.Place], error)
	Update(ctx context.Context, id string, update model.PlaceUpdate) (*model.Place, error)
	// Delete removes the place. Reviews referencing it keep their rows
	// with the place reference cleared.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository manages reviews. Every read hydrates the author summary,
// place summary and tag set, and suppresses rows whose author is WITHDRAWN.
type ReviewRepository interface {
	// Create inserts the review and its complete tag set atomically,
	// returning the hydrated row.
	Create(ctx context.Context, params model.CreateReviewParams) (*model.Review, error)
	FindByID(ctx context.Context, id string) (*model.Review, error)
	Search(ctx context.Context, filter model.ReviewFilter) (*model.SearchResult[model.Review], error)
	// Update applies the non-nil fields, scoped by both id and memberID so
	// a member can only modify their own reviews. A non-owning caller gets
	// the row back unchanged.
	Update(ctx context.Context, id, memberID string, update model.ReviewUpdate) (*model.Review, error)
	// Delete hard-deletes, scoped by id and memberID.
	Delete(ctx context.Context, id, memberID string) error
	IncrementLikes(ctx context.Context, id string) error
}

// PostRepository manages board posts with the same ownership and hydration
// rules as reviews.
type PostRepository interface {
	Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error)
	FindByID(ctx context.Context, id string) (*model.Post, error)
	Search(ctx context.Context, filter model.PostFilter) (*model.SearchResult[model.Post], error)
	Update(ctx context.Context, id, memberID string, update model.PostUpdate) (*model.Post, error)
	Delete(ctx context.Context, id, memberID string) error
	IncrementViews(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, id string) error
}

// WishlistRepository manages polymorphic saved targets. Operations taking a
// target type return ErrInvalidTargetType for unrecognized values.
type WishlistRepository interface {
	// Add saves a target for the member. Returns ErrAlreadyWishlisted when
	// the (member, type, target) triple already exists.
	Add(ctx context.Context, memberID string, target model.TargetType, targetID string) (*model.Wishlist, error)
	Remove(ctx context.Context, memberID string, target model.TargetType, targetID string) error
	IsWishlisted(ctx context.Context, memberID string, target model.TargetType, targetID string) (bool, error)
	// TargetIDs lists the member's saved target ids of one type, newest
	// first.
	TargetIDs(ctx context.Context, memberID string, target model.TargetType) ([]string, error)
	// List returns the member's wishlist rows of one type, each nested
	// with its fully hydrated target. The join shape differs per target
	// type behind this one signature.
	List(ctx context.Context, memberID string, target model.TargetType, page model.Page) (*model.SearchResult[model.Wishlist], error)
}

// Authenticator is implemented only by backends that own identity. The
// embedded engine has no native identity primitive, so the local adapter
// does not provide it.
type Authenticator interface {
	// Authenticate verifies the email/password pair against stored
	// credential material and returns the ACTIVE member, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*model.Member, error)
}
