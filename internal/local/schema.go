package local

import (
	"database/sql"
	"fmt"
)

// Schema DDL for the embedded engine. Referential actions carry the data
// model's semantics: member deletion cascades to owned rows, place deletion
// clears the review reference, and the wishlist triple is unique.
const (
	createMembers = `CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    nickname TEXT NOT NULL,
    profile_image TEXT,
    role TEXT NOT NULL DEFAULT 'USER',
    status TEXT NOT NULL DEFAULT 'ACTIVE',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createPlaces = `CREATE TABLE IF NOT EXISTS places (
    id TEXT PRIMARY KEY,
    region TEXT NOT NULL,
    latitude REAL NOT NULL,
    longitude REAL NOT NULL,
    name TEXT NOT NULL,
    detail_info TEXT,
    disabled_info TEXT,
    is_recommended INTEGER NOT NULL DEFAULT 0,
    data_quality TEXT,
    modified_at TEXT NOT NULL
);`

	createReviews = `CREATE TABLE IF NOT EXISTS reviews (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
    place_id TEXT REFERENCES places(id) ON DELETE SET NULL,
    location TEXT NOT NULL,
    rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    comment TEXT NOT NULL DEFAULT '',
    image_url TEXT,
    like_count INTEGER NOT NULL DEFAULT 0,
    reply_count INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createPosts = `CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
    category TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    image_url TEXT,
    view_count INTEGER NOT NULL DEFAULT 0,
    like_count INTEGER NOT NULL DEFAULT 0,
    comment_count INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createReviewTags = `CREATE TABLE IF NOT EXISTS review_tags (
    review_id TEXT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
    tag TEXT NOT NULL,
    PRIMARY KEY (review_id, tag)
);`

	createPostTags = `CREATE TABLE IF NOT EXISTS post_tags (
    post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    tag TEXT NOT NULL,
    PRIMARY KEY (post_id, tag)
);`

	createWishlists = `CREATE TABLE IF NOT EXISTS wishlists (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
    target_type TEXT NOT NULL,
    target_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (member_id, target_type, target_id)
);`
)

// schemaStatements run in dependency order so foreign keys resolve.
var schemaStatements = []string{
	createMembers,
	createPlaces,
	createReviews,
	createPosts,
	createReviewTags,
	createPostTags,
	createWishlists,
	`CREATE INDEX IF NOT EXISTS idx_reviews_member ON reviews(member_id);`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_place ON reviews(place_id);`,
	`CREATE INDEX IF NOT EXISTS idx_posts_member ON posts(member_id);`,
	`CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);`,
	`CREATE INDEX IF NOT EXISTS idx_places_region ON places(region);`,
	`CREATE INDEX IF NOT EXISTS idx_places_name ON places(name);`,
	`CREATE INDEX IF NOT EXISTS idx_wishlists_member ON wishlists(member_id, target_type);`,
}

// snapshotTables lists every table in insert order, used when copying a
// restored snapshot image into the live engine.
var snapshotTables = []string{
	"members",
	"places",
	"reviews",
	"posts",
	"review_tags",
	"post_tags",
	"wishlists",
}

// ensureSchema creates all tables and indexes if absent. Safe to invoke any
// number of times; must run before any repository operation.
func ensureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
