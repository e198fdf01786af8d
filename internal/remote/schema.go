package remote

import (
	"context"
	"fmt"

	"github.com/forgo/travelog/api/internal/database"
)

// schemaStatements declare the tables, the integrity constraints the
// repositories rely on and the indexes behind the hot lookups. All
// statements are idempotent so EnsureSchema can run on every startup.
//
// Accounts split across two tables: members holds the credential material
// (email, password hash), profiles holds everything reads hydrate. The two
// share one record id.
var schemaStatements = []string{
	`DEFINE TABLE IF NOT EXISTS members SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS idx_members_email ON members FIELDS email UNIQUE`,

	`DEFINE TABLE IF NOT EXISTS profiles SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS idx_profiles_status ON profiles FIELDS status`,

	`DEFINE TABLE IF NOT EXISTS places SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS idx_places_region ON places FIELDS region`,

	`DEFINE TABLE IF NOT EXISTS reviews SCHEMALESS`,
	`DEFINE FIELD IF NOT EXISTS rating ON reviews TYPE int ASSERT $value >= 1 AND $value <= 5`,
	`DEFINE INDEX IF NOT EXISTS idx_reviews_member ON reviews FIELDS member_id`,
	`DEFINE INDEX IF NOT EXISTS idx_reviews_place ON reviews FIELDS place_id`,

	`DEFINE TABLE IF NOT EXISTS posts SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS idx_posts_member ON posts FIELDS member_id`,
	`DEFINE INDEX IF NOT EXISTS idx_posts_category ON posts FIELDS category`,

	`DEFINE TABLE IF NOT EXISTS review_tags SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS idx_review_tags ON review_tags FIELDS review_id, tag UNIQUE`,

	`DEFINE TABLE IF NOT EXISTS post_tags SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS idx_post_tags ON post_tags FIELDS post_id, tag UNIQUE`,

	`DEFINE TABLE IF NOT EXISTS wishlists SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS idx_wishlists_unique ON wishlists FIELDS member_id, target_type, target_id UNIQUE`,
	`DEFINE INDEX IF NOT EXISTS idx_wishlists_member ON wishlists FIELDS member_id, target_type`,
}

// EnsureSchema applies the table, field and index definitions.
func EnsureSchema(ctx context.Context, db database.Database) error {
	for _, stmt := range schemaStatements {
		if err := db.Execute(ctx, stmt, nil); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
