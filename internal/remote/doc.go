// Package remote implements the repository contract on SurrealDB reached
// over the network.
//
// Records are created with explicit UUID record ids, and cross-entity
// references (member_id, place_id, target_id) are stored as bare UUID
// strings, so both backends expose the same opaque id values. Hydration
// (author summary, place summary, tag sets) happens in-query through
// $parent subselects; search filtering reuses the same query.Spec the local
// adapter consumes, rendered as SurrealQL.
//
// The remote backend owns identity: this is the only adapter implementing
// repository.Authenticator, verifying bcrypt credential material stored in
// the members table.
package remote
