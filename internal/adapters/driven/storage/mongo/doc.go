// Package mongo implements the SourceStore and DocumentStore ports on
// MongoDB, keeping the collection layout of the telegram_search_bot
// database: "sources" and "documents", with documents keyed per user by
// file_hash.
//
// Uniqueness of (user_id, file_hash) and (user_id, peer_id) is enforced by
// unique compound indexes created in NewStore.
package mongo
