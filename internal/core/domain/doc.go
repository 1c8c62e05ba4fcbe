// Package domain holds the types the indexer, listener and stores agree on:
// sources and their watermarks, documents and their hashes, platform
// messages with their media, settings, and the sentinel errors mapped to
// user-facing text by UserMessage.
//
// It imports only the standard library. Adapters translate their own
// representations (gotd messages, bot updates, SQL rows, BSON documents)
// into these types at the package boundary.
package domain
