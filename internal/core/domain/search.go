package domain

// DefaultSearchLimit caps search and recent listings when no limit is given.
const DefaultSearchLimit = 50

// SortOrder orders document listings.
type SortOrder int

const (
	// SortNewest orders by posting date, newest first.
	SortNewest SortOrder = iota

	// SortOldest orders by posting date, oldest first.
	SortOldest
)

// DocumentQuery filters, sorts and pages a user's documents.
type DocumentQuery struct {
	// Text matches case-insensitively against file name and text. Empty matches all.
	Text string

	// FileType restricts to one file type. Empty matches all.
	FileType string

	// SourceID restricts to one source. Empty matches all.
	SourceID string

	// Sort is the result order.
	Sort SortOrder

	// Offset is the number of results to skip.
	Offset int

	// Limit is the maximum number of results. Zero means DefaultSearchLimit.
	Limit int
}

// EffectiveLimit returns Limit, or the default when unset.
func (q DocumentQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultSearchLimit
	}
	return q.Limit
}

// SearchOptions configures a user-facing search.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// FileType filters to one file type.
	FileType string

	// SourceID filters to one source.
	SourceID string
}

// IndexResult reports the outcome of one indexing pass.
type IndexResult struct {
	// Source is the source as stored after the pass.
	Source *Source

	// Scanned is the number of messages fetched.
	Scanned int

	// Indexed is the number of new documents committed.
	Indexed int

	// Duplicates is the number of media messages already indexed.
	Duplicates int

	// Failed is the number of messages skipped after an extraction or insert error.
	Failed int

	// Watermark is the highest message id processed, nil if nothing was fetched.
	Watermark *int
}
