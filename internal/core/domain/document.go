package domain

import "time"

// Document represents one discovered file, owned by one user.
// (UserID, Hash) is unique: the same file is never stored twice for a user.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// UserID is the owning user.
	UserID int64

	// SourceID links to the Source record the file was found through.
	SourceID string

	// SourceName is the source title at discovery time.
	SourceName string

	// Origin locates the message carrying the file, used to refetch the media.
	Origin MessageLocator

	// FileName is the attachment name, or a synthesised one.
	FileName string

	// FileType is a short category ("pdf", "photo", "video", ...).
	FileType string

	// FileSize is the size in bytes. Zero when unknown.
	FileSize int64

	// MIMEType is the content type. Empty when the platform did not report one.
	MIMEType string

	// Hash is the deduplication key.
	Hash string

	// Text is the message body or caption, searchable.
	Text string

	// PostedAt is when the message was posted.
	PostedAt time.Time

	// IndexedAt is when the document was discovered.
	IndexedAt time.Time
}

// MessageLocator identifies a message on the platform.
type MessageLocator struct {
	ChatID    int64
	MessageID int
}

// Descriptor is the normalised file metadata extracted from a message.
type Descriptor struct {
	FileName string
	FileType string
	FileSize int64
	MIMEType string
	Text     string
}
