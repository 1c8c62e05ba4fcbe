package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SourceKind distinguishes broadcast channels from groups.
type SourceKind string

const (
	// SourceKindChannel is a broadcast channel.
	SourceKindChannel SourceKind = "channel"

	// SourceKindGroup is a group or supergroup.
	SourceKindGroup SourceKind = "group"
)

// Source represents a channel or group a user monitors.
// (UserID, PeerID) is unique.
type Source struct {
	// ID is the unique identifier for the source record.
	ID string

	// UserID is the owning user.
	UserID int64

	// PeerID is the platform-assigned numeric id of the channel or group.
	PeerID int64

	// Identifier is the normalised username or id the user connected with.
	Identifier string

	// Name is the human-readable title.
	Name string

	// Kind is channel or group.
	Kind SourceKind

	// CreatedAt is when the user first connected the source.
	CreatedAt time.Time

	// LastIndexedAt is when the last indexing pass finished. Nil if never indexed.
	LastIndexedAt *time.Time

	// LastMessageID is the watermark: the highest message id processed by a
	// backfill. Nil means the source has never been indexed.
	LastMessageID *int
}

// Indexed reports whether a backfill has ever advanced the watermark.
func (s *Source) Indexed() bool {
	return s.LastMessageID != nil
}

// DisplayName returns the title, falling back to the identifier.
func (s *Source) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Identifier != "" {
		return s.Identifier
	}
	return strconv.FormatInt(s.PeerID, 10)
}

// Watermark returns the last indexed message id, or 0 when never indexed.
func (s *Source) Watermark() int {
	if s.LastMessageID == nil {
		return 0
	}
	return *s.LastMessageID
}

// NormaliseIdentifier strips the forms users paste into a bare username or id:
// "@name", "t.me/name" with or without a scheme, post links
// ("t.me/name/123"), preview links ("t.me/s/name") and private post links
// ("t.me/c/<channel id>/123", which yield the channel id).
func NormaliseIdentifier(input string) string {
	s := strings.TrimSpace(input)
	for _, prefix := range linkPrefixes {
		if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
			continue
		}
		s = s[len(prefix):]
		if i := strings.IndexAny(s, "?#"); i >= 0 {
			s = s[:i]
		}
		segments := strings.Split(strings.Trim(s, "/"), "/")
		if len(segments) > 1 && (segments[0] == "s" || segments[0] == "c") {
			return segments[1]
		}
		return segments[0]
	}
	return strings.TrimPrefix(s, "@")
}

var linkPrefixes = []string{
	"https://t.me/", "http://t.me/", "t.me/",
	"https://telegram.me/", "http://telegram.me/", "telegram.me/",
}

// ParsePeerID returns the numeric id when the identifier is one.
func ParsePeerID(identifier string) (int64, bool) {
	id, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// SourceKey identifies a (user, source) pair, the unit of watermark ownership.
type SourceKey struct {
	UserID int64
	PeerID int64
}

func (k SourceKey) String() string {
	return fmt.Sprintf("%d/%d", k.UserID, k.PeerID)
}

// BarePeerID accepts bot API style ids ("-100" prefix for channels,
// negative for basic groups) and returns the bare platform id.
func BarePeerID(id int64) int64 {
	const channelOffset = 1_000_000_000_000
	switch {
	case id <= -channelOffset:
		return -id - channelOffset
	case id < 0:
		return -id
	default:
		return id
	}
}
