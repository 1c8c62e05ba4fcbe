package mongo

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// sourceRecord is the stored shape of a source.
type sourceRecord struct {
	ID            string     `bson:"_id"`
	UserID        int64      `bson:"user_id"`
	PeerID        int64      `bson:"peer_id"`
	Identifier    string     `bson:"identifier"`
	SourceName    string     `bson:"source_name"`
	Kind          string     `bson:"kind"`
	DateAdded     time.Time  `bson:"date_added"`
	LastIndexedAt *time.Time `bson:"last_indexed_at,omitempty"`
	LastMessageID *int       `bson:"last_message_id,omitempty"`
}

// originRecord locates the message carrying a file.
type originRecord struct {
	ChatID    int64 `bson:"chat_id"`
	MessageID int   `bson:"message_id"`
}

// documentRecord is the stored shape of a document.
type documentRecord struct {
	ID              string       `bson:"_id"`
	UserID          int64        `bson:"user_id"`
	SourceID        string       `bson:"source_id"`
	SourceName      string       `bson:"source_name"`
	FileName        string       `bson:"file_name"`
	FileType        string       `bson:"file_type"`
	FileSize        int64        `bson:"file_size"`
	MIMEType        string       `bson:"mime_type"`
	FileHash        string       `bson:"file_hash"`
	Text            string       `bson:"text"`
	Date            time.Time    `bson:"date"`
	OriginalMessage originRecord `bson:"original_message"`
	IndexedAt       time.Time    `bson:"indexed_at"`
}

func toSourceRecord(s *domain.Source) sourceRecord {
	rec := sourceRecord{
		ID:            s.ID,
		UserID:        s.UserID,
		PeerID:        s.PeerID,
		Identifier:    s.Identifier,
		SourceName:    s.Name,
		Kind:          string(s.Kind),
		DateAdded:     s.CreatedAt.UTC(),
		LastMessageID: s.LastMessageID,
	}
	if s.LastIndexedAt != nil {
		t := s.LastIndexedAt.UTC()
		rec.LastIndexedAt = &t
	}
	return rec
}

func (r sourceRecord) toDomain() domain.Source {
	return domain.Source{
		ID:            r.ID,
		UserID:        r.UserID,
		PeerID:        r.PeerID,
		Identifier:    r.Identifier,
		Name:          r.SourceName,
		Kind:          domain.SourceKind(r.Kind),
		CreatedAt:     r.DateAdded,
		LastIndexedAt: r.LastIndexedAt,
		LastMessageID: r.LastMessageID,
	}
}

func toDocumentRecord(d *domain.Document) documentRecord {
	return documentRecord{
		ID:         d.ID,
		UserID:     d.UserID,
		SourceID:   d.SourceID,
		SourceName: d.SourceName,
		FileName:   d.FileName,
		FileType:   d.FileType,
		FileSize:   d.FileSize,
		MIMEType:   d.MIMEType,
		FileHash:   d.Hash,
		Text:       d.Text,
		Date:       d.PostedAt.UTC(),
		OriginalMessage: originRecord{
			ChatID:    d.Origin.ChatID,
			MessageID: d.Origin.MessageID,
		},
		IndexedAt: d.IndexedAt.UTC(),
	}
}

func (r documentRecord) toDomain() domain.Document {
	return domain.Document{
		ID:         r.ID,
		UserID:     r.UserID,
		SourceID:   r.SourceID,
		SourceName: r.SourceName,
		Origin: domain.MessageLocator{
			ChatID:    r.OriginalMessage.ChatID,
			MessageID: r.OriginalMessage.MessageID,
		},
		FileName:  r.FileName,
		FileType:  r.FileType,
		FileSize:  r.FileSize,
		MIMEType:  r.MIMEType,
		Hash:      r.FileHash,
		Text:      r.Text,
		PostedAt:  r.Date,
		IndexedAt: r.IndexedAt,
	}
}

// caseInsensitive matches s literally, ignoring case.
func caseInsensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// exactFold matches the whole of s, ignoring case.
func exactFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

// documentFilter builds the find filter for a user's document query.
func documentFilter(userID int64, q domain.DocumentQuery) bson.D {
	filter := bson.D{{Key: "user_id", Value: userID}}
	if q.FileType != "" {
		filter = append(filter, bson.E{Key: "file_type", Value: exactFold(q.FileType)})
	}
	if q.SourceID != "" {
		filter = append(filter, bson.E{Key: "source_id", Value: q.SourceID})
	}
	if q.Text != "" {
		re := caseInsensitive(q.Text)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "file_name", Value: re}},
			bson.D{{Key: "text", Value: re}},
		}})
	}
	return filter
}

// documentSort orders by posting date then id.
func documentSort(order domain.SortOrder) bson.D {
	direction := -1
	if order == domain.SortOldest {
		direction = 1
	}
	return bson.D{{Key: "date", Value: direction}, {Key: "_id", Value: 1}}
}
