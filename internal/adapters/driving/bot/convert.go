package bot

import (
	"hash/fnv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// convertMessage maps a Bot API message onto a pipeline message.
func convertMessage(m *tgbotapi.Message) (domain.Message, bool) {
	if m == nil || m.Chat == nil {
		return domain.Message{}, false
	}
	return domain.Message{
		ID:      m.MessageID,
		PeerID:  domain.BarePeerID(m.Chat.ID),
		Date:    time.Unix(int64(m.Date), 0).UTC(),
		Text:    m.Text,
		Caption: m.Caption,
		Media:   classifyMedia(m),
	}, true
}

// classifyMedia produces the same variant the MTProto adapter produces for
// the same post: videos and audio travel as documents there, carrying a
// video or audio attribute next to their file name, so they do here too.
// Otherwise a post seen live by the bot and again by a backfill would hash
// to two different documents.
func classifyMedia(m *tgbotapi.Message) domain.Media {
	switch {
	case m.Document != nil:
		d := m.Document
		return documentMedia(d.FileUniqueID, d.FileSize, d.MimeType, "", d.FileName)
	case len(m.Photo) > 0:
		// Sizes come smallest first.
		largest := m.Photo[len(m.Photo)-1]
		return &domain.PhotoMedia{FileID: fileKey(largest.FileUniqueID), Size: int64(largest.FileSize)}
	case m.Video != nil:
		v := m.Video
		return documentMedia(v.FileUniqueID, v.FileSize, v.MimeType, domain.AttrVideo, v.FileName)
	case m.Audio != nil:
		a := m.Audio
		return documentMedia(a.FileUniqueID, a.FileSize, a.MimeType, domain.AttrAudio, a.FileName)
	default:
		return nil
	}
}

func documentMedia(uniqueID string, size int, mime, kind, fileName string) *domain.DocumentMedia {
	var attrs []domain.DocumentAttribute
	if kind != "" {
		attrs = append(attrs, domain.DocumentAttribute{Kind: kind})
	}
	if fileName != "" {
		attrs = append(attrs, domain.DocumentAttribute{Kind: domain.AttrFilename, FileName: fileName})
	}
	return &domain.DocumentMedia{
		FileID:     fileKey(uniqueID),
		Size:       int64(size),
		MIMEType:   mime,
		Attributes: attrs,
	}
}

// fileKey folds the Bot API's unique file id into the numeric file id used
// by content hashing. Zero means unknown.
func fileKey(uniqueID string) int64 {
	if uniqueID == "" {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(uniqueID)) //nolint:errcheck // hash writes never fail
	return int64(h.Sum64() & (1<<63 - 1))
}
