package telegram

import (
	"time"

	"github.com/gotd/td/tg"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// Document attribute kinds exposed to the extractor.
const (
	attrFilename  = domain.AttrFilename
	attrVideo     = domain.AttrVideo
	attrAudio     = domain.AttrAudio
	attrImageSize = "image_size"
	attrAnimated  = "animated"
	attrSticker   = "sticker"
	attrOther     = "other"
)

// peerID returns the bare id of a peer.
func peerID(p tg.PeerClass) (int64, bool) {
	switch v := p.(type) {
	case *tg.PeerChannel:
		return v.ChannelID, true
	case *tg.PeerChat:
		return v.ChatID, true
	case *tg.PeerUser:
		return v.UserID, true
	default:
		return 0, false
	}
}

// convertMessage turns an MTProto message into a pipeline message. Service
// and empty messages have nothing to index and are reported as not ok.
func convertMessage(m tg.MessageClass) (domain.Message, bool) {
	msg, ok := m.(*tg.Message)
	if !ok {
		return domain.Message{}, false
	}

	out := domain.Message{
		ID:   msg.ID,
		Date: time.Unix(int64(msg.Date), 0).UTC(),
		Text: msg.Message,
	}
	if id, ok := peerID(msg.PeerID); ok {
		out.PeerID = id
	}
	if media, ok := msg.GetMedia(); ok {
		out.Media = classifyMedia(media)
	}
	return out, true
}

// classifyMedia maps raw MTProto media onto the closed media variant.
// Anything carrying a document is a document, whatever it renders as;
// other media kinds (geo, polls, web pages) carry no file.
func classifyMedia(media tg.MessageMediaClass) domain.Media {
	switch v := media.(type) {
	case *tg.MessageMediaDocument:
		doc, ok := v.GetDocument()
		if !ok {
			return nil
		}
		d, ok := doc.(*tg.Document)
		if !ok {
			return nil
		}
		return &domain.DocumentMedia{
			FileID:     d.ID,
			Size:       d.Size,
			MIMEType:   d.MimeType,
			Attributes: convertAttributes(d.Attributes),
		}
	case *tg.MessageMediaPhoto:
		photo, ok := v.GetPhoto()
		if !ok {
			return nil
		}
		p, ok := photo.(*tg.Photo)
		if !ok {
			return nil
		}
		return &domain.PhotoMedia{FileID: p.ID, Size: largestPhotoSize(p.Sizes)}
	default:
		return nil
	}
}

func convertAttributes(attrs []tg.DocumentAttributeClass) []domain.DocumentAttribute {
	out := make([]domain.DocumentAttribute, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.(type) {
		case *tg.DocumentAttributeFilename:
			out = append(out, domain.DocumentAttribute{Kind: attrFilename, FileName: v.FileName})
		case *tg.DocumentAttributeVideo:
			out = append(out, domain.DocumentAttribute{Kind: attrVideo})
		case *tg.DocumentAttributeAudio:
			out = append(out, domain.DocumentAttribute{Kind: attrAudio})
		case *tg.DocumentAttributeImageSize:
			out = append(out, domain.DocumentAttribute{Kind: attrImageSize})
		case *tg.DocumentAttributeAnimated:
			out = append(out, domain.DocumentAttribute{Kind: attrAnimated})
		case *tg.DocumentAttributeSticker:
			out = append(out, domain.DocumentAttribute{Kind: attrSticker})
		default:
			out = append(out, domain.DocumentAttribute{Kind: attrOther})
		}
	}
	return out
}

// largestPhotoSize returns the byte size of the biggest rendition.
func largestPhotoSize(sizes []tg.PhotoSizeClass) int64 {
	var largest int
	for _, s := range sizes {
		switch v := s.(type) {
		case *tg.PhotoSize:
			largest = max(largest, v.Size)
		case *tg.PhotoSizeProgressive:
			for _, n := range v.Sizes {
				largest = max(largest, n)
			}
		case *tg.PhotoCachedSize:
			largest = max(largest, len(v.Bytes))
		}
	}
	return int64(largest)
}

// entityFromChat converts a chat returned by the API into an entity and the
// peer record needed to address it later.
func entityFromChat(c tg.ChatClass) (domain.Entity, peerRecord, bool) {
	switch v := c.(type) {
	case *tg.Channel:
		kind := domain.SourceKindGroup
		if v.Broadcast {
			kind = domain.SourceKindChannel
		}
		e := domain.Entity{ID: v.ID, Title: v.Title, Username: v.Username, Kind: kind}
		return e, peerRecord{
			ID: v.ID, AccessHash: v.AccessHash, Kind: string(kind), Title: v.Title, Username: v.Username,
		}, true
	case *tg.Chat:
		e := domain.Entity{ID: v.ID, Title: v.Title, Kind: domain.SourceKindGroup}
		return e, peerRecord{ID: v.ID, Kind: string(e.Kind), Title: v.Title, Chat: true}, true
	default:
		// ChatForbidden, ChannelForbidden and ChatEmpty cannot be read.
		return domain.Entity{}, peerRecord{}, false
	}
}

// inputPeer addresses a stored peer.
func (p peerRecord) inputPeer() tg.InputPeerClass {
	if p.Chat {
		return &tg.InputPeerChat{ChatID: p.ID}
	}
	return &tg.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
}

func (p peerRecord) entity() domain.Entity {
	return domain.Entity{ID: p.ID, Title: p.Title, Username: p.Username, Kind: domain.SourceKind(p.Kind)}
}
