package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// Fallbacks for attachments that do not name themselves.
const (
	defaultFileName = "Unnamed file"
	unknownFileType = "unknown"
)

// Extract derives the file descriptor of a message.
// Returns domain.ErrNoMedia when there is nothing to index and
// domain.ErrExtraction when the media payload is inconsistent.
func Extract(msg *domain.Message) (domain.Descriptor, error) {
	if msg == nil {
		return domain.Descriptor{}, fmt.Errorf("%w: nil message", domain.ErrExtraction)
	}
	if msg.Media == nil {
		return domain.Descriptor{}, domain.ErrNoMedia
	}

	var d domain.Descriptor
	switch m := msg.Media.(type) {
	case *domain.DocumentMedia:
		if m == nil {
			return domain.Descriptor{}, fmt.Errorf("%w: message %d: document without attachment", domain.ErrExtraction, msg.ID)
		}
		d = documentDescriptor(m)
	case *domain.PhotoMedia:
		if m == nil {
			return domain.Descriptor{}, fmt.Errorf("%w: message %d: photo without payload", domain.ErrExtraction, msg.ID)
		}
		d = domain.Descriptor{
			FileName: fmt.Sprintf("photo_%d.jpg", msg.ID),
			FileType: "photo",
			FileSize: m.Size,
			MIMEType: "image/jpeg",
		}
	case *domain.VideoMedia:
		if m == nil {
			return domain.Descriptor{}, fmt.Errorf("%w: message %d: video without payload", domain.ErrExtraction, msg.ID)
		}
		d = domain.Descriptor{
			FileName: fmt.Sprintf("video_%d.mp4", msg.ID),
			FileType: "video",
			FileSize: m.Size,
			MIMEType: "video/mp4",
		}
	case *domain.AudioMedia:
		if m == nil {
			return domain.Descriptor{}, fmt.Errorf("%w: message %d: audio without payload", domain.ErrExtraction, msg.ID)
		}
		d = domain.Descriptor{
			FileName: fmt.Sprintf("audio_%d.mp3", msg.ID),
			FileType: "audio",
			FileSize: m.Size,
			MIMEType: "audio/mp3",
		}
	default:
		return domain.Descriptor{}, fmt.Errorf("%w: message %d: unsupported media %T", domain.ErrExtraction, msg.ID, msg.Media)
	}

	d.Text = messageText(msg)
	return d, nil
}

func documentDescriptor(m *domain.DocumentMedia) domain.Descriptor {
	name := defaultFileName
	for _, attr := range m.Attributes {
		if attr.FileName != "" {
			name = attr.FileName
			break
		}
	}

	return domain.Descriptor{
		FileName: name,
		FileType: fileType(m.MIMEType, name),
		FileSize: m.Size,
		MIMEType: m.MIMEType,
	}
}

// fileType prefers the MIME subtype and falls back to the name's extension.
func fileType(mime, name string) string {
	if mime != "" {
		if _, sub, ok := strings.Cut(mime, "/"); ok {
			return sub
		}
		return mime
	}
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return unknownFileType
	}
	return name[i+1:]
}

func messageText(msg *domain.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}
