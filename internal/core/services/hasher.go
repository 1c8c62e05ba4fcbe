package services

import (
	"crypto/md5" //nolint:gosec // identity key, not a security boundary
	"encoding/hex"
	"fmt"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// MessageHash is the message-addressed dedup key: the same file reposted in
// another message, or renamed, is a different document.
func MessageHash(peerID int64, messageID int, fileName string) string {
	return md5Hex(fmt.Sprintf("%d_%d_%s", peerID, messageID, fileName))
}

// ContentHash is the content-addressed dedup key: a file forwarded to many
// chats keeps its platform file id and collapses to one document.
func ContentHash(fileID, size int64, fileName string) string {
	return md5Hex(fmt.Sprintf("%d_%d_%s", fileID, size, fileName))
}

// Hasher selects the dedup key strategy.
type Hasher struct {
	mode domain.HashMode
}

// NewHasher creates a hasher for the given mode. Unknown modes hash by message.
func NewHasher(mode domain.HashMode) Hasher {
	if !mode.IsValid() {
		mode = domain.HashByMessage
	}
	return Hasher{mode: mode}
}

// Mode returns the active strategy.
func (h Hasher) Mode() domain.HashMode {
	return h.mode
}

// Hash computes the dedup key of an extracted message.
func (h Hasher) Hash(msg *domain.Message, d domain.Descriptor) string {
	if h.mode == domain.HashByContent {
		if fileID, ok := mediaFileID(msg.Media); ok {
			return ContentHash(fileID, d.FileSize, d.FileName)
		}
	}
	return MessageHash(msg.PeerID, msg.ID, d.FileName)
}

func mediaFileID(m domain.Media) (int64, bool) {
	var id int64
	switch v := m.(type) {
	case *domain.DocumentMedia:
		id = v.FileID
	case *domain.PhotoMedia:
		id = v.FileID
	case *domain.VideoMedia:
		id = v.FileID
	case *domain.AudioMedia:
		id = v.FileID
	}
	return id, id != 0
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}
