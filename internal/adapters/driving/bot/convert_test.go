package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/services"
)

func TestClassifyMedia(t *testing.T) {
	tests := []struct {
		name string
		msg  *tgbotapi.Message
		kind domain.MediaKind
		size int64
	}{
		{
			name: "document",
			msg:  &tgbotapi.Message{Document: &tgbotapi.Document{FileUniqueID: "a", FileName: "x.zip", FileSize: 10}},
			kind: domain.MediaDocument,
			size: 10,
		},
		{
			name: "photo takes the last size",
			msg: &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{
				{FileUniqueID: "s", FileSize: 100},
				{FileUniqueID: "l", FileSize: 5000},
			}},
			kind: domain.MediaPhoto,
			size: 5000,
		},
		{
			name: "video travels as a document",
			msg:  &tgbotapi.Message{Video: &tgbotapi.Video{FileUniqueID: "v", FileSize: 30}},
			kind: domain.MediaDocument,
			size: 30,
		},
		{
			name: "audio travels as a document",
			msg:  &tgbotapi.Message{Audio: &tgbotapi.Audio{FileUniqueID: "m", FileSize: 40}},
			kind: domain.MediaDocument,
			size: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := classifyMedia(tt.msg)
			require.NotNil(t, media)
			assert.Equal(t, tt.kind, media.Kind())

			var size int64
			switch m := media.(type) {
			case *domain.DocumentMedia:
				size = m.Size
			case *domain.PhotoMedia:
				size = m.Size
			}
			assert.Equal(t, tt.size, size)
		})
	}

	assert.Nil(t, classifyMedia(&tgbotapi.Message{Text: "hello"}))
}

func TestClassifyMedia_DocumentWinsOverOtherKinds(t *testing.T) {
	media := classifyMedia(&tgbotapi.Message{
		Document: &tgbotapi.Document{FileName: "clip.gif"},
		Video:    &tgbotapi.Video{},
	})
	doc, ok := media.(*domain.DocumentMedia)
	require.True(t, ok)
	assert.Equal(t, []domain.DocumentAttribute{{Kind: "filename", FileName: "clip.gif"}}, doc.Attributes)
}

func TestClassifyMedia_VideoKeepsNameAndMIME(t *testing.T) {
	media := classifyMedia(&tgbotapi.Message{Video: &tgbotapi.Video{
		FileUniqueID: "v", FileSize: 30, MimeType: "video/mp4", FileName: "clip.mp4",
	}})

	doc, ok := media.(*domain.DocumentMedia)
	require.True(t, ok)
	assert.Equal(t, "video/mp4", doc.MIMEType)
	assert.Equal(t, []domain.DocumentAttribute{
		{Kind: domain.AttrVideo},
		{Kind: domain.AttrFilename, FileName: "clip.mp4"},
	}, doc.Attributes)
}

// A post ingested live by the bot must hash like the same post read back
// from history over MTProto, where videos and audio are documents.
func TestConvertMessage_HashesLikeHistory(t *testing.T) {
	tests := []struct {
		name    string
		botMsg  *tgbotapi.Message
		history domain.Media
	}{
		{
			name: "video",
			botMsg: &tgbotapi.Message{Video: &tgbotapi.Video{
				FileUniqueID: "v", FileSize: 30, MimeType: "video/mp4", FileName: "clip.mp4",
			}},
			history: &domain.DocumentMedia{FileID: 501, Size: 30, MIMEType: "video/mp4", Attributes: []domain.DocumentAttribute{
				{Kind: domain.AttrVideo}, {Kind: domain.AttrFilename, FileName: "clip.mp4"},
			}},
		},
		{
			name: "audio",
			botMsg: &tgbotapi.Message{Audio: &tgbotapi.Audio{
				FileUniqueID: "a", FileSize: 40, MimeType: "audio/mpeg", FileName: "talk.mp3",
			}},
			history: &domain.DocumentMedia{FileID: 502, Size: 40, MIMEType: "audio/mpeg", Attributes: []domain.DocumentAttribute{
				{Kind: domain.AttrAudio}, {Kind: domain.AttrFilename, FileName: "talk.mp3"},
			}},
		},
		{
			name: "video without a file name",
			botMsg: &tgbotapi.Message{Video: &tgbotapi.Video{
				FileUniqueID: "v", FileSize: 30, MimeType: "video/mp4",
			}},
			history: &domain.DocumentMedia{FileID: 501, Size: 30, MIMEType: "video/mp4", Attributes: []domain.DocumentAttribute{
				{Kind: domain.AttrVideo},
			}},
		},
	}

	hasher := services.NewHasher(domain.HashByMessage)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.botMsg.MessageID = 5
			tt.botMsg.Chat = &tgbotapi.Chat{ID: -1000000000077}
			live, ok := convertMessage(tt.botMsg)
			require.True(t, ok)
			backfill := domain.Message{ID: 5, PeerID: 77, Media: tt.history}

			liveDesc, err := services.Extract(&live)
			require.NoError(t, err)
			backfillDesc, err := services.Extract(&backfill)
			require.NoError(t, err)

			assert.Equal(t, backfillDesc, liveDesc)
			assert.Equal(t, hasher.Hash(&backfill, backfillDesc), hasher.Hash(&live, liveDesc))
		})
	}
}

func TestConvertMessage(t *testing.T) {
	msg, ok := convertMessage(&tgbotapi.Message{
		MessageID: 9,
		Chat:      &tgbotapi.Chat{ID: -1000000000042},
		Date:      1700000000,
		Text:      "hi",
	})
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.PeerID)
	assert.Equal(t, int64(1700000000), msg.Date.Unix())
	assert.False(t, msg.HasMedia())

	_, ok = convertMessage(&tgbotapi.Message{})
	assert.False(t, ok)
}

func TestFileKey(t *testing.T) {
	assert.Zero(t, fileKey(""))
	assert.Equal(t, fileKey("AgADBAAD"), fileKey("AgADBAAD"))
	assert.NotEqual(t, fileKey("AgADBAAD"), fileKey("AgADBAAE"))
	assert.Positive(t, fileKey("AgADBAAD"))
}
