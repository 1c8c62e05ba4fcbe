package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

func TestExtract(t *testing.T) {
	var nilDoc *domain.DocumentMedia

	tests := []struct {
		name    string
		msg     domain.Message
		want    domain.Descriptor
		wantErr error
	}{
		{
			name: "document with mime and name",
			msg: domain.Message{ID: 1, Text: "quarterly numbers", Media: &domain.DocumentMedia{
				Size: 1024, MIMEType: "application/pdf",
				Attributes: []domain.DocumentAttribute{{Kind: "filename", FileName: "q3.pdf"}},
			}},
			want: domain.Descriptor{FileName: "q3.pdf", FileType: "pdf", FileSize: 1024, MIMEType: "application/pdf", Text: "quarterly numbers"},
		},
		{
			name: "first attribute with a name wins",
			msg: domain.Message{ID: 2, Media: &domain.DocumentMedia{
				MIMEType: "video/x-matroska",
				Attributes: []domain.DocumentAttribute{
					{Kind: "video"},
					{Kind: "filename", FileName: "talk.mkv"},
					{Kind: "filename", FileName: "ignored.mkv"},
				},
			}},
			want: domain.Descriptor{FileName: "talk.mkv", FileType: "x-matroska", MIMEType: "video/x-matroska"},
		},
		{
			name: "no mime falls back to extension",
			msg: domain.Message{ID: 3, Media: &domain.DocumentMedia{
				Attributes: []domain.DocumentAttribute{{FileName: "backup.tar.gz"}},
			}},
			want: domain.Descriptor{FileName: "backup.tar.gz", FileType: "gz"},
		},
		{
			name: "no name and no mime",
			msg:  domain.Message{ID: 4, Media: &domain.DocumentMedia{Size: 5}},
			want: domain.Descriptor{FileName: "Unnamed file", FileType: "unknown", FileSize: 5},
		},
		{
			name: "mime without subtype",
			msg:  domain.Message{ID: 5, Media: &domain.DocumentMedia{MIMEType: "binary"}},
			want: domain.Descriptor{FileName: "Unnamed file", FileType: "binary", MIMEType: "binary"},
		},
		{
			name: "photo uses message id and caption",
			msg:  domain.Message{ID: 25, Caption: "sunset", Media: &domain.PhotoMedia{FileID: 99, Size: 2048}},
			want: domain.Descriptor{FileName: "photo_25.jpg", FileType: "photo", FileSize: 2048, MIMEType: "image/jpeg", Text: "sunset"},
		},
		{
			name: "video",
			msg:  domain.Message{ID: 26, Media: &domain.VideoMedia{Size: 10}},
			want: domain.Descriptor{FileName: "video_26.mp4", FileType: "video", FileSize: 10, MIMEType: "video/mp4"},
		},
		{
			name: "audio",
			msg:  domain.Message{ID: 27, Media: &domain.AudioMedia{}},
			want: domain.Descriptor{FileName: "audio_27.mp3", FileType: "audio", MIMEType: "audio/mp3"},
		},
		{
			name: "body wins over caption",
			msg:  domain.Message{ID: 28, Text: "body", Caption: "caption", Media: &domain.AudioMedia{}},
			want: domain.Descriptor{FileName: "audio_28.mp3", FileType: "audio", MIMEType: "audio/mp3", Text: "body"},
		},
		{
			name:    "no media",
			msg:     domain.Message{ID: 29, Text: "just text"},
			wantErr: domain.ErrNoMedia,
		},
		{
			name:    "document kind without attachment",
			msg:     domain.Message{ID: 30, Media: nilDoc},
			wantErr: domain.ErrExtraction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(&tt.msg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_NilMessage(t *testing.T) {
	_, err := Extract(nil)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
