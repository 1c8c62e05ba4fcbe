package domain

import "time"

// Message is a platform message as seen by the indexing pipeline.
type Message struct {
	// ID is the message id, unique and increasing within its chat.
	ID int

	// PeerID is the chat the message was posted in.
	PeerID int64

	// Date is when the message was posted.
	Date time.Time

	// Text is the message body.
	Text string

	// Caption is the media caption, for platforms that keep it apart from the body.
	Caption string

	// Media is the attachment, nil when the message carries none.
	Media Media
}

// HasMedia reports whether the message carries any attachment.
func (m *Message) HasMedia() bool {
	return m.Media != nil
}

// MediaKind names the variants of Media.
type MediaKind int

const (
	// MediaNone means no recognised attachment.
	MediaNone MediaKind = iota
	MediaDocument
	MediaPhoto
	MediaVideo
	MediaAudio
)

func (k MediaKind) String() string {
	switch k {
	case MediaDocument:
		return "document"
	case MediaPhoto:
		return "photo"
	case MediaVideo:
		return "video"
	case MediaAudio:
		return "audio"
	default:
		return "none"
	}
}

// Media is the closed set of attachment kinds. The platform adapter
// classifies raw media once into one of the variants below; a nil Media
// means the message carries nothing the pipeline understands.
type Media interface {
	Kind() MediaKind
	media()
}

// DocumentMedia is a file attachment.
type DocumentMedia struct {
	FileID     int64
	Size       int64
	MIMEType   string
	Attributes []DocumentAttribute
}

// DocumentAttribute is one attribute attached to a document. Only some
// attributes expose a file name.
type DocumentAttribute struct {
	Kind     string
	FileName string
}

// Attribute kinds both platform adapters agree on.
const (
	AttrFilename = "filename"
	AttrVideo    = "video"
	AttrAudio    = "audio"
)

// PhotoMedia is a compressed photo.
type PhotoMedia struct {
	FileID int64
	Size   int64
}

// VideoMedia is a video sent as video rather than as a file.
type VideoMedia struct {
	FileID int64
	Size   int64
}

// AudioMedia is an audio track sent as audio rather than as a file.
type AudioMedia struct {
	FileID int64
	Size   int64
}

func (*DocumentMedia) Kind() MediaKind { return MediaDocument }
func (*PhotoMedia) Kind() MediaKind    { return MediaPhoto }
func (*VideoMedia) Kind() MediaKind    { return MediaVideo }
func (*AudioMedia) Kind() MediaKind    { return MediaAudio }

func (*DocumentMedia) media() {}
func (*PhotoMedia) media()    {}
func (*VideoMedia) media()    {}
func (*AudioMedia) media()    {}

// Entity is a resolved channel or group on the platform.
type Entity struct {
	ID       int64
	Title    string
	Username string
	Kind     SourceKind
}

// HistoryRequest bounds a history fetch.
type HistoryRequest struct {
	// Limit is the maximum number of messages to return.
	Limit int

	// MinID, when positive, restricts the fetch to messages strictly newer
	// than it and switches the order to oldest first.
	MinID int
}

// Ascending reports whether messages are delivered oldest first.
func (r HistoryRequest) Ascending() bool {
	return r.MinID > 0
}
