package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

const snippetLength = 50

// fileIcon returns a marker for a file type.
func fileIcon(fileType string) string {
	switch strings.ToLower(fileType) {
	case "jpg", "jpeg", "png", "gif", "image", "photo":
		return "🖼️"
	case "mp4", "avi", "mov", "mkv", "video":
		return "🎬"
	case "mp3", "wav", "ogg", "audio", "mpeg":
		return "🔊"
	case "pdf":
		return "📕"
	case "doc", "docx":
		return "📝"
	case "xls", "xlsx":
		return "📊"
	case "ppt", "pptx":
		return "📑"
	case "zip", "rar", "7z":
		return "🗜️"
	default:
		return "📄"
	}
}

// snippet shortens text to the listing width.
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= snippetLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:snippetLength-3]) + "..."
}

func formatDocuments(header string, docs []domain.Document) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	for i := range docs {
		d := &docs[i]
		fmt.Fprintf(&sb, "%d. %s %s", i+1, fileIcon(d.FileType), d.FileName)
		if s := snippet(d.Text); s != "" {
			fmt.Fprintf(&sb, " - %s", s)
		}
		source := d.SourceName
		if source == "" {
			source = "unknown source"
		}
		fmt.Fprintf(&sb, "\n   From %s - %s\n", source, d.PostedAt.Format("02 Jan 2006"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSources(sources []domain.Source) string {
	var sb strings.Builder
	sb.WriteString("Your connected sources:\n\n")
	for i := range sources {
		s := &sources[i]
		fmt.Fprintf(&sb, "%d. %s (added on %s", i+1, s.DisplayName(), s.CreatedAt.Format("2006-01-02"))
		if s.LastIndexedAt != nil {
			fmt.Fprintf(&sb, ", indexed %s", s.LastIndexedAt.Format("2006-01-02 15:04"))
		}
		sb.WriteString(")\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// indexSummary describes a pass, including partial progress on failure.
func indexSummary(result domain.IndexResult, err error) string {
	name := "source"
	if result.Source != nil {
		name = result.Source.DisplayName()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Indexed %d new file(s) from %s (%d message(s) scanned", result.Indexed, name, result.Scanned)
	if result.Duplicates > 0 {
		fmt.Fprintf(&sb, ", %d already indexed", result.Duplicates)
	}
	if result.Failed > 0 {
		fmt.Fprintf(&sb, ", %d skipped", result.Failed)
	}
	sb.WriteString(").")
	if err != nil {
		if result.Scanned == 0 {
			return domain.UserMessage(err)
		}
		sb.WriteString("\nStopped early: ")
		sb.WriteString(domain.UserMessage(err))
	}
	return sb.String()
}
