// Package list renders navigable lists of indexed files.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// linesPerItem is the height of one rendered document.
const linesPerItem = 2

// DocumentList displays documents with a selection cursor.
type DocumentList struct {
	docs     []domain.Document
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewDocumentList creates an empty list.
func NewDocumentList(s *styles.Styles) *DocumentList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &DocumentList{styles: s, width: 80, height: 10}
}

// Update handles list navigation keys.
func (l *DocumentList) Update(msg tea.Msg) (*DocumentList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of the list.
func (l *DocumentList) View() string {
	if len(l.docs) == 0 {
		return l.styles.Muted.Render("No files")
	}

	lines := []string{l.styles.Subtitle.Render(fmt.Sprintf("Files (%d)", len(l.docs))), ""}

	visible := max((l.height-2)/linesPerItem, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.docs))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderDocument(i, &l.docs[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *DocumentList) renderDocument(index int, d *domain.Document) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	name := truncate(d.FileName, max(l.width-24, 10))
	size := HumanSize(d.FileSize)

	var first string
	if index == l.selected {
		first = l.styles.Selected.Render(fmt.Sprintf("%s%s  %s", indicator, name, size))
	} else {
		first = l.styles.Normal.Render(indicator+name) + l.styles.Muted.Render("  "+size)
	}
	first += l.styles.Badge.Render(d.FileType)

	meta := d.PostedAt.Format("2006-01-02")
	if d.SourceName != "" {
		meta = d.SourceName + " · " + meta
	}
	if text := strings.Join(strings.Fields(d.Text), " "); text != "" {
		meta += " · " + text
	}
	second := l.styles.Muted.Render("    " + truncate(meta, max(l.width-6, 20)))

	return first + "\n" + second
}

// SetDocuments replaces the list contents and resets the cursor.
func (l *DocumentList) SetDocuments(docs []domain.Document) {
	l.docs = docs
	l.selected = 0
}

// Documents returns the current documents.
func (l *DocumentList) Documents() []domain.Document {
	return l.docs
}

// Selected returns the index of the selected document.
func (l *DocumentList) Selected() int {
	return l.selected
}

// SelectedDocument returns the selected document, or nil when empty.
func (l *DocumentList) SelectedDocument() *domain.Document {
	if l.selected < 0 || l.selected >= len(l.docs) {
		return nil
	}
	return &l.docs[l.selected]
}

// MoveUp moves selection up.
func (l *DocumentList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *DocumentList) MoveDown() {
	if l.selected < len(l.docs)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *DocumentList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of documents.
func (l *DocumentList) Count() int {
	return len(l.docs)
}

// HumanSize formats a byte count, "?" when unknown.
func HumanSize(n int64) string {
	const unit = 1024
	if n <= 0 {
		return "?"
	}
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
