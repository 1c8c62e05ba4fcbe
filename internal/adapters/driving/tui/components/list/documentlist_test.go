package list

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

func sampleDocs() []domain.Document {
	posted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Document{
		{ID: "1", FileName: "report.pdf", FileType: "pdf", FileSize: 2048, SourceName: "News Drop", PostedAt: posted},
		{ID: "2", FileName: "photo_7.jpg", FileType: "photo", PostedAt: posted, Text: "sunset\nover the bay"},
		{ID: "3", FileName: "song.mp3", FileType: "audio", FileSize: 5 << 20, PostedAt: posted},
	}
}

func TestDocumentList_Navigation(t *testing.T) {
	l := NewDocumentList(nil)
	assert.Nil(t, l.SelectedDocument())

	l.SetDocuments(sampleDocs())
	assert.Equal(t, "1", l.SelectedDocument().ID)

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, "2", l.SelectedDocument().ID)

	l.SetDocuments(sampleDocs()[:1])
	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 1, l.Count())
}

func TestDocumentList_View(t *testing.T) {
	l := NewDocumentList(nil)
	assert.Contains(t, l.View(), "No files")

	l.SetDocuments(sampleDocs())
	l.SetDimensions(100, 40)
	view := l.View()
	assert.Contains(t, view, "Files (3)")
	assert.Contains(t, view, "report.pdf")
	assert.Contains(t, view, "2.0 KB")
	assert.Contains(t, view, "News Drop · 2024-03-01")
	assert.Contains(t, view, "sunset over the bay")
}

func TestDocumentList_ViewScrollsToSelection(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDocuments(sampleDocs())
	l.SetDimensions(100, 4)

	l.MoveDown()
	l.MoveDown()
	view := l.View()
	assert.Contains(t, view, "song.mp3")
	assert.NotContains(t, view, "report.pdf")
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "?", HumanSize(0))
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "1.5 KB", HumanSize(1536))
	assert.Equal(t, "5.0 MB", HumanSize(5<<20))
	assert.Equal(t, "2.0 GB", HumanSize(2<<30))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	got := truncate("a very long file name.pdf", 10)
	require.Len(t, []rune(got), 10)
	assert.Equal(t, "a very ...", got)
}
