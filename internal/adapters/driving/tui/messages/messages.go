// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the file search view.
	ViewSearch
	// ViewSources lists connected channels and groups.
	ViewSources
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewSources:
		return "sources"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// SearchCompleted carries matching documents back to the model.
type SearchCompleted struct {
	Query     string
	Documents []domain.Document
	Err       error
}

// SourcesLoaded carries the user's sources.
type SourcesLoaded struct {
	Sources []domain.Source
	Err     error
}

// SourceRemoved signals a source was removed.
type SourceRemoved struct {
	Identifier string
	Err        error
}

// IndexCompleted reports an indexing pass started from the sources view.
type IndexCompleted struct {
	Identifier string
	Result     domain.IndexResult
	Err        error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
