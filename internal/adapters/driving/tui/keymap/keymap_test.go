package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	assert.Contains(t, km.Quit.Keys(), "q")
	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
	assert.Contains(t, km.Back.Keys(), "esc")
	assert.Contains(t, km.Up.Keys(), "k")
	assert.Contains(t, km.Down.Keys(), "j")
	assert.Equal(t, []string{"i"}, km.Index.Keys())
	assert.Contains(t, km.Remove.Keys(), "d")
}

func TestHelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Equal(t, []key.Binding{km.Search, km.Back}, km.ShortHelp())
	assert.Len(t, km.ResultsHelp(), 5)
	assert.Contains(t, km.SourcesHelp(), km.Index)

	full := km.FullHelp()
	require.Len(t, full, 4)
	assert.Equal(t, []key.Binding{km.Help, km.Quit}, full[3])
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("q", km.Quit))
	assert.True(t, Matches("delete", km.Remove))
	assert.True(t, Matches("up", km.Up))
	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("down", km.Up))
}

func TestBindings_HaveHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := map[string]key.Binding{
		"Quit": km.Quit, "Help": km.Help, "Back": km.Back, "Search": km.Search,
		"Up": km.Up, "Down": km.Down, "Details": km.Details, "NewSearch": km.NewSearch,
		"Index": km.Index, "Remove": km.Remove, "Reload": km.Reload,
	}
	for name, b := range bindings {
		t.Run(name, func(t *testing.T) {
			assert.NotEmpty(t, b.Help().Key)
			assert.NotEmpty(t, b.Help().Desc)
		})
	}
}
