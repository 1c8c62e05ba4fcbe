package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

func TestSourceCmd_Use(t *testing.T) {
	assert.Equal(t, "source", sourceCmd.Use)
}

func TestSourceCmd_HasSubcommands(t *testing.T) {
	commands := sourceCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "add")
	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "remove")
}

// Source Add Tests

func TestSourceAddCmd_RequiresIdentifier(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "add"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSourceAddCmd_ErrorsWithoutServices(t *testing.T) {
	SetServices(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "add", "@newsdrop"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSourceAddCmd_ConnectsInsideSession(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "add", "@archive"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, []string{"@archive"}, ts.sources.added)
	assert.Equal(t, 1, ts.sessions)
	assert.Contains(t, buf.String(), "Connected Added @archive (channel, id 300).")
	assert.Contains(t, buf.String(), "tgindex index")
}

func TestSourceAddCmd_AlreadyConnected(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.sources.addErr = domain.ErrAlreadyExists

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "add", "newsdrop"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "newsdrop is already connected.")
}

func TestSourceAddCmd_UnresolvableShowsReason(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.sources.addErr = domain.ErrSourceUnresolvable

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "add", "@missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnresolvable)
	assert.Contains(t, err.Error(), "adding source: The channel or group could not be found")
}

func TestSourceAddCmd_ErrorsWithoutSession(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	sessionRunner = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "add", "@archive"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram session not configured")
}

// Source List Tests

func TestSourceListCmd_Use(t *testing.T) {
	assert.Equal(t, "list", sourceListCmd.Use)
}

func TestSourceListCmd_ErrorsWithoutServices(t *testing.T) {
	SetServices(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSourceListCmd_ShowsSources(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Connected sources:")
	assert.Contains(t, output, "News Drop")
	assert.Contains(t, output, "Identifier: newsdrop")
	assert.Contains(t, output, "Peer ID:    100")
	assert.Contains(t, output, "Indexed up to message 120")
	assert.Contains(t, output, "Total: 1 sources")
}

func TestSourceListCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.sources.sources = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "No sources connected.")
}

// Source Remove Tests

func TestSourceRemoveCmd_RequiresArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "remove"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSourceRemoveCmd_KeepsDocuments(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "remove", "@newsdrop"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, []string{"@newsdrop"}, ts.sources.removed)
	assert.Contains(t, buf.String(), "Source @newsdrop removed. Indexed files are kept.")
	assert.Len(t, ts.documents.docs, 1)
}

func TestSourceRemoveCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"source", "remove", "unknown"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "removing source: Not found.", err.Error())
}
