package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ledgerctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"init"}, {"book"}, {"get"}, {"list"}, {"avail"}, {"cancel"}, {"status"}, {"escrow"},
		{"listing", "create"}, {"listing", "update"}, {"listing", "status"}, {"listing", "get"}, {"listing", "list"},
		{"review", "submit"}, {"review", "list"}, {"review", "reputation"},
		{"token"}, {"run"},
	}
	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	db := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, db)
	assert.Equal(t, "ledger.db", db.DefValue)
}

func TestInvalidFormatIsRejected(t *testing.T) {
	_, err := execute(t, "--format", "yaml", "init")
	assert.ErrorContains(t, err, "invalid format")
}
