package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-ledger/internal/utils"
)

// execute runs ledgerctl with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func tempDB(t *testing.T) string {
	return filepath.Join(t.TempDir(), "ledger.db")
}

func TestInitIsIdempotent(t *testing.T) {
	db := tempDB(t)
	for i := 0; i < 2; i++ {
		out, err := execute(t, "--db", db, "init")
		require.NoError(t, err)
		assert.Contains(t, out, "schema version 2")
	}
}

func TestBookAndInspect(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "--db", db, "listing", "create", "villa", "--owner", "olga", "--hash", "bafy")
	require.NoError(t, err)
	assert.Equal(t, "listing villa owner=olga status=AVAILABLE hash=bafy\n", out)

	out, err = execute(t, "--db", db, "book", "--resource", "villa", "--requester", "alice",
		"--start", "1704067200", "--end", "1704153600", "--price", "1000000000")
	require.NoError(t, err)
	assert.Equal(t, "booked 0\n", out)

	out, err = execute(t, "--db", db, "book", "--resource", "villa", "--requester", "bob",
		"--start", "1704100000", "--end", "1704200000", "--price", "5")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [BookingOverlap]")

	out, err = execute(t, "--db", db, "avail", "--resource", "villa", "--start", "1704153600", "--end", "1704240000")
	require.NoError(t, err)
	assert.Equal(t, "available\n", out)

	out, err = execute(t, "--db", db, "status", "0", "confirmed", "--actor", "olga")
	require.NoError(t, err)
	assert.Contains(t, out, "status=CONFIRMED")

	out, err = execute(t, "--db", db, "--format", "json", "get", "0")
	require.NoError(t, err)
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			ID         uint64 `json:"id"`
			Status     string `json:"status"`
			TotalPrice string `json:"total_price"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "CONFIRMED", resp.Data.Status)
	assert.Equal(t, "1000000000", resp.Data.TotalPrice)

	out, err = execute(t, "--db", db, "list", "--requester", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "booking 0 villa requester=alice")
}

func TestCommandErrors(t *testing.T) {
	db := tempDB(t)

	_, err := execute(t, "--db", db, "get", "zero")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "--db", db, "--format", "json", "get", "3")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "NotFound", resp.Error.Code)

	_, err = execute(t, "--db", db, "list")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "--db", db, "book", "--resource", "villa", "--requester", "alice", "--start", "1", "--end", "2", "--price", "lots")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTokenCommand(t *testing.T) {
	out, err := execute(t, "token", "alice", "--secret", "s3cret")
	require.NoError(t, err)

	sub, err := utils.ParseAccessToken("s3cret", out[:len(out)-1])
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	t.Setenv("JWT_SECRET", "")
	_, err = execute(t, "token", "alice")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExitError(t *testing.T) {
	err := WrapExitError(ExitCommandError, "open ledger", assert.AnError)
	assert.Equal(t, "open ledger: "+assert.AnError.Error(), err.Error())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
