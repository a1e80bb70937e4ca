package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleScenarioGolden(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/lifecycle.yaml")
	require.NoError(t, err)

	res, err := RunScenario(context.Background(), tempDB(t), sc)
	require.NoError(t, err)
	assert.Zero(t, res.Failed)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "lifecycle", []byte(res.Transcript()))
}

func TestRunCommandReportsFailedSteps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wrong.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: wrong
steps:
  - op: book
    resource: villa
    requester: alice
    start: 10
    end: 20
    price: "1"
  - op: book
    resource: villa
    requester: bob
    start: 15
    end: 25
    price: "1"
`), 0o644))

	out, err := execute(t, "--db", filepath.Join(dir, "ledger.db"), "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL  2 book           BookingOverlap (want ok)")
	assert.Contains(t, out, "2 steps, 1 failed")
}

func TestLoadScenarioRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: bad\nsteps:\n  - op: book\n    colour: red\n"), 0o644))
	_, err := LoadScenario(path)
	assert.Error(t, err)
}
