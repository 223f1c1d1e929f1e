package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/invsched/core/scheduler"
)

const pairInstance = `name: pair
jobs:
  - {id: use, processing_time: 4, release_date: 0, inventory_delta: -3}
  - {id: fill, processing_time: 4, release_date: 0, inventory_delta: 3}
inventory_capacity: 3
initial_inventory: 0
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestDemo(t *testing.T) {
	out, err := execute(t, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "makespan: 14")
}

func TestSolveJSON(t *testing.T) {
	path := writeTemp(t, "pair.yaml", pairInstance)
	out, err := execute(t, "solve", "-f", path, "--format", "json")
	require.NoError(t, err)
	var res scheduler.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Feasible)
	assert.Equal(t, 8, res.Makespan)
	require.Len(t, res.Schedule, 2)
	assert.Equal(t, "fill", res.Schedule[0].JobID)
}

func TestSolveCSV(t *testing.T) {
	path := writeTemp(t, "pair.yaml", pairInstance)
	out, err := execute(t, "solve", "-f", path, "--format", "csv")
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSolveErrors(t *testing.T) {
	_, err := execute(t, "solve")
	assert.Error(t, err)

	path := writeTemp(t, "pair.yaml", pairInstance)
	_, err = execute(t, "solve", "-f", path, "--format", "xml")
	assert.Error(t, err)

	_, err = execute(t, "solve", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "demo", "-c", writeTemp(t, "bad.yaml", "logging:\n  level: loud\n"))
	assert.Error(t, err)
}

func TestFeasible(t *testing.T) {
	path := writeTemp(t, "pair.yaml", pairInstance)
	out, err := execute(t, "feasible", "-f", path, "--bound", "8")
	require.NoError(t, err)
	assert.Equal(t, "feasible within 8\n", out)

	out, err = execute(t, "feasible", "-f", path, "--bound", "7")
	require.NoError(t, err)
	assert.Equal(t, "infeasible within 7\n", out)
}

func TestBench(t *testing.T) {
	out, err := execute(t, "bench", "--sizes", "1,2", "--instances", "2", "--seed", "3")
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "2", rows[2][0])

	dest := filepath.Join(t.TempDir(), "bench.csv")
	_, err = execute(t, "bench", "--sizes", "1", "--instances", "1", "-o", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "time_mean_ms")

	_, err = execute(t, "bench", "--sizes", "65")
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTemp(t, "config.yaml", "journal:\n  backend: sqlite\n  path: "+filepath.Join(dir, "runs.db")+"\n")
	_, err := execute(t, "demo", "-c", cfgPath)
	require.NoError(t, err)

	out, err := execute(t, "history", "-c", cfgPath, "--instance", "sample")
	require.NoError(t, err)
	assert.Contains(t, out, "sample")
	assert.Contains(t, out, "14")

	out, err = execute(t, "history", "-c", cfgPath, "--instance", "other")
	require.NoError(t, err)
	assert.NotContains(t, out, "sample")

	_, err = execute(t, "history")
	assert.Error(t, err)
}

func TestServeWithoutBroker(t *testing.T) {
	_, err := execute(t, "serve")
	assert.Error(t, err)
}
