package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleCase = "../../internal/config/testdata/simple.json"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestModelsCommand(t *testing.T) {
	out, err := execute(t, "models")
	require.NoError(t, err)
	assert.Equal(t, "ideal\nmolefraction\n", out)
}

func TestRunCommand_JSONAndRunsShow(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "run", simpleCase, "--json", "--store", "file", "--store-path", dir)
	require.NoError(t, err)

	var record domain.RunRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, "simple", record.Unit)
	assert.InDelta(t, 4.0, record.Product.TotalMoles(), 1e-9)

	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	out, err = execute(t, "runs", "show", record.ID, "--store", "file", "--store-path", dir, "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "# simple")

	out, err = execute(t, "runs", "list", "--store", "file", "--store-path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, record.ID)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", simpleCase)
	require.NoError(t, err)
	assert.Contains(t, out, "simple is valid")
}

func TestRunCommand_UnknownStore(t *testing.T) {
	_, err := execute(t, "runs", "list", "--store", "tape")
	assert.ErrorContains(t, err, "unknown store")
}

func TestLifecycleCommand(t *testing.T) {
	out, err := execute(t, "lifecycle", "--phase", "ready")
	require.NoError(t, err)
	assert.Contains(t, out, "class Ready current")

	_, err = execute(t, "lifecycle", "--phase", "boiling")
	assert.Error(t, err)
}

func TestRunCommand_EncryptedStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GIBBS_STORE_KEY", "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")

	out, err := execute(t, "run", simpleCase, "--json", "--store", "file", "--store-path", dir)
	require.NoError(t, err)

	var record domain.RunRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))

	raw, err := os.ReadFile(filepath.Join(dir, record.ID+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sealed"`)
	assert.NotContains(t, string(raw), `"B":`)

	out, err = execute(t, "runs", "show", record.ID, "--store", "file", "--store-path", dir, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"B":`)
}
