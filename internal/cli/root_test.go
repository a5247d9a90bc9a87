package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fallbackdb", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "exec", "shell", "tables"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "c", cfg.Shorthand)

	for _, name := range []string{"data-dir", "log-level", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExecCommand_LocalStore(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "--data-dir", dir, "--log-level", "error",
		"exec", "INSERT INTO payments (amount, status) VALUES ($1, $2)", "50000", "pending")
	require.NoError(t, err)

	var res struct {
		Rows     []map[string]any `json:"rows"`
		RowCount int              `json:"rowCount"`
		Command  string           `json:"command"`
		OID      int64            `json:"oid"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.RowCount)
	assert.Equal(t, "INSERT", res.Command)
	assert.Equal(t, int64(1), res.OID)
	assert.Equal(t, float64(50000), res.Rows[0]["amount"])
	assert.Equal(t, "pending", res.Rows[0]["status"])

	// a second process sees the persisted row
	out, err = run(t, "--data-dir", dir, "--log-level", "error",
		"exec", "-o", "yaml", "SELECT * FROM payments WHERE status = $1", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "rowCount: 1")
	assert.Contains(t, out, "amount: 50000")
}

func TestExecCommand_InvalidOutput(t *testing.T) {
	_, err := run(t, "--data-dir", t.TempDir(), "exec", "-o", "xml", "SELECT * FROM users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output")
}

func TestRoot_InvalidLogFormat(t *testing.T) {
	_, err := run(t, "--data-dir", t.TempDir(), "--log-format", "xml", "tables")
	require.Error(t, err)
}

func TestTablesCommand(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--data-dir", dir, "--log-level", "error",
		"exec", "CREATE TABLE IF NOT EXISTS audit (id SERIAL, action TEXT)")
	require.NoError(t, err)
	_, err = run(t, "--data-dir", dir, "--log-level", "error",
		"exec", "INSERT INTO audit (action) VALUES ($1)", "login")
	require.NoError(t, err)

	out, err := run(t, "--data-dir", dir, "--log-level", "error", "tables", "--json")
	require.NoError(t, err)

	var infos []tableInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 11)
	assert.Equal(t, "alerts", infos[0].Name)
	assert.Equal(t, "audit", infos[1].Name)
	assert.Equal(t, 1, infos[1].Rows)
	assert.Contains(t, infos[1].Schema, "CREATE TABLE IF NOT EXISTS audit")
}
