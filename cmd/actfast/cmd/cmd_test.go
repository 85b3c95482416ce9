package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/actfast/pkg/config"
	"github.com/ssargent/actfast/pkg/di"
	"github.com/ssargent/actfast/pkg/sensors"
	"github.com/ssargent/actfast/pkg/storage"
)

// resetFlags restores every flag to its default between executions of the
// shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	SetContainer(di.NewContainer())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// writeConfig points the data directory at a temp dir
func writeConfig(t *testing.T) (configPath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	configPath = filepath.Join(dir, "config.yaml")
	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	cfg.Logging.Level = "error"
	require.NoError(t, config.SaveConfig(cfg, configPath))
	return configPath, dataDir
}

func TestSynthAndDecode_GT3X(t *testing.T) {
	configPath, _ := writeConfig(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "subject.gt3x")

	_, err := execute(t, "synth", file, "--config", configPath, "--rate", "50", "--seconds", "4", "--lux")
	require.NoError(t, err)

	out := filepath.Join(dir, "subject.json")
	_, err = execute(t, "decode", file, "--config", configPath, "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var res sensors.Result
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "Actigraph GT3X", res.Format)
	assert.Equal(t, 200, res.Tables[sensors.TableActivity].Len())
	assert.Equal(t, 4, res.Tables[sensors.TableLux].Len())
	assert.Equal(t, "SYNTH0000001", res.Metadata["info"]["Serial Number"])

	// second second only
	_, err = execute(t, "decode", file, "--config", configPath, "-o", out,
		"--from", "1700000001000000000", "--to", "1700000002000000000")
	require.NoError(t, err)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, 50, res.Tables[sensors.TableActivity].Len())
	assert.Equal(t, 1, res.Tables[sensors.TableLux].Len())

	summary, err := execute(t, "decode", file, "--config", configPath, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, summary, "Format: Actigraph GT3X")
	assert.Contains(t, summary, "acceleration")
	assert.Contains(t, summary, "Serial Number")
}

func TestSynthAndDecode_GeneActiv(t *testing.T) {
	configPath, _ := writeConfig(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "subject.bin")
	out := filepath.Join(dir, "subject.json")

	_, err := execute(t, "synth", file, "--config", configPath, "--device", "geneactiv", "--rate", "50", "--seconds", "8")
	require.NoError(t, err)

	_, err = execute(t, "decode", file, "--config", configPath, "--hex-pages", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var res sensors.Result
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "GeneActiv BIN", res.Format)
	assert.Equal(t, 400, res.Tables[sensors.TableActivity].Len())
}

func TestInspect(t *testing.T) {
	configPath, _ := writeConfig(t)
	file := filepath.Join(t.TempDir(), "subject.gt3x")

	_, err := execute(t, "synth", file, "--config", configPath, "--rate", "30", "--seconds", "3")
	require.NoError(t, err)

	out, err := execute(t, "inspect", file, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Records: 4")
	assert.Contains(t, out, "Checksum mismatches: 0")
	assert.Contains(t, out, "Activity")
}

func TestStoredResults(t *testing.T) {
	configPath, dataDir := writeConfig(t)
	file := filepath.Join(t.TempDir(), "subject.gt3x")

	_, err := execute(t, "synth", file, "--config", configPath, "--rate", "30", "--seconds", "2")
	require.NoError(t, err)

	out, err := execute(t, "decode", file, "--config", configPath, "--store", "-o", filepath.Join(t.TempDir(), "r.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Stored result")

	s, err := storage.NewResultStore(filepath.Join(dataDir, "results"))
	require.NoError(t, err)
	list, err := s.List()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.Len(t, list, 1)
	id := list[0].ID
	assert.Equal(t, "subject.gt3x", list[0].Name)

	out, err = execute(t, "results", "list", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = execute(t, "results", "show", id, "--config", configPath, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Activity")

	out, err = execute(t, "results", "delete", id, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted result "+id)

	_, err = execute(t, "results", "show", id, "--config", configPath)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	dataDir := filepath.Join(dir, "data")

	out, err := execute(t, "init", "--config", configPath, "--data-dir", dataDir, "--print-key")
	require.NoError(t, err)
	assert.Contains(t, out, "API key:")

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Len(t, cfg.Security.APIKey, 64)
	assert.DirExists(t, dataDir)

	out, err = execute(t, "init", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	again, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Security.APIKey, again.Security.APIKey)
}

func TestCommandErrors(t *testing.T) {
	configPath, _ := writeConfig(t)
	dir := t.TempDir()

	_, err := execute(t, "decode", filepath.Join(dir, "missing.gt3x"), "--config", configPath)
	assert.Error(t, err)

	_, err = execute(t, "decode", filepath.Join(dir, "x.gt3x"), "--config", configPath, "--format", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = execute(t, "synth", filepath.Join(dir, "x.cwa"), "--config", configPath, "--device", "axivity")
	assert.ErrorContains(t, err, "unknown device")

	_, err = execute(t, "decode", filepath.Join(dir, "x.gt3x"), "--config", configPath, "--log-level", "loud")
	assert.Error(t, err)

	_, err = execute(t, "serve", "--config", configPath)
	assert.ErrorContains(t, err, "no API key configured")
}
