package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridstatus/pkg/export"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("logging:\n  level: error\n"), 0o644))
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--config", cfg))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"fuel-mix", "load", "load-forecast", "lmp", "queue", "stats", "chart", "eia", "collect", "serve"} {
		assert.True(t, names[want], want)
	}
}

func TestEIAWithoutKey(t *testing.T) {
	t.Setenv("EIA_API_KEY", "")
	_, err := run(t, "eia", "region-data", "--respondent", "MISO", "--start", "2023-07-01", "--end", "2023-07-02")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestEIABadRange(t *testing.T) {
	_, err := run(t, "eia", "fuel-type", "--respondent", "MISO", "--start", "2023-07-02", "--end", "2023-07-01")
	assert.Error(t, err)
}

func TestLMPBadMarket(t *testing.T) {
	_, err := run(t, "lmp", "--market", "HOURLY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown market")
}

func TestFuelMixBadDate(t *testing.T) {
	_, err := run(t, "fuel-mix", "--date", "yesterday-ish")
	assert.Error(t, err)
}

func TestUnknownISO(t *testing.T) {
	_, err := run(t, "queue", "--iso", "ercot")
	assert.Error(t, err)
}

func TestCollectWithoutJobs(t *testing.T) {
	_, err := run(t, "collect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no poller jobs")
}

func TestParseEIATime(t *testing.T) {
	got, err := parseEIATime("2023-07-08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 7, 8, 0, 0, 0, 0, time.UTC), got)

	zero, err := parseEIATime("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = parseEIATime("latest")
	assert.Error(t, err)
}

func TestResolveFormat(t *testing.T) {
	newCmd := func() (*cobra.Command, *outputFlags) {
		c := &cobra.Command{Use: "x"}
		f := &outputFlags{}
		f.add(c)
		return c, f
	}

	c, f := newCmd()
	require.NoError(t, c.ParseFlags([]string{"--out", "prices.xlsx"}))
	got, err := f.resolveFormat(c)
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, got)

	c, f = newCmd()
	require.NoError(t, c.ParseFlags([]string{"--out", "prices.xlsx", "--format", "json"}))
	got, err = f.resolveFormat(c)
	require.NoError(t, err)
	assert.Equal(t, export.FormatJSON, got)

	c, f = newCmd()
	require.NoError(t, c.ParseFlags([]string{"--out", "prices.txt"}))
	got, err = f.resolveFormat(c)
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, got)
}
