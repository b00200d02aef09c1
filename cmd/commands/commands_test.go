package commands

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sales-chart/internal/features/sales"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestRootRendersDefaultChart(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t)
	require.NoError(t, err)
	assert.Equal(t, "chart.png\n", out)

	w, h := decodeSize(t, "chart.png")
	assert.Equal(t, 512, w)
	assert.Equal(t, 512, h)
	assert.FileExists(t, filepath.Join("logs", "app.log"))

	first, err := os.ReadFile("chart.png")
	require.NoError(t, err)
	_, err = run(t, "render")
	require.NoError(t, err)
	second, err := os.ReadFile("chart.png")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderWithGoChartEngine(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join("out", "gochart.png")
	_, err := run(t, "render", "--engine", "gochart", "--output", path, "--style", "darkgrid")
	require.NoError(t, err)

	w, h := decodeSize(t, path)
	assert.Equal(t, 512, w)
	assert.Equal(t, 512, h)
}

func TestRenderRejectsUnknownEngine(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "--engine", "ascii")
	require.Error(t, err)
	assert.NoFileExists(t, "chart.png")
}

func TestDataPrintsTable(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "data")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 37)
	assert.Contains(t, lines[0], "Month")
	assert.Contains(t, lines[0], "Baseline")
	assert.Contains(t, lines[1], "2023-01-31")
	assert.Contains(t, lines[1], "Electronics")
	assert.Contains(t, lines[36], "2023-12-31")
	assert.Contains(t, lines[36], "Groceries")
}

func TestDataJSON(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "data", "--format", "json", "--categories", "A,B", "--periods", "6")
	require.NoError(t, err)

	var table sales.Table
	require.NoError(t, json.Unmarshal([]byte(out), &table))
	assert.Equal(t, 12, table.Len())
	assert.Equal(t, []string{"A", "B"}, table.Categories())
}

func TestDataSavesJSON(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join("data", "sales.json")
	out, err := run(t, "data", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var table sales.Table
	require.NoError(t, json.Unmarshal(raw, &table))
	assert.Equal(t, 36, table.Len())
}

func TestDataRejectsUnknownFormat(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "data", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestPublishRequiresChatID(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := run(t, "publish", "chart.png")
	assert.ErrorContains(t, err, "chat id")
}

func TestPublishTooManyArgs(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "publish", "a.png", "b.png")
	assert.Error(t, err)
}

func TestPublishWaitsForChart(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")

	_, err := run(t, "publish", "missing.png")
	assert.ErrorContains(t, err, "chart not ready")
}

func TestDataBaselineMatchesNoiselessRevenue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SALESCHART_DATA_NOISE_STD", "0")

	out, err := run(t, "data", "--periods", "3", "--categories", "A")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines[1:] {
		cols := strings.Fields(line)
		require.Len(t, cols, 4)
		assert.Equal(t, cols[2], cols[3], line)
	}
	assert.Contains(t, lines[1], "20000.00")
	assert.Contains(t, lines[3], "35000.00")
}
