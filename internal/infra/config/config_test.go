package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sales-chart/internal/features/charts"
	"sales-chart/internal/features/sales"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so no config.yaml or .env leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("output", "chart.png", "")
	fs.String("style", "whitegrid", "")
	fs.Int64("seed", 42, "")
	fs.Int("periods", 12, "")
	fs.String("categories", "", "")
	fs.String("log-dir", "logs", "")
	return fs
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "chart.png", cfg.Chart.Output)
	assert.Equal(t, charts.EngineGG, cfg.Chart.Engine)
	assert.Equal(t, charts.DefaultOptions(), cfg.Chart.Options())
	assert.Equal(t, "logs", cfg.App.LogDir)
	assert.Equal(t, 3, cfg.Telegram.MaxRetries)

	params, err := cfg.Data.Params()
	require.NoError(t, err)
	assert.Equal(t, sales.DefaultParams(), params)
}

func TestLoadConfigYAML(t *testing.T) {
	dir := isolate(t)
	yaml := `chart:
  output: out/revenue.png
  style: darkgrid
  width_in: 10
  height_in: 6
  dpi: 80
data:
  seed: 7
  periods: 24
  categories:
    - Books
    - " Toys "
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "out/revenue.png", cfg.Chart.Output)
	assert.Equal(t, "darkgrid", cfg.Chart.Style)
	assert.Equal(t, []string{"Books", "Toys"}, cfg.Data.Categories)

	opts := cfg.Chart.Options()
	assert.Equal(t, 800, opts.Width)
	assert.Equal(t, 480, opts.Height)

	params, err := cfg.Data.Params()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), params.Seed)
	assert.Equal(t, 24, params.Periods)
}

func TestLoadConfigExplicitFileMustExist(t *testing.T) {
	isolate(t)
	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--config", "missing.yaml"}))

	_, err := LoadConfig(flags)
	assert.Error(t, err)
}

func TestLoadConfigEnv(t *testing.T) {
	isolate(t)
	t.Setenv("SALESCHART_CHART_PALETTE", "colorblind")
	t.Setenv("SALESCHART_DATA_CATEGORIES", "North, South ,East")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "colorblind", cfg.Chart.Palette)
	assert.Equal(t, []string{"North", "South", "East"}, cfg.Data.Categories)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "-100200", cfg.Telegram.ChatID)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SALESCHART_APP_LOG_DIR=var/log\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SALESCHART_APP_LOG_DIR") })

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "var/log", cfg.App.LogDir)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("SALESCHART_CHART_STYLE", "dark")
	t.Setenv("SALESCHART_DATA_SEED", "1")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--style", "ticks", "--categories", "A,B", "--output", "x.png"}))

	cfg, err := LoadConfig(flags)
	require.NoError(t, err)

	assert.Equal(t, "ticks", cfg.Chart.Style)
	assert.Equal(t, "x.png", cfg.Chart.Output)
	assert.Equal(t, []string{"A", "B"}, cfg.Data.Categories)
	// unset flag keeps the env value
	assert.Equal(t, int64(1), cfg.Data.Seed)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"empty output":   {"SALESCHART_CHART_OUTPUT": " "},
		"zero dpi":       {"SALESCHART_CHART_DPI": "0"},
		"negative seed":  {"SALESCHART_DATA_SEED": "-1"},
		"huge seed":      {"SALESCHART_DATA_SEED": "4294967296"},
		"bad start":      {"SALESCHART_DATA_START": "2023/01/01"},
		"zero periods":   {"SALESCHART_DATA_PERIODS": "0"},
		"no categories":  {"SALESCHART_DATA_CATEGORIES": " , "},
		"negative retry": {"SALESCHART_TELEGRAM_MAX_RETRIES": "-2"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(nil)
			assert.Error(t, err)
		})
	}
}

func TestDataConfigParams(t *testing.T) {
	c := DataConfig{Seed: 5, Start: "2024-02-10", Periods: 3, Categories: []string{"A"}}
	p, err := c.Params()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), p.Start)

	_, err = DataConfig{Start: "soon"}.Params()
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b"))
	assert.Equal(t, []string{"a"}, splitList([]interface{}{"a", 1, " "}))
	assert.Empty(t, splitList(nil))
}

func TestPublisherOptions(t *testing.T) {
	opts := TelegramConfig{MaxRetries: 5, RateLimit: 0.5}.PublisherOptions()
	assert.Equal(t, 5, opts.MaxRetries)
	assert.Equal(t, 0.5, opts.RateLimit)
	assert.Positive(t, opts.BaseDelay)
}
