package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"sales-chart/internal/clients_api/telegram"
	"sales-chart/internal/features/charts"
	"sales-chart/internal/features/sales"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "SALESCHART"
	dateLayout = "2006-01-02"
)

// Config -
type Config struct {
	Chart    ChartConfig    `mapstructure:"chart"`
	Data     DataConfig     `mapstructure:"data"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	App      AppConfig      `mapstructure:"app"`
}

type ChartConfig struct {
	Output       string  `mapstructure:"output"`
	Engine       string  `mapstructure:"engine"`
	WidthIn      float64 `mapstructure:"width_in"`  // figure width in inches
	HeightIn     float64 `mapstructure:"height_in"` // figure height in inches
	DPI          float64 `mapstructure:"dpi"`
	Style        string  `mapstructure:"style"`
	Context      string  `mapstructure:"context"`
	Palette      string  `mapstructure:"palette"`
	Title        string  `mapstructure:"title"`
	TitleSize    float64 `mapstructure:"title_size"`
	XLabel       string  `mapstructure:"x_label"`
	YLabel       string  `mapstructure:"y_label"`
	LegendTitle  string  `mapstructure:"legend_title"`
	TickRotation float64 `mapstructure:"tick_rotation"`
	LineWidth    float64 `mapstructure:"line_width"`
	Marker       string  `mapstructure:"marker"`
}

type DataConfig struct {
	Seed              int64    `mapstructure:"seed"`
	Start             string   `mapstructure:"start"` // YYYY-MM-DD, first month is the month containing it
	Periods           int      `mapstructure:"periods"`
	Categories        []string `mapstructure:"categories"`
	BaseStart         float64  `mapstructure:"base_start"`
	BaseEnd           float64  `mapstructure:"base_end"`
	SeasonalAmplitude float64  `mapstructure:"seasonal_amplitude"`
	NoiseStd          float64  `mapstructure:"noise_std"`
}

type TelegramConfig struct {
	BotToken   string  `mapstructure:"bot_token"`
	ChatID     string  `mapstructure:"chat_id"`
	Caption    string  `mapstructure:"caption"`
	MaxRetries int     `mapstructure:"max_retries"`
	RateLimit  float64 `mapstructure:"rate_limit"` // messages per second
}

// AppConfig -
type AppConfig struct {
	LogDir string `mapstructure:"log_dir"`
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"output":     "chart.output",
	"engine":     "chart.engine",
	"style":      "chart.style",
	"context":    "chart.context",
	"palette":    "chart.palette",
	"title":      "chart.title",
	"dpi":        "chart.dpi",
	"seed":       "data.seed",
	"periods":    "data.periods",
	"start":      "data.start",
	"categories": "data.categories",
	"caption":    "telegram.caption",
	"log-dir":    "app.log_dir",
}

// LoadConfig from flags, env and files
// 1. by default
// 2. config.yaml (or --config)
// 3. .env file
// 4. environment
// 5. flags that were set explicitly
// flags may be nil.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()

	setDefaults(v)

	configFile := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := setupEnvAliases(v); err != nil {
		return nil, err
	}
	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Categories from env or a flag arrive as one comma-separated string
	config.Data.Categories = splitList(v.Get("data.categories"))

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func splitList(raw interface{}) []string {
	var items []string
	switch val := raw.(type) {
	case string:
		items = strings.Split(val, ",")
	case []string:
		items = val
	case []interface{}:
		for _, item := range val {
			if str, ok := item.(string); ok {
				items = append(items, str)
			}
		}
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}

func setupEnvAliases(v *viper.Viper) error {
	aliases := map[string]string{
		"telegram.bot_token": "TELEGRAM_BOT_TOKEN",
		"telegram.chat_id":   "TELEGRAM_CHAT_ID",
	}
	for key, env := range aliases {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// setDefaults by default
func setDefaults(v *viper.Viper) {
	opts := charts.DefaultOptions()
	params := sales.DefaultParams()

	// Chart
	v.SetDefault("chart.output", "chart.png")
	v.SetDefault("chart.engine", charts.EngineGG)
	v.SetDefault("chart.width_in", 8.0)
	v.SetDefault("chart.height_in", 8.0)
	v.SetDefault("chart.dpi", opts.DPI)
	v.SetDefault("chart.style", opts.Style)
	v.SetDefault("chart.context", opts.Context)
	v.SetDefault("chart.palette", opts.Palette)
	v.SetDefault("chart.title", opts.Title)
	v.SetDefault("chart.title_size", opts.TitleSize)
	v.SetDefault("chart.x_label", opts.XLabel)
	v.SetDefault("chart.y_label", opts.YLabel)
	v.SetDefault("chart.legend_title", opts.LegendTitle)
	v.SetDefault("chart.tick_rotation", opts.TickRotation)
	v.SetDefault("chart.line_width", opts.LineWidth)
	v.SetDefault("chart.marker", opts.Marker)

	// Data
	v.SetDefault("data.seed", int64(params.Seed))
	v.SetDefault("data.start", params.Start.Format(dateLayout))
	v.SetDefault("data.periods", params.Periods)
	v.SetDefault("data.categories", params.Categories)
	v.SetDefault("data.base_start", params.BaseStart)
	v.SetDefault("data.base_end", params.BaseEnd)
	v.SetDefault("data.seasonal_amplitude", params.SeasonalAmplitude)
	v.SetDefault("data.noise_std", params.NoiseStd)

	// Telegram
	publisher := telegram.DefaultOptions()
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.caption", "<b>Seasonal Revenue Trends</b>")
	v.SetDefault("telegram.max_retries", publisher.MaxRetries)
	v.SetDefault("telegram.rate_limit", publisher.RateLimit)

	// App
	v.SetDefault("app.log_dir", "logs")
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Chart.Output) == "" {
		return errors.New("chart.output must not be empty")
	}
	if cfg.Chart.WidthIn <= 0 || cfg.Chart.HeightIn <= 0 {
		return fmt.Errorf("chart size must be positive, got %vx%v in", cfg.Chart.WidthIn, cfg.Chart.HeightIn)
	}
	if cfg.Chart.DPI <= 0 {
		return fmt.Errorf("chart.dpi must be positive, got %v", cfg.Chart.DPI)
	}
	if cfg.Data.Seed < 0 || cfg.Data.Seed > math.MaxUint32 {
		return fmt.Errorf("data.seed must be in [0, %d], got %d", uint32(math.MaxUint32), cfg.Data.Seed)
	}
	if _, err := time.Parse(dateLayout, cfg.Data.Start); err != nil {
		return fmt.Errorf("data.start must be YYYY-MM-DD: %w", err)
	}
	if cfg.Data.Periods < 1 {
		return fmt.Errorf("data.periods must be positive, got %d", cfg.Data.Periods)
	}
	if len(cfg.Data.Categories) == 0 {
		return errors.New("data.categories must not be empty")
	}
	if cfg.Telegram.MaxRetries < 0 {
		return fmt.Errorf("telegram.max_retries must not be negative, got %d", cfg.Telegram.MaxRetries)
	}
	return nil
}

// Params converts the data section into generator parameters.
func (c DataConfig) Params() (sales.Params, error) {
	start, err := time.Parse(dateLayout, c.Start)
	if err != nil {
		return sales.Params{}, fmt.Errorf("invalid start date %q: %w", c.Start, err)
	}
	return sales.Params{
		Seed:              uint32(c.Seed),
		Start:             start,
		Periods:           c.Periods,
		Categories:        c.Categories,
		BaseStart:         c.BaseStart,
		BaseEnd:           c.BaseEnd,
		SeasonalAmplitude: c.SeasonalAmplitude,
		NoiseStd:          c.NoiseStd,
	}, nil
}

// Options converts the chart section into renderer options.
func (c ChartConfig) Options() charts.Options {
	width, height := charts.FigureSize(c.WidthIn, c.HeightIn, c.DPI)
	return charts.Options{
		Width:        width,
		Height:       height,
		DPI:          c.DPI,
		Style:        c.Style,
		Context:      c.Context,
		Palette:      c.Palette,
		Title:        c.Title,
		TitleSize:    c.TitleSize,
		XLabel:       c.XLabel,
		YLabel:       c.YLabel,
		LegendTitle:  c.LegendTitle,
		TickRotation: c.TickRotation,
		LineWidth:    c.LineWidth,
		Marker:       c.Marker,
	}
}

// PublisherOptions keeps the publisher's delays and applies the configured
// retry count and rate.
func (c TelegramConfig) PublisherOptions() telegram.Options {
	opts := telegram.DefaultOptions()
	opts.MaxRetries = c.MaxRetries
	opts.RateLimit = c.RateLimit
	return opts
}
