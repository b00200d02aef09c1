package commands

// Command to send an already rendered chart to Telegram
// Cancelled on SIGINT / SIGTERM

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-chart/internal/clients_api/telegram"
	"sales-chart/internal/infra/config"
	"sales-chart/internal/infra/fs"
	logging "sales-chart/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const chartWait = 2 * time.Second

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish [path]",
		Short: "Send a rendered chart to Telegram",
		Long: `Send a PNG chart to the configured Telegram chat. The path defaults to the configured
output (chart.output). Requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPublish,
	}
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	path := cfg.Chart.Output
	if len(args) == 1 {
		path = args[0]
	}
	return publishChart(cmd.Context(), cfg, path)
}

func publishChart(parent context.Context, cfg *config.Config, path string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chatID, err := telegram.ParseChatID(cfg.Telegram.ChatID)
	if err != nil {
		return fmt.Errorf("telegram.chat_id: %w", err)
	}

	if _, err := fs.WaitForFile(ctx, path, chartWait); err != nil {
		return fmt.Errorf("chart not ready: %w", err)
	}

	bot, err := telegram.Dial(cfg.Telegram.BotToken)
	if err != nil {
		logging.LogError("Failed to initialize bot", zap.Error(err))
		return err
	}

	publisher := telegram.NewPublisher(bot, chatID, cfg.Telegram.PublisherOptions())
	return publisher.PublishChart(ctx, path, cfg.Telegram.Caption)
}
