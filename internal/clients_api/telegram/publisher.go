package telegram

// Delivers rendered charts to a Telegram chat.
// Every send goes through a rate limiter, then a circuit breaker, and is
// retried on 429 / 5xx with retry.Do.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	logging "sales-chart/internal/infra/log"
	"sales-chart/internal/infra/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sender is the part of *tgbotapi.BotAPI the publisher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// messages per second; zero disables the limiter
	RateLimit float64
}

func DefaultOptions() Options {
	return Options{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   30 * time.Second,
		RateLimit:  1,
	}
}

type Publisher struct {
	sender         Sender
	chatID         int64
	rateLimiter    *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker
	retry          retry.Options
}

// Dial authorizes the bot token against the Bot API.
func Dial(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	logging.LogInfo("Telegram bot authorized", zap.String("username", bot.Self.UserName))
	return bot, nil
}

// ParseChatID accepts numeric chat ids, including negative group ids.
func ParseChatID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("telegram chat id is empty")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", s, err)
	}
	return id, nil
}

func NewPublisher(sender Sender, chatID int64, opts Options) *Publisher {
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "TelegramPublisher",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.LogWarn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Publisher{
		sender:         sender,
		chatID:         chatID,
		rateLimiter:    limiter,
		circuitBreaker: breaker,
		retry: retry.Options{
			MaxRetries: opts.MaxRetries,
			BaseDelay:  opts.BaseDelay,
			MaxDelay:   opts.MaxDelay,
		},
	}
}

// PublishChart sends the PNG at path as a photo with an HTML caption.
func (p *Publisher) PublishChart(ctx context.Context, path, caption string) error {
	requestID := logging.GenerateRequestID()
	logger := logging.RequestLogger(requestID)
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read chart: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("chart file %s is empty", path)
	}

	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FileBytes{Name: filepath.Base(path), Bytes: data})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML

	attempt := 0
	err = retry.Do(ctx, p.retry, func() error {
		attempt++
		logger.Debug("Sending chart", zap.Int("attempt", attempt), zap.Int64("chat_id", p.chatID))
		return p.send(ctx, photo)
	})
	if err != nil {
		logging.LogError("Failed to publish chart",
			zap.String("request_id", requestID),
			zap.String("path", path),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return fmt.Errorf("failed to publish chart: %w", err)
	}

	logging.LogSuccess("Chart published to Telegram",
		zap.String("request_id", requestID),
		zap.Int64("chat_id", p.chatID),
		zap.Int("attempts", attempt),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

func (p *Publisher) send(ctx context.Context, c tgbotapi.Chattable) error {
	if p.rateLimiter != nil {
		if err := p.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}
	_, err := p.circuitBreaker.Execute(func() (interface{}, error) {
		msg, err := p.sender.Send(c)
		if err != nil {
			return nil, classify(err)
		}
		return msg, nil
	})
	return err
}

// classify turns Bot API failures into *retry.HTTPError so retry.Do can tell
// rate limits and server errors from permanent ones.
func classify(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return &retry.HTTPError{
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
		}
	}
	return err
}
