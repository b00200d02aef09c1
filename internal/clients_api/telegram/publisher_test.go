package telegram

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sales-chart/internal/infra/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	errs []error
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func testOptions() Options {
	return Options{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func writeChart(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG fake"), 0644))
	return path
}

func TestPublishChartSendsPhoto(t *testing.T) {
	sender := &fakeSender{}
	p := NewPublisher(sender, -100123, testOptions())

	require.NoError(t, p.PublishChart(context.Background(), writeChart(t), "<b>Revenue</b>"))

	require.Len(t, sender.sent, 1)
	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100123), photo.ChatID)
	assert.Equal(t, "<b>Revenue</b>", photo.Caption)
	assert.Equal(t, tgbotapi.ModeHTML, photo.ParseMode)

	file, ok := photo.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "chart.png", file.Name)
}

func TestPublishChartRetriesRateLimit(t *testing.T) {
	sender := &fakeSender{errs: []error{
		&tgbotapi.Error{Code: 429, Message: "Too Many Requests", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 1}},
		&tgbotapi.Error{Code: 502, Message: "Bad Gateway"},
	}}
	p := NewPublisher(sender, 42, testOptions())

	require.NoError(t, p.PublishChart(context.Background(), writeChart(t), ""))
	assert.Len(t, sender.sent, 3)
}

func TestPublishChartDoesNotRetryPermanentErrors(t *testing.T) {
	sender := &fakeSender{errs: []error{&tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}}}
	p := NewPublisher(sender, 42, testOptions())

	err := p.PublishChart(context.Background(), writeChart(t), "")
	require.Error(t, err)
	assert.Len(t, sender.sent, 1)

	var he *retry.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, 400, he.StatusCode)
}

func TestPublishChartOpensCircuit(t *testing.T) {
	boom := &tgbotapi.Error{Code: 500, Message: "Internal Server Error"}
	sender := &fakeSender{errs: []error{boom, boom, boom, boom, boom}}
	p := NewPublisher(sender, 42, Options{MaxRetries: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})

	err := p.PublishChart(context.Background(), writeChart(t), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, sender.sent, 3)
}

func TestPublishChartMissingFile(t *testing.T) {
	sender := &fakeSender{}
	p := NewPublisher(sender, 42, testOptions())

	err := p.PublishChart(context.Background(), filepath.Join(t.TempDir(), "nope.png"), "")
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestPublishChartCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender := &fakeSender{}
	p := NewPublisher(sender, 42, testOptions())

	err := p.PublishChart(ctx, writeChart(t), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestClassifyPassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Equal(t, plain, classify(plain))
}

func TestParseChatID(t *testing.T) {
	id, err := ParseChatID(" -1001234567890 ")
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234567890), id)

	_, err = ParseChatID("")
	assert.Error(t, err)
	_, err = ParseChatID("@channel")
	assert.Error(t, err)
}

func TestDialRejectsEmptyToken(t *testing.T) {
	_, err := Dial("")
	assert.Error(t, err)
}
