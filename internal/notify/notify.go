// Package notify delivers report summaries.
package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes summaries to the application log.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, text string) error {
	n.logger.Info().
		Str("summary", text).
		Msg("task summary")
	return nil
}

// Sender is the part of the Telegram bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// maxMessageLength is the Telegram limit for one text message, counted in
// UTF-16 code units.
const maxMessageLength = 4096

// TelegramNotifier posts summaries to a single chat.
type TelegramNotifier struct {
	api    Sender
	chatID int64
}

// NewTelegramNotifier authorizes the bot token against the Telegram API.
func NewTelegramNotifier(token string, chatID int64, logger zerolog.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logger.Info().
		Str("account", api.Self.UserName).
		Int64("chat_id", chatID).
		Msg("telegram notifier authorized")

	return NewTelegramNotifierWithSender(api, chatID), nil
}

func NewTelegramNotifierWithSender(api Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID}
}

// Notify sends text in as many messages as the Telegram length limit needs.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLength) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, chunk)
		msg.DisableWebPagePreview = true
		if _, err := n.api.Send(msg); err != nil {
			return fmt.Errorf("send summary to %d: %w", n.chatID, err)
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit UTF-16 code units.
// Chunks break after a newline when possible; longer lines are cut mid-line.
// Joining the chunks gives back text.
func splitMessage(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := textLen(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			head, rest := cutAt(line, limit)
			chunks = append(chunks, head)
			line, n = rest, textLen(rest)
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return chunks
}

func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// cutAt splits s before the rune that would push it past limit.
func cutAt(s string, limit int) (string, string) {
	n := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if n+w > limit && i > 0 {
			return s[:i], s[i:]
		}
		n += w
	}
	return s, ""
}
