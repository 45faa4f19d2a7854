// Package notifier defines the outbound notification capability and its
// Telegram implementation.
package notifier

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers a text message to a contact channel. Failures are
// transient from the caller's point of view; the sweeper retries on the
// next sweep.
type Notifier interface {
	Send(chatID int64, text string) error
}

// Telegram sends notifications through the Bot API.
type Telegram struct {
	bot *tgbotapi.BotAPI
}

// NewTelegram wraps a bot client as a Notifier.
func NewTelegram(bot *tgbotapi.BotAPI) *Telegram {
	return &Telegram{bot: bot}
}

// Send delivers a plain text message to the given chat.
func (t *Telegram) Send(chatID int64, text string) error {
	_, err := t.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
