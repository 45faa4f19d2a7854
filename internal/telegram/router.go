// Package telegram routes bot updates into the registration dialogue.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/RazvanRotari/deadman/internal/dialogue"
	"github.com/RazvanRotari/deadman/internal/metrics"
	"github.com/RazvanRotari/deadman/internal/store"
)

// sender is the slice of the bot API the router needs; *tgbotapi.BotAPI
// satisfies it.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Router classifies incoming updates into dialogue events and performs the
// resulting actions. Conversation state lives in the dialogue session table,
// in memory only.
type Router struct {
	bot             sender
	log             *zap.Logger
	repo            store.Repo
	metrics         *metrics.Collector
	sessions        *dialogue.Sessions
	defaultInterval int // minutes, assigned to new subjects
}

// NewRouter creates a Telegram router.
func NewRouter(bot sender, log *zap.Logger, repo store.Repo, m *metrics.Collector, defaultIntervalMinutes int) *Router {
	return &Router{
		bot:             bot,
		log:             log,
		repo:            repo,
		metrics:         m,
		sessions:        dialogue.NewSessions(),
		defaultInterval: defaultIntervalMinutes,
	}
}

// HandleUpdate routes a single update through the dialogue state machine.
// Non-message updates are ignored.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	event := classify(text)
	action := r.sessions.Step(chatID, event)

	switch action {
	case dialogue.ActionPromptName:
		r.sendText(chatID, promptNameText)
	case dialogue.ActionRegister:
		r.register(ctx, chatID, text)
	case dialogue.ActionCancel:
		r.sendText(chatID, cancelText)
	case dialogue.ActionHelp:
		r.sendText(chatID, helpText)
	case dialogue.ActionUnhandled:
		r.sendText(chatID, unhandledText)
	}
}

// classify maps message text to a dialogue event.
func classify(text string) dialogue.Event {
	switch {
	case text == "":
		return dialogue.EventUnsupported
	case strings.HasPrefix(text, "/start"):
		return dialogue.EventStart
	case strings.HasPrefix(text, "/cancel"):
		return dialogue.EventCancel
	case strings.HasPrefix(text, "/help"):
		return dialogue.EventHelp
	case strings.HasPrefix(text, "/"):
		return dialogue.EventUnsupported
	default:
		return dialogue.EventText
	}
}

// register creates the subject, binding it to the originating chat.
func (r *Router) register(ctx context.Context, chatID int64, name string) {
	id, err := r.repo.CreateSubject(ctx, name, chatID, r.defaultInterval, time.Now().UTC())
	if err != nil {
		r.log.Error("create subject failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, storeFailText)
		return
	}
	r.metrics.RecordRegistration()
	r.log.Info("subject registered",
		zap.String("subjectID", id),
		zap.Int64("chatID", chatID),
	)
	r.sendText(chatID, fmt.Sprintf("You are registered with id '%s'", id))
}

// sendText sends a plain text message to the given chat.
func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}
