package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/RazvanRotari/deadman/internal/domain"
	"github.com/RazvanRotari/deadman/internal/metrics"
	"github.com/RazvanRotari/deadman/internal/store"
)

type fakeBot struct {
	sent []string
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fakeRepo struct {
	created   []domain.Subject
	createErr error
}

func (f *fakeRepo) CreateSubject(_ context.Context, name string, chatID int64, intervalMinutes int, now time.Time) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	s := domain.Subject{
		ID: "generated-id", Name: name, ChatID: chatID,
		LastCheckIn: now, IntervalMinutes: intervalMinutes, CreatedAt: now,
	}
	f.created = append(f.created, s)
	return s.ID, nil
}

func (f *fakeRepo) RecordCheckIn(context.Context, string, time.Time) error { return nil }
func (f *fakeRepo) MarkNotified(context.Context, string, time.Time) error  { return nil }
func (f *fakeRepo) FindOverdue(context.Context, time.Time) ([]domain.Subject, error) {
	return nil, nil
}
func (f *fakeRepo) GetSubject(context.Context, string) (*domain.Subject, error) {
	return nil, store.ErrNotFound
}
func (f *fakeRepo) Close() error { return nil }

func update(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

func newTestRouter(repo store.Repo) (*Router, *fakeBot) {
	bot := &fakeBot{}
	r := NewRouter(bot, zap.NewNop(), repo, metrics.NewCollector(), 1440)
	return r, bot
}

func TestRegistrationFlow(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	r, bot := newTestRouter(repo)

	r.HandleUpdate(ctx, update(42, "/start"))
	if bot.last() != promptNameText {
		t.Fatalf("after /start: want name prompt, got %q", bot.last())
	}

	r.HandleUpdate(ctx, update(42, "John Doe"))
	if len(repo.created) != 1 {
		t.Fatalf("want exactly 1 subject created, got %d", len(repo.created))
	}
	s := repo.created[0]
	if s.Name != "John Doe" || s.ChatID != 42 || s.IntervalMinutes != 1440 {
		t.Fatalf("unexpected subject: %+v", s)
	}
	if !strings.Contains(bot.last(), "registered with id 'generated-id'") {
		t.Fatalf("reply does not contain the new id: %q", bot.last())
	}
}

func TestCancelDiscardsRegistration(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	r, bot := newTestRouter(repo)

	r.HandleUpdate(ctx, update(42, "/start"))
	r.HandleUpdate(ctx, update(42, "/cancel"))
	if bot.last() != cancelText {
		t.Fatalf("after /cancel: want ack, got %q", bot.last())
	}

	// The discarded session must not consume the next text message.
	r.HandleUpdate(ctx, update(42, "John Doe"))
	if len(repo.created) != 0 {
		t.Fatalf("subject created after cancel: %+v", repo.created)
	}
	if bot.last() != unhandledText {
		t.Fatalf("stray text after cancel: want unhandled reply, got %q", bot.last())
	}
}

func TestHelpKeepsState(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	r, bot := newTestRouter(repo)

	r.HandleUpdate(ctx, update(42, "/start"))
	r.HandleUpdate(ctx, update(42, "/help"))
	if bot.last() != helpText {
		t.Fatalf("after /help: want help text, got %q", bot.last())
	}

	// Still awaiting the name.
	r.HandleUpdate(ctx, update(42, "John Doe"))
	if len(repo.created) != 1 {
		t.Fatalf("help interrupted the registration: %d created", len(repo.created))
	}
}

func TestStoreFailureReturnsToStart(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{createErr: errors.New("disk gone")}
	r, bot := newTestRouter(repo)

	r.HandleUpdate(ctx, update(42, "/start"))
	r.HandleUpdate(ctx, update(42, "John Doe"))
	if bot.last() != storeFailText {
		t.Fatalf("after store failure: want generic error, got %q", bot.last())
	}

	// Back in the initial state: a fresh /start prompts again.
	r.HandleUpdate(ctx, update(42, "/start"))
	if bot.last() != promptNameText {
		t.Fatalf("restart after failure: want name prompt, got %q", bot.last())
	}
}

func TestIndependentConversations(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	r, _ := newTestRouter(repo)

	r.HandleUpdate(ctx, update(1, "/start"))
	r.HandleUpdate(ctx, update(2, "stray text"))
	r.HandleUpdate(ctx, update(1, "Alice"))

	if len(repo.created) != 1 || repo.created[0].ChatID != 1 {
		t.Fatalf("cross-talk between conversations: %+v", repo.created)
	}
}

func TestUnsupportedInput(t *testing.T) {
	ctx := context.Background()
	r, bot := newTestRouter(&fakeRepo{})

	r.HandleUpdate(ctx, update(42, "/start"))
	r.HandleUpdate(ctx, update(42, "/frobnicate"))
	if bot.last() != unhandledText {
		t.Fatalf("unknown command: want unhandled reply, got %q", bot.last())
	}

	// Non-message updates are ignored outright.
	r.HandleUpdate(ctx, tgbotapi.Update{})
	if bot.last() != unhandledText {
		t.Fatalf("non-message update produced a reply: %q", bot.last())
	}
}
