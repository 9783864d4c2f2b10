// Package bot implements the Telegram companion bot: it mirrors Telegram
// users into the database, opportunistically links them to registered
// accounts, and answers a small set of commands.
package bot

import (
	"context"
	"log/slog"

	"inkwell/internal/featureflags"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender posts messages back to Telegram. Satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot handles incoming Telegram updates.
type Bot struct {
	api    Sender
	users  repository.UserRepository
	chats  repository.ChatRepository
	flags  *featureflags.Manager
	logger *slog.Logger
}

// New wires a Bot from its dependencies.
func New(api Sender, users repository.UserRepository, chats repository.ChatRepository, flags *featureflags.Manager, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{api: api, users: users, chats: chats, flags: flags, logger: logger}
}

// Run consumes updates sequentially until the channel closes or the context
// is cancelled. A failing handler never stops the loop.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	b.logger.Info("bot started")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping", "reason", ctx.Err())
			return
		case update, ok := <-updates:
			if !ok {
				b.logger.Info("bot update channel closed")
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one update to its handler. Handler errors are
// logged and swallowed.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	var (
		handler string
		err     error
	)
	switch msg.Command() {
	case "start":
		handler = "start"
		err = b.handleStart(ctx, msg)
	case "help":
		handler = "help"
		err = b.handleHelp(msg)
	case "stats":
		handler = "stats"
		err = b.handleStats(ctx, msg)
	case "":
		handler = "echo"
		err = b.handleMessage(msg)
	default:
		handler = "unknown"
		err = b.handleHelp(msg)
	}

	observability.BotUpdates.WithLabelValues(handler).Inc()
	if err != nil {
		b.logger.Error("update handling failed",
			"handler", handler,
			"telegram_id", msg.From.ID,
			"error", err,
		)
	}
}

// reply sends a plain-text response into the update's chat.
func (b *Bot) reply(msg *tgbotapi.Message, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, text))
	return err
}
