package bot

import (
	"context"
	"fmt"

	"inkwell/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `Inkwell Bot Commands:

/start - Register your Telegram account
/help - Show this help message
/stats - Show API statistics

About this bot:
This bot is integrated with the Inkwell API and stores your Telegram
information for future notifications and updates.

API endpoints:
- Public: /api/public/
- Protected: /api/protected/ (requires authentication)`

// handleStart registers the Telegram user and, on first contact, tries to
// link it to an existing account whose username matches the Telegram handle.
// The handle match is unverified on purpose; the identity row is written
// regardless of the outcome.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	from := msg.From

	tu, err := b.chats.GetByTelegramID(ctx, from.ID)
	if err != nil {
		return err
	}

	if tu != nil {
		b.logger.Info("known user started the bot", "telegram_id", from.ID, "username", from.UserName)
		return b.reply(msg, fmt.Sprintf(`Welcome back, %s!

You're already registered in our system.
Use /help to see available commands.`, from.FirstName))
	}

	tu = &models.TelegramUser{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
		IsActive:   true,
	}
	if err := b.chats.Create(ctx, tu); err != nil {
		return err
	}
	b.logger.Info("telegram user registered", "telegram_id", from.ID, "username", from.UserName)

	if from.UserName == "" {
		return b.reply(msg, fmt.Sprintf(`Hello %s!

Welcome to the Inkwell bot!

Your Telegram information has been saved with ID: %d

Please set a username in Telegram and use /start again for better integration.`,
			from.FirstName, from.ID))
	}

	account, err := b.users.GetByUsername(ctx, from.UserName)
	if err != nil {
		return err
	}

	if account != nil && b.flags.Enabled("bot_autolink", account.ID) {
		if err := b.linkAccount(ctx, tu, account); err != nil {
			return err
		}
		return b.reply(msg, fmt.Sprintf(`Welcome back, %s!

Your Telegram account has been linked to your existing Inkwell account: @%s

You can now receive notifications and updates through this bot.`,
			from.FirstName, account.Username))
	}

	return b.reply(msg, fmt.Sprintf(`Hello %s!

Welcome to the Inkwell bot!

Your Telegram information has been saved:
- Username: @%s
- Telegram ID: %d

To fully integrate with our API, please register at our website using the same username.`,
		from.FirstName, from.UserName, from.ID))
}

// linkAccount points the Telegram identity at the account and mirrors the
// handle into the account's profile.
func (b *Bot) linkAccount(ctx context.Context, tu *models.TelegramUser, account *models.User) error {
	if err := b.chats.Link(ctx, tu, account.ID); err != nil {
		return err
	}

	profile, err := b.users.GetProfile(ctx, account.ID)
	if err != nil {
		return err
	}
	handle := tu.Username
	profile.TelegramUsername = &handle
	if err := b.users.UpdateProfile(ctx, profile); err != nil {
		return err
	}

	b.logger.Info("telegram account linked",
		"telegram_id", tu.TelegramID,
		"user_id", account.ID,
		"username", account.Username,
	)
	return nil
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.reply(msg, helpText)
}

// handleStats reports aggregate counts. Repository failures turn into an
// apology, never a crash.
func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	totalUsers, err := b.users.Count(ctx)
	if err != nil {
		return b.statsUnavailable(msg, err)
	}
	totalTelegram, err := b.chats.Count(ctx)
	if err != nil {
		return b.statsUnavailable(msg, err)
	}
	linked, err := b.chats.CountLinked(ctx)
	if err != nil {
		return b.statsUnavailable(msg, err)
	}

	return b.reply(msg, fmt.Sprintf(`API Statistics:

Total Users: %d
Total Telegram Users: %d
Linked Accounts: %d

System Status: Online
Bot Status: Active`, totalUsers, totalTelegram, linked))
}

func (b *Bot) statsUnavailable(msg *tgbotapi.Message, err error) error {
	b.logger.Error("failed to fetch stats", "error", err)
	return b.reply(msg, "Sorry, couldn't fetch statistics right now.")
}

// handleMessage echoes plain text back inside a fixed template.
func (b *Bot) handleMessage(msg *tgbotapi.Message) error {
	b.logger.Info("message received", "telegram_id", msg.From.ID, "username", msg.From.UserName)
	return b.reply(msg, fmt.Sprintf(
		"Thanks for your message! You said: '%s'\n\nUse /help to see available commands.",
		msg.Text))
}
