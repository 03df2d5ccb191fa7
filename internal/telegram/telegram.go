// Package telegram adapts the Telegram Bot API to the bot's Messenger
// interface and runs the long polling loop.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/behalfbot/behalf/internal/bot"
	"github.com/behalfbot/behalf/internal/models"
	"github.com/behalfbot/behalf/internal/storage"
)

// pollTimeout is the long polling timeout in seconds.
const pollTimeout = 60

// Ensure Client implements bot.Messenger
var _ bot.Messenger = (*Client)(nil)

// Client wraps the Telegram Bot API.
type Client struct {
	api *tgbotapi.BotAPI
}

// New authenticates against the Telegram Bot API with the given token.
func New(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	api.Debug = false
	return &Client{api: api}, nil
}

// Username returns the bot's own Telegram username.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Send delivers a text message to the given chat.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

// Listen runs the long polling loop until ctx is canceled. Every private
// text message has its sender resolved to a User (created on first contact)
// before the dispatcher sees it; everything else is ignored.
func (c *Client) Listen(ctx context.Context, store storage.Store, dispatcher *bot.Dispatcher) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := c.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return
		case upd := <-updates:
			c.handleUpdate(ctx, store, dispatcher, upd)
		}
	}
}

func (c *Client) handleUpdate(ctx context.Context, store storage.Store, dispatcher *bot.Dispatcher, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Text == "" {
		return
	}
	// The bot only works one on one.
	if !msg.Chat.IsPrivate() {
		return
	}

	user, err := c.resolveSender(ctx, store, msg)
	if err != nil {
		slog.Error("Sender resolution failed", "chat_id", msg.Chat.ID, "error", err)
		return
	}

	dispatcher.HandleMessage(ctx, user, msg.Text)
}

// resolveSender loads the sender by chat ID, registering them on first
// contact and keeping the display name fresh on later ones.
func (c *Client) resolveSender(ctx context.Context, store storage.Store, msg *tgbotapi.Message) (*models.User, error) {
	name := displayName(msg.From)

	user, err := store.GetUserByChatID(ctx, msg.Chat.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			ChatID: msg.Chat.ID,
			Name:   name,
		}
		if err := store.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		slog.Info("User registered", "user_id", user.ID, "name", user.Name)
		return user, nil
	}

	if name != "" && name != user.Name {
		user.Name = name
		if err := store.UpdateUser(ctx, user); err != nil {
			// Stale name is not worth failing the command over.
			slog.Warn("Name refresh failed", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

func displayName(from *tgbotapi.User) string {
	if from == nil {
		return ""
	}
	if from.FirstName != "" {
		return from.FirstName
	}
	return from.UserName
}
