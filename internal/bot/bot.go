// Package bot adapts the Telegram transport to the session engine: it decodes
// updates into engine actions and renders engine output back to chats.
package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocadrill/internal/session"
)

const fallbackNotice = "I only understand commands. Send /help"

// Bot runs the long-polling update loop and hands decoded actions to the
// engine one at a time.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *session.Engine
}

// NewAPI creates the underlying Telegram client for the given token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	return api, nil
}

// New creates a bot over an already-authorized API client and engine.
func New(api *tgbotapi.BotAPI, engine *session.Engine) *Bot {
	return &Bot{api: api, engine: engine}
}

// Start polls for updates until the context is cancelled. Updates are handled
// sequentially, so every action completes before the next one for any user.
func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage maps commands onto action tokens; any other free text gets
// the generic fallback notice.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	in := inboundFor(message.From)

	if !message.IsCommand() {
		b.sendFallback(in.UserID)
		return
	}

	var token string
	switch message.Command() {
	case "start":
		token = session.TokenInitiate
	case "menu":
		token = session.TokenMenu
	case "help":
		token = session.TokenHelp
	case "stop":
		token = session.TokenStop
	case "progress":
		token = session.TokenViewProgress
	case "admin":
		token = session.TokenAdminSummary
	default:
		b.sendFallback(in.UserID)
		return
	}

	b.dispatch(ctx, in, token)
}

// handleCallback decodes a pressed inline button. The callback is
// acknowledged immediately so Telegram doesn't re-deliver it.
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Error acknowledging callback: %v", err)
	}

	b.dispatch(ctx, inboundFor(callback.From), callback.Data)
}

func (b *Bot) dispatch(ctx context.Context, in session.Inbound, token string) {
	action, ok := session.ParseAction(token)
	if !ok {
		log.Printf("Unknown action token %q from user %s", token, in.UserID)
		b.sendFallback(in.UserID)
		return
	}
	in.Action = action

	if err := b.engine.Handle(ctx, in); err != nil {
		log.Printf("Error handling action %q for user %s: %v", token, in.UserID, err)
	}
}

func (b *Bot) sendFallback(userID string) {
	chatID, err := chatIDFor(userID)
	if err != nil {
		log.Printf("Error resolving chat for user %s: %v", userID, err)
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, fallbackNotice)); err != nil {
		log.Printf("Error sending fallback notice to user %s: %v", userID, err)
	}
}

func inboundFor(from *tgbotapi.User) session.Inbound {
	return session.Inbound{
		UserID:      strconv.FormatInt(from.ID, 10),
		DisplayName: from.FirstName,
		Handle:      from.UserName,
	}
}
