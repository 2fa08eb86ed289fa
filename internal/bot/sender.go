package bot

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocadrill/internal/session"
)

// Sender renders engine output to Telegram: choice sets become inline
// keyboards, notices become plain messages. For private chats the chat id
// equals the user id, so user ids round-trip through strconv.
type Sender struct {
	api *tgbotapi.BotAPI
}

// NewSender wraps a bot API client as a session.Presenter.
func NewSender(api *tgbotapi.BotAPI) *Sender {
	return &Sender{api: api}
}

// PresentChoices sends a message with an inline keyboard, two buttons per row.
func (s *Sender) PresentChoices(userID, prompt string, choices []session.Choice) error {
	chatID, err := chatIDFor(userID)
	if err != nil {
		return err
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, choice := range choices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(choice.Label, choice.Token))
		if len(row) == 2 {
			keyboard = append(keyboard, row)
			row = nil
		}
	}
	if len(row) > 0 {
		keyboard = append(keyboard, row)
	}

	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	if _, err := s.api.Send(msg); err != nil {
		// Delivery failures are logged, not propagated: the transport owns them.
		log.Printf("Error sending choices to user %s: %v", userID, err)
	}
	return nil
}

// Notify sends a plain text message with no expected reply.
func (s *Sender) Notify(userID, text string) error {
	chatID, err := chatIDFor(userID)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := s.api.Send(msg); err != nil {
		log.Printf("Error sending message to user %s: %v", userID, err)
	}
	return nil
}

func chatIDFor(userID string) (int64, error) {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	return chatID, nil
}
