package telegram

import (
	"context"
	"dartboard/domain/dart"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageSender is the sending side of *tgbotapi.BotAPI.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender renders dart messages as Telegram sendMessage calls.
type Sender struct {
	bot   MessageSender
	emoji string
}

func NewSender(bot MessageSender, emoji string) *Sender {
	if emoji == "" {
		emoji = DefaultDartEmoji
	}
	return &Sender{bot: bot, emoji: emoji}
}

// Send gives up when ctx is done; the underlying request may still complete.
func (s *Sender) Send(ctx context.Context, msg dart.Message) error {
	config := s.Render(msg)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.bot.Send(config)
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("send to chat %d: %w", msg.Target.Room, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Render builds the sendMessage request for msg.
func (s *Sender) Render(msg dart.Message) tgbotapi.MessageConfig {
	config := tgbotapi.NewMessage(int64(msg.Target.Room), msg.Text)
	config.ReplyToMessageID = msg.Target.ReplyTo
	if msg.Format == dart.FormatHTML {
		config.ParseMode = tgbotapi.ModeHTML
	}
	switch msg.Keyboard {
	case dart.KeyboardDart:
		keyboard := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(s.emoji)),
		)
		keyboard.ResizeKeyboard = true
		config.ReplyMarkup = keyboard
	case dart.KeyboardRemove:
		config.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	return config
}
