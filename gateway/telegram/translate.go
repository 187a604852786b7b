// Package telegram adapts the Telegram Bot API to dart commands and messages.
package telegram

import (
	"dartboard/domain/dart"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const DefaultDartEmoji = "🎯"

const (
	commandStart = "start"
	commandStop  = "stop"
)

// Translate maps an update to a command. Updates without a chat message,
// unknown commands and dice other than emoji are ignored.
func Translate(update tgbotapi.Update, emoji string) (dart.Command, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil, false
	}
	room := dart.RoomID(msg.Chat.ID)

	if msg.IsCommand() {
		switch msg.Command() {
		case commandStart:
			return dart.StartSession{Room: room, MessageID: msg.MessageID}, true
		case commandStop:
			return dart.StopSession{Room: room, MessageID: msg.MessageID}, true
		default:
			return nil, false
		}
	}

	if msg.Dice == nil || msg.Dice.Emoji != emoji || msg.From == nil {
		return nil, false
	}
	return dart.Throw{
		Room:        room,
		Player:      dart.PlayerID(msg.From.ID),
		DisplayName: dart.FormatName(msg.From.FirstName, msg.From.LastName),
		Value:       msg.Dice.Value,
		Forwarded:   isForwarded(msg),
		MessageID:   msg.MessageID,
	}, true
}

func isForwarded(msg *tgbotapi.Message) bool {
	return msg.ForwardDate != 0 ||
		msg.ForwardFrom != nil ||
		msg.ForwardFromChat != nil ||
		msg.ForwardSenderName != ""
}
