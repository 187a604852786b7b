package dart

import (
	"fmt"
	"html"
	"strings"

	"github.com/samber/lo"
)

type Format int

const (
	FormatPlain Format = iota
	// FormatHTML carries player mentions the gateway renders as tags.
	FormatHTML
)

// Keyboard tells the gateway what to do with the room's reply keyboard.
type Keyboard int

const (
	KeyboardKeep Keyboard = iota
	KeyboardDart
	KeyboardRemove
)

// Target addresses an outbound message. ReplyTo is zero when the message
// is not a reply.
type Target struct {
	Room    RoomID
	ReplyTo int
}

// Message is an outbound notification for the gateway.
type Message struct {
	Target   Target
	Text     string
	Format   Format
	Keyboard Keyboard
}

// Mentioner renders a player reference inside a FormatHTML message.
type Mentioner func(id PlayerID, name string) string

// MentionHTML renders a Telegram user link with an escaped name.
func MentionHTML(id PlayerID, name string) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, id, html.EscapeString(name))
}

// MentionAt renders "@name" with HTML escaping so the text stays valid markup.
func MentionAt(_ PlayerID, name string) string {
	return "@" + html.EscapeString(name)
}

// FormatName joins a first and an optional last name.
func FormatName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

const welcomeText = "Game on! Throw 🎯 to score, /stop to see the leaderboard."

var alreadyRunningPhrases = []string{"あほか？", "ばか！"}

// AlreadyRunning is the reply to a start command in a room that already plays.
func AlreadyRunning(room RoomID, replyTo int) Message {
	return Message{
		Target: Target{Room: room, ReplyTo: replyTo},
		Text:   lo.Sample(alreadyRunningPhrases),
		Format: FormatPlain,
	}
}

// IsAlreadyRunningText reports whether text is one of the "already running" replies.
func IsAlreadyRunningText(text string) bool {
	return lo.Contains(alreadyRunningPhrases, text)
}
