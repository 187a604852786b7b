package dart

type RoomID int64

// Command is an inbound event addressed to one room.
type Command interface {
	RoomID() RoomID
}

type StartSession struct {
	Room      RoomID
	MessageID int
}

func (c StartSession) RoomID() RoomID {
	return c.Room
}

type StopSession struct {
	Room      RoomID
	MessageID int
}

func (c StopSession) RoomID() RoomID {
	return c.Room
}

// Throw is a single dart thrown by a player.
// MessageID is the chat message carrying the throw; the flush replies to it.
type Throw struct {
	Room        RoomID
	Player      PlayerID
	DisplayName string
	Value       int
	Forwarded   bool
	MessageID   int
}

func (c Throw) RoomID() RoomID {
	return c.Room
}
