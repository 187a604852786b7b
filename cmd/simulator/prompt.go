package main

import (
	"bufio"
	"context"
	"dartboard/contract"
	"dartboard/domain/dart"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const helpText = `commands:
  start [room]                      open a session
  stop [room]                       show the leaderboard and end the session
  throw <player> <name> <1-6> [room] throw a dart
  fwd <player> <name> <1-6> [room]   forward a dart (ignored by the game)
  stats                             list live sessions
  help                              show this text
  quit                              leave`

type action int

const (
	actionSubmit action = iota
	actionStats
	actionHelp
	actionQuit
	actionNone
)

// Prompt reads commands from a terminal and submits them like a chat would.
type Prompt struct {
	in        io.Reader
	console   *Console
	submitter contract.Submitter
	registry  contract.IRegistry
	room      dart.RoomID
	quit      func()
	messageID int
}

func NewPrompt(in io.Reader, console *Console, submitter contract.Submitter,
	registry contract.IRegistry, room dart.RoomID, quit func()) *Prompt {
	return &Prompt{
		in:        in,
		console:   console,
		submitter: submitter,
		registry:  registry,
		room:      room,
		quit:      quit,
	}
}

func (p *Prompt) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(p.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				p.quit()
				return nil
			}
			if p.handle(line) == actionQuit {
				p.quit()
				return nil
			}
		}
	}
}

func (p *Prompt) handle(line string) action {
	p.messageID++
	act, cmd, err := parseLine(line, p.room, p.messageID)
	if err != nil {
		p.console.Error(err)
		return actionNone
	}
	switch act {
	case actionSubmit:
		if err := p.submitter.Submit(cmd); err != nil {
			p.console.Error(err)
		}
	case actionStats:
		p.console.Stats(p.registry.Snapshot())
	case actionHelp:
		p.console.Info(helpText)
	}
	return act
}

// parseLine turns one prompt line into a command. messageID stands in for
// the chat message the command was sent with.
func parseLine(line string, defaultRoom dart.RoomID, messageID int) (action, dart.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return actionNone, nil, nil
	}

	verb := strings.ToLower(fields[0])
	switch verb {
	case "start", "/start":
		room, err := roomArg(fields, 1, defaultRoom)
		if err != nil {
			return actionNone, nil, err
		}
		return actionSubmit, dart.StartSession{Room: room, MessageID: messageID}, nil
	case "stop", "/stop":
		room, err := roomArg(fields, 1, defaultRoom)
		if err != nil {
			return actionNone, nil, err
		}
		return actionSubmit, dart.StopSession{Room: room, MessageID: messageID}, nil
	case "throw", "fwd":
		if len(fields) < 4 {
			return actionNone, nil, fmt.Errorf("usage: %s <player> <name> <1-6> [room]", verb)
		}
		player, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return actionNone, nil, fmt.Errorf("player must be a number: %w", err)
		}
		value, err := strconv.Atoi(fields[3])
		if err != nil {
			return actionNone, nil, fmt.Errorf("value must be a number: %w", err)
		}
		room, err := roomArg(fields, 4, defaultRoom)
		if err != nil {
			return actionNone, nil, err
		}
		return actionSubmit, dart.Throw{
			Room:        room,
			Player:      dart.PlayerID(player),
			DisplayName: fields[2],
			Value:       value,
			Forwarded:   verb == "fwd",
			MessageID:   messageID,
		}, nil
	case "stats":
		return actionStats, nil, nil
	case "help":
		return actionHelp, nil, nil
	case "quit", "exit":
		return actionQuit, nil, nil
	default:
		return actionNone, nil, fmt.Errorf("unknown command %q, try help", fields[0])
	}
}

func roomArg(fields []string, i int, defaultRoom dart.RoomID) (dart.RoomID, error) {
	if len(fields) <= i {
		return defaultRoom, nil
	}
	room, err := strconv.ParseInt(fields[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("room must be a number: %w", err)
	}
	return dart.RoomID(room), nil
}
