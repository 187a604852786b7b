package main

import (
	"context"
	"dartboard/domain/dart"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// Console renders outbound messages and tables on a terminal.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
}

func NewConsole(out io.Writer, colours bool) *Console {
	return &Console{out: out, colours: colours}
}

// Send prints msg, prefixed with the room and the message it replies to.
func (c *Console) Send(_ context.Context, msg dart.Message) error {
	text := msg.Text
	if msg.Format == dart.FormatHTML {
		text = html.UnescapeString(text)
	}
	header := fmt.Sprintf("[room %d]", msg.Target.Room)
	if msg.Target.ReplyTo != 0 {
		header = fmt.Sprintf("[room %d > #%d]", msg.Target.Room, msg.Target.ReplyTo)
	}
	switch msg.Keyboard {
	case dart.KeyboardDart:
		text += "\n(keyboard: [🎯])"
	case dart.KeyboardRemove:
		text += "\n(keyboard removed)"
	}

	style := color.New(color.FgGreen)
	if msg.Format == dart.FormatHTML {
		style = color.New(color.FgYellow, color.OpBold)
	}
	c.print(style, header+"\n"+indent(text))
	return nil
}

func (c *Console) Info(text string) {
	c.print(color.New(color.FgCyan), text)
}

func (c *Console) Error(err error) {
	c.print(color.New(color.FgRed), "error: "+err.Error())
}

// Stats prints one row per live session.
func (c *Console) Stats(stats []dart.SessionStats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Room", "Session", "State", "Players", "Throws", "Pending"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(lo.Map(stats, func(s dart.SessionStats, _ int) []string {
		return []string{
			fmt.Sprint(s.Room),
			s.SessionID.String()[:8],
			s.State.String(),
			fmt.Sprint(s.Players),
			fmt.Sprint(s.Throws),
			fmt.Sprint(s.PendingFlushes),
		}
	}))
	table.Render()
}

func (c *Console) print(style color.Style, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.colours {
		text = style.Render(text)
	}
	fmt.Fprintln(c.out, text)
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(text, "\n", "\n  ")
}
