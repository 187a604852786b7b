package main

import (
	"bytes"
	"dartboard/domain/dart"
	"dartboard/mocks"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestParseLine(t *testing.T) {
	tests := map[string]struct {
		line     string
		action   action
		expected dart.Command
	}{
		"start in default room":     {line: "start", action: actionSubmit, expected: dart.StartSession{Room: 1, MessageID: 9}},
		"slash stop in room 5":      {line: "/stop 5", action: actionSubmit, expected: dart.StopSession{Room: 5, MessageID: 9}},
		"throw":                     {line: "throw 7 Alice 6", action: actionSubmit, expected: dart.Throw{Room: 1, Player: 7, DisplayName: "Alice", Value: 6, MessageID: 9}},
		"forwarded throw in room 3": {line: "FWD 7 Alice 2 3", action: actionSubmit, expected: dart.Throw{Room: 3, Player: 7, DisplayName: "Alice", Value: 2, Forwarded: true, MessageID: 9}},
		"out of range value":        {line: "throw 7 Alice 9", action: actionSubmit, expected: dart.Throw{Room: 1, Player: 7, DisplayName: "Alice", Value: 9, MessageID: 9}},
		"stats":                     {line: "stats", action: actionStats},
		"quit":                      {line: "  quit ", action: actionQuit},
		"blank line":                {line: "   ", action: actionNone},
		"help":                      {line: "help", action: actionHelp},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			act, cmd, err := parseLine(tt.line, 1, 9)
			req.NoError(err)
			req.Equal(tt.action, act)
			req.Equal(tt.expected, cmd)
		})
	}
}

func TestParseLine_Errors(t *testing.T) {
	for _, line := range []string{"throw 7 Alice", "throw x Alice 3", "throw 7 Alice y", "start abc", "dance"} {
		t.Run(line, func(t *testing.T) {
			_, _, err := parseLine(line, 1, 1)
			require.Error(t, err)
		})
	}
}

func TestPrompt_Handle(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockSubmitter(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	var out bytes.Buffer
	prompt := NewPrompt(strings.NewReader(""), NewConsole(&out, false), submitter, registry, 1, func() {})

	// Given a start then a stats request
	submitter.EXPECT().Submit(dart.StartSession{Room: 1, MessageID: 1}).Return(nil)
	registry.EXPECT().Snapshot().Return([]dart.SessionStats{
		{Room: 1, SessionID: uuid.New(), State: dart.StateActive, Players: 2, Throws: 5},
	})

	req.Equal(actionSubmit, prompt.handle("start"))
	req.Equal(actionStats, prompt.handle("stats"))
	req.Equal(actionNone, prompt.handle("nope"))

	// Then the table and the error are printed
	req.Contains(out.String(), "active")
	req.Contains(out.String(), `error: unknown command "nope"`)
}

func TestPrompt_Run_Quits_On_Eof(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockSubmitter(ctrl)
	submitter.EXPECT().Submit(gomock.Any()).Return(nil).Times(2)
	quits := 0
	prompt := NewPrompt(strings.NewReader("start\nthrow 1 Ann 6\n"), NewConsole(&bytes.Buffer{}, false),
		submitter, mocks.NewMockIRegistry(ctrl), 1, func() { quits++ })

	req.NoError(prompt.Run(t.Context()))
	req.Equal(1, quits)
}

func TestConsole_Send_Unescapes_Html(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	console := NewConsole(&out, false)

	req.NoError(console.Send(t.Context(), dart.Message{
		Target:   dart.Target{Room: 1, ReplyTo: 4},
		Text:     "@Tom &amp; Jerry: 6 (1 throws) (6.0000 average)",
		Format:   dart.FormatHTML,
		Keyboard: dart.KeyboardRemove,
	}))

	req.Equal("[room 1 > #4]\n  @Tom & Jerry: 6 (1 throws) (6.0000 average)\n  (keyboard removed)\n", out.String())
}
