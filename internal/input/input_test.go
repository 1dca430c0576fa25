package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DoyleJ11/poker-table-client/internal/engine"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		want engine.Command
	}{
		{"ready", engine.Command{Type: engine.CmdToggleReady}},
		{"  ++ ", engine.Command{Type: engine.CmdIncreaseBetQuick}},
		{"-", engine.Command{Type: engine.CmdDecreaseBet}},
		{"CALL", engine.Command{Type: engine.CmdBet}},
		{"allin", engine.Command{Type: engine.CmdAllIn}},
		{"pass", engine.Command{Type: engine.CmdFold}},
		{"nobet", engine.Command{Type: engine.CmdNoBet}},
		{"select 3", engine.Command{Type: engine.CmdToggleCard, Card: 2}},
		{"discard", engine.Command{Type: engine.CmdSubmitDiscard}},
		{"mode Draw5", engine.Command{Type: engine.CmdChangeGameMode, ModeID: types.ID("Draw5")}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, err := Parse(tc.line)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)

	for _, line := range []string{"dance", "select", "select 0", "select x", "mode", "fold now"} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrUnknown, line)
	}
}
