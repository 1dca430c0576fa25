// Package input turns typed lines into player commands.
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/DoyleJ11/poker-table-client/internal/engine"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

var ErrEmpty = errors.New("empty command")
var ErrUnknown = errors.New("unknown command")

// Help lists the accepted lines.
const Help = `ready          toggle ready
+ / ++         raise the bet by 10 / 50
- / --         lower the bet by 10 / 50
bet | call     place the current amount
allin          bet everything
fold | pass    fold (or pass when checking is free)
nobet          answer a no-bet prompt
select N       toggle card N (1-based) for discard
discard        send the selected cards
mode ID        change the game mode (room owner)`

var simple = map[string]engine.CommandType{
	"ready":   engine.CmdToggleReady,
	"+":       engine.CmdIncreaseBet,
	"++":      engine.CmdIncreaseBetQuick,
	"-":       engine.CmdDecreaseBet,
	"--":      engine.CmdDecreaseBetQuick,
	"bet":     engine.CmdBet,
	"call":    engine.CmdBet,
	"check":   engine.CmdBet,
	"allin":   engine.CmdAllIn,
	"fold":    engine.CmdFold,
	"pass":    engine.CmdFold,
	"nobet":   engine.CmdNoBet,
	"discard": engine.CmdSubmitDiscard,
}

func Parse(line string) (engine.Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return engine.Command{}, ErrEmpty
	}

	if t, ok := simple[fields[0]]; ok {
		if len(fields) != 1 {
			return engine.Command{}, fmt.Errorf("%w: %q takes no argument", ErrUnknown, fields[0])
		}
		return engine.Command{Type: t}, nil
	}

	switch fields[0] {
	case "select":
		if len(fields) != 2 {
			return engine.Command{}, fmt.Errorf("%w: select needs a card number", ErrUnknown)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return engine.Command{}, fmt.Errorf("%w: card %q", ErrUnknown, fields[1])
		}
		return engine.Command{Type: engine.CmdToggleCard, Card: n - 1}, nil

	case "mode":
		if len(fields) != 2 {
			return engine.Command{}, fmt.Errorf("%w: mode needs an id", ErrUnknown)
		}
		// Mode ids are matched case-sensitively, so take the raw token.
		raw := strings.Fields(line)[1]
		return engine.Command{Type: engine.CmdChangeGameMode, ModeID: types.ID(raw)}, nil
	}

	return engine.Command{}, fmt.Errorf("%w: %q", ErrUnknown, fields[0])
}
