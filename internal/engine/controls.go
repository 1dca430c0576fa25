package engine

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

const (
	FineStep   = 10
	CoarseStep = 50
)

// Stepper is the bet amount selector. Amount always stays within [Min, Max].
type Stepper struct {
	Min    float64
	Max    float64
	Amount float64
}

// NewStepper starts at min. Bounds are whole amounts; fractions are dropped.
func NewStepper(minBet, maxBet float64) Stepper {
	lo, hi := math.Trunc(minBet), math.Trunc(maxBet)
	if hi < lo {
		hi = lo
	}
	return Stepper{Min: lo, Max: hi, Amount: lo}
}

func (st Stepper) Increase(step float64) Stepper {
	if st.Amount < st.Max {
		st.Amount = math.Min(st.Max, st.Amount+step)
	}
	return st
}

func (st Stepper) Decrease(step float64) Stepper {
	if st.Amount > st.Min {
		st.Amount = math.Max(st.Min, st.Amount-step)
	}
	return st
}

func (st Stepper) CanIncrease() bool { return st.Amount < st.Max }
func (st Stepper) CanDecrease() bool { return st.Amount > st.Min }

// Label is the text of the bet button for the current amount.
func (st Stepper) Label() string {
	switch st.Amount {
	case 0:
		return "Check"
	case st.Min:
		return "Call"
	case st.Max:
		return "All In"
	default:
		return "Bet " + strconv.FormatFloat(st.Amount, 'f', -1, 64)
	}
}

func stepBet(s *State, t CommandType) error {
	c := &s.Controls
	if !c.BetMode {
		return ErrBetModeDisabled
	}
	if c.NoBetOnly {
		return ErrBetControlHidden
	}
	switch t {
	case CmdIncreaseBet:
		c.Stepper = c.Stepper.Increase(FineStep)
	case CmdIncreaseBetQuick:
		c.Stepper = c.Stepper.Increase(CoarseStep)
	case CmdDecreaseBet:
		c.Stepper = c.Stepper.Decrease(FineStep)
	case CmdDecreaseBetQuick:
		c.Stepper = c.Stepper.Decrease(CoarseStep)
	}
	return nil
}

func placeBet(s *State, t CommandType) ([]Event, error) {
	c := &s.Controls
	if !c.BetMode {
		return nil, ErrBetModeDisabled
	}

	var amount float64
	switch t {
	case CmdNoBet:
		if !c.NoBetOnly {
			return nil, ErrBetControlHidden
		}
		amount = types.BetCheck
	case CmdFold:
		if c.NoBetOnly {
			return nil, ErrBetControlHidden
		}
		amount = types.BetFold
	case CmdAllIn:
		if c.NoBetOnly {
			return nil, ErrBetControlHidden
		}
		amount = c.Stepper.Max
	case CmdBet:
		if c.NoBetOnly {
			return nil, ErrBetControlHidden
		}
		amount = c.Stepper.Amount
	}

	c.BetMode = false
	c.NoBetOnly = false
	return []Event{{Type: EvtSend, Payload: types.NewBet(amount)}}, nil
}

func toggleCard(s *State, pos int) error {
	if !s.Controls.DiscardMode {
		return ErrDiscardModeDisabled
	}
	if pos < 0 || pos >= len(s.Game.Hand) {
		return fmt.Errorf("%w: %d", ErrNoSuchCard, pos)
	}
	s.Game.Hand[pos].Selected = !s.Game.Hand[pos].Selected
	return nil
}

func submitDiscard(s *State) ([]Event, error) {
	if !s.Controls.DiscardMode {
		return nil, ErrDiscardModeDisabled
	}
	positions := []int{}
	for i, slot := range s.Game.Hand {
		if slot.Selected {
			positions = append(positions, i)
		}
	}
	s.Controls.DiscardMode = false
	clearSelection(s)
	return []Event{{Type: EvtSend, Payload: types.NewCardsChange(positions)}}, nil
}

func changeGameMode(s *State, modeID types.ID) ([]Event, error) {
	if !s.Room.IsOwner(s.LocalPlayerID) {
		return nil, ErrNotRoomOwner
	}
	known := slices.ContainsFunc(s.Room.Modes, func(m types.GameMode) bool { return m.ModeID == modeID })
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGameMode, modeID)
	}
	return []Event{{Type: EvtSend, Payload: types.NewGameModeChange(modeID)}}, nil
}
