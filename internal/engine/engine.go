// Package engine holds the table view-model and the pure reducers that move it
// forward on server messages and local player commands.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/poker-table-client/internal/protocol"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

var ErrUnsupportedMessage = errors.New("unsupported message")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrBetModeDisabled = errors.New("bet mode disabled")
var ErrBetControlHidden = errors.New("bet control not shown")
var ErrDiscardModeDisabled = errors.New("discard mode disabled")
var ErrNoSuchCard = errors.New("no such card")
var ErrNotRoomOwner = errors.New("not room owner")
var ErrUnknownGameMode = errors.New("unknown game mode")

type ConnStatus string

const (
	ConnConnecting ConnStatus = "connecting"
	ConnOpen       ConnStatus = "open"
	ConnClosed     ConnStatus = "closed"
)

// State is everything the table shows. Reducers never mutate their input.
type State struct {
	Conn          ConnStatus
	ServerID      string
	LocalPlayerID types.ID
	Room          Room
	Players       map[types.ID]Player
	Game          Game
	Controls      Controls
	Timers        map[types.ID]Timer
	Ranking       []RankingRow
	Log           []string // newest first
}

type Room struct {
	Initialized bool
	ID          types.ID
	Seats       []types.ID // "" marks an empty seat
	seatOf      map[types.ID]int
	OwnerID     types.ID
	Modes       []types.GameMode
	CurrentMode types.ID
}

type Player struct {
	ID     types.ID
	Name   string
	Money  float64
	Local  bool
	Dealer bool
	Folded bool
	Winner bool
	Cards  []CardSlot
}

type CardSlot struct {
	Size     CardSize
	Card     Card // zero while face down
	Selected bool
	Cycles   int // discard animations played on this slot
}

type Game struct {
	ID          string
	Type        string
	DealerID    types.ID
	BigBlind    float64
	SmallBlind  float64
	NumCards    int
	Active      bool
	Hand        []CardSlot
	Category    string
	SharedCards []CardSlot
	Pots        []Pot
	Bets        map[types.ID]float64
}

type Pot struct {
	Money     float64
	PlayerIDs []types.ID
	WinnerIDs []types.ID
}

type Controls struct {
	BetMode      bool
	Stepper      Stepper
	NoBetOnly    bool
	FoldLabel    string
	DiscardMode  bool
	Ready        bool
	AllowedToBet bool
}

type Timer struct {
	Deadline time.Time
	Seconds  float64
}

type RankingRow struct {
	Position   int
	Name       string
	TotalMoney float64
	AvgProfit  float64
}

type CommandType string

const (
	CmdToggleReady      CommandType = "ToggleReady"
	CmdIncreaseBet      CommandType = "IncreaseBet"
	CmdIncreaseBetQuick CommandType = "IncreaseBetQuick"
	CmdDecreaseBet      CommandType = "DecreaseBet"
	CmdDecreaseBetQuick CommandType = "DecreaseBetQuick"
	CmdBet              CommandType = "Bet"
	CmdAllIn            CommandType = "AllIn"
	CmdFold             CommandType = "Fold"
	CmdNoBet            CommandType = "NoBet"
	CmdToggleCard       CommandType = "ToggleCard"
	CmdSubmitDiscard    CommandType = "SubmitDiscard"
	CmdChangeGameMode   CommandType = "ChangeGameMode"
)

/*
	ToggleReady                -> state only, the server polls it with ping-state
	Increase/Decrease          -> stepper moves, nothing sent
	Bet/AllIn/Fold/NoBet       -> EvtSend(bet) and bet mode off
	ToggleCard                 -> selection flips
	SubmitDiscard              -> EvtSend(cards-change) and discard mode off
	ChangeGameMode             -> EvtSend(game-mode-change), owner only
*/

type Command struct {
	Type   CommandType
	Card   int
	ModeID types.ID
}

type EventType string

const (
	EvtLog              EventType = "Log"
	EvtSend             EventType = "Send"
	EvtRankingRefresh   EventType = "RankingRefresh"
	EvtCountdownStarted EventType = "CountdownStarted"
	EvtCardsCycled      EventType = "CardsCycled"
	EvtPrompted         EventType = "Prompted"
	EvtRoomDestroyed    EventType = "RoomDestroyed"
)

type Event struct {
	Type     EventType
	PlayerID types.ID
	Text     string
	Count    int
	Seconds  float64
	Payload  any
}

// Apply reduces one inbound message. On error the previous state is returned
// unchanged.
func Apply(s State, msg protocol.Message, now time.Time) ([]Event, State, error) {
	next := s.clone()
	var events []Event
	var err error

	switch m := msg.(type) {
	case protocol.SocketOpened:
		next.Conn = ConnOpen
		events = appendLog(&next, events, "Connected :)")

	case protocol.SocketClosed:
		next.Conn = ConnClosed
		events = appendLog(&next, events, "Disconnected :(")
		events = append(events, destroyRoom(&next)...)

	case protocol.Connect:
		next.ServerID = m.ServerID
		next.LocalPlayerID = m.Player.ID
		markLocal(&next)
		events = appendLog(&next, events, "Connection established with poker5 server: "+m.ServerID)

	case protocol.Disconnect:

	case protocol.Error:
		events = appendLog(&next, events, m.Text)

	case protocol.Ping:
		events = append(events, Event{Type: EvtSend, Payload: types.NewPong()})

	case protocol.PingState:
		events = append(events, Event{
			Type:    EvtSend,
			Payload: types.NewReadyState(next.LocalPlayerID, next.Controls.Ready),
		})

	case protocol.RoomUpdate:
		events, err = applyRoom(&next, m)

	case protocol.GameUpdate:
		resetControls(&next)
		next.Timers = map[types.ID]Timer{}
		events, err = applyGame(&next, m, now)

	case protocol.Unknown:
		return nil, s, nil

	default:
		return nil, s, fmt.Errorf("%w: %T", ErrUnsupportedMessage, msg)
	}

	if err != nil {
		return nil, s, err
	}
	return events, next, nil
}

// Act reduces one local player command.
func Act(s State, cmd Command) ([]Event, State, error) {
	next := s.clone()
	var events []Event
	var err error

	switch cmd.Type {
	case CmdToggleReady:
		next.Controls.Ready = !next.Controls.Ready
	case CmdIncreaseBet, CmdIncreaseBetQuick, CmdDecreaseBet, CmdDecreaseBetQuick:
		err = stepBet(&next, cmd.Type)
	case CmdBet, CmdAllIn, CmdFold, CmdNoBet:
		events, err = placeBet(&next, cmd.Type)
	case CmdToggleCard:
		err = toggleCard(&next, cmd.Card)
	case CmdSubmitDiscard:
		events, err = submitDiscard(&next)
	case CmdChangeGameMode:
		events, err = changeGameMode(&next, cmd.ModeID)
	default:
		return nil, s, fmt.Errorf("%w: %q", ErrUnsupportedCommand, cmd.Type)
	}

	if err != nil {
		return nil, s, err
	}
	return events, next, nil
}
