// Package protocol turns raw server frames into a closed set of message variants.
package protocol

import (
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

// Message is implemented only by the variants in this package.
type Message interface{ isMessage() }

// Transport-level messages. Decode never returns these; the session injects
// them when the socket opens or closes.
type SocketOpened struct{}

type SocketClosed struct {
	Err error
}

type Connect struct {
	ServerID string
	Player   types.Player
}

type Disconnect struct{}

type Error struct {
	Text string
}

type Ping struct{}

type PingState struct{}

// RoomUpdate carries the seating every room event is broadcast with.
type RoomUpdate struct {
	RoomID  types.ID
	Seats   []types.ID // "" marks an empty seat
	Players map[types.ID]types.Player
	Event   RoomEvent
}

type GameUpdate struct {
	GameID string
	Event  GameEvent
}

// Unknown is any frame whose message_type is not part of the protocol.
type Unknown struct {
	Type string
}

func (SocketOpened) isMessage() {}
func (SocketClosed) isMessage() {}
func (Connect) isMessage()      {}
func (Disconnect) isMessage()   {}
func (Error) isMessage()        {}
func (Ping) isMessage()         {}
func (PingState) isMessage()    {}
func (RoomUpdate) isMessage()   {}
func (GameUpdate) isMessage()   {}
func (Unknown) isMessage()      {}

type RoomEvent interface{ isRoomEvent() }

type PlayerAdded struct {
	PlayerID types.ID
}

// PlayerRejoined is sent when a player reconnects to a seat they still hold.
type PlayerRejoined struct {
	PlayerID types.ID
}

type PlayerRemoved struct {
	PlayerID types.ID
}

type RoomOwnerAssigned struct {
	OwnerID     types.ID
	Modes       []types.GameMode
	CurrentMode types.ID
}

type UnknownRoomEvent struct {
	Event string
}

func (PlayerAdded) isRoomEvent()       {}
func (PlayerRejoined) isRoomEvent()    {}
func (PlayerRemoved) isRoomEvent()     {}
func (RoomOwnerAssigned) isRoomEvent() {}
func (UnknownRoomEvent) isRoomEvent()  {}

type GameEvent interface{ isGameEvent() }

type NewGame struct {
	GameType   string
	Players    []types.Player
	DealerID   types.ID
	BigBlind   float64
	SmallBlind float64
}

type CardsAssignment struct {
	Target types.ID
	Cards  []types.Card
	Score  types.Score
}

type GameOver struct{}

type Fold struct {
	Player types.Player
}

type Bet struct {
	Player  types.Player
	Amount  float64
	BetType string
	Bets    map[types.ID]float64
}

type PotsUpdate struct {
	Players map[types.ID]types.Player
	Pots    []types.Pot
}

// PlayerAction prompts a player to act before Deadline.
type PlayerAction struct {
	Action   string // "bet" or "cards-change"
	Player   types.Player
	MinBet   float64
	MaxBet   float64
	MinScore float64
	Bets     map[types.ID]float64
	Deadline DeadlineSpec
}

type DeadPlayer struct {
	Player types.Player
}

type CardsChange struct {
	Player   types.Player
	NumCards int
}

type SharedCards struct {
	Cards []types.Card
}

type WinnerDesignation struct {
	Pot     types.Pot
	Pots    []types.Pot
	Players map[types.ID]types.Player
}

type Showdown struct {
	Players map[types.ID]types.ShowdownHand
}

type UpdateRankingData struct {
	Rows []types.RankingEntry
}

type UnknownGameEvent struct {
	Event string
}

func (NewGame) isGameEvent()           {}
func (CardsAssignment) isGameEvent()   {}
func (GameOver) isGameEvent()          {}
func (Fold) isGameEvent()              {}
func (Bet) isGameEvent()               {}
func (PotsUpdate) isGameEvent()        {}
func (PlayerAction) isGameEvent()      {}
func (DeadPlayer) isGameEvent()        {}
func (CardsChange) isGameEvent()       {}
func (SharedCards) isGameEvent()       {}
func (WinnerDesignation) isGameEvent() {}
func (Showdown) isGameEvent()          {}
func (UpdateRankingData) isGameEvent() {}
func (UnknownGameEvent) isGameEvent()  {}

const (
	ActionBet         = "bet"
	ActionCardsChange = "cards-change"
)
