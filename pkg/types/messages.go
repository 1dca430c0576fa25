package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Server -> Client
// Every frame is a JSON object with a message_type:
//   ping | ping-state | connect | disconnect | error | room-update | game-update
//
// connect:
//   server_id: string
//   player: Player
//
// room-update:
//   event: "player-added" | "player-removed" | "player-rejoined" | "room-owner-assigned"
//   room_id: id
//   player_ids: (id | null)[]   // one entry per seat
//   players: { [id]: Player }
//   player_id: id               // player-added / player-removed
//   owner_id, game_modes, current_game_mode   // room-owner-assigned
//
// game-update:
//   event: "new-game" | "cards-assignment" | "game-over" | "fold" | "bet" | "pots-update" |
//          "player-action" | "dead-player" | "cards-change" | "shared-cards" |
//          "winner-designation" | "showdown" | "update-ranking-data"
//   game_id: string
//   players: Player[] on new-game, { [id]: Player } on pots-update / winner-designation,
//            { [id]: { cards, score } } on showdown
//
// Client -> Server
//   pong:               {}
//   bet:                bet: number (-1 fold, 0 check)
//   cards-change:       cards: number[] (positions of the discarded cards)
//   ready-state-change: player_id, ready
//   game-mode-change:   modeId

// ID is an identifier the server may encode either as a JSON string or as a number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Player struct {
	ID           ID      `json:"id"`
	Name         string  `json:"name,omitempty"`
	Money        float64 `json:"money,omitempty"`
	Loan         int     `json:"loan,omitempty"`
	AllowedToBet bool    `json:"allowed_to_bet,omitempty"`
}

// Card is the wire form of a card: [rank, suit].
type Card [2]int

func (c Card) Rank() int { return c[0] }
func (c Card) Suit() int { return c[1] }

type Score struct {
	Category int    `json:"category"`
	Cards    []Card `json:"cards,omitempty"`
}

type Pot struct {
	Money      float64 `json:"money"`
	PlayerIDs  []ID    `json:"player_ids"`
	WinnerIDs  []ID    `json:"winner_ids,omitempty"`
	MoneySplit float64 `json:"money_split,omitempty"`
}

type GameMode struct {
	ModeID   ID     `json:"mode_id"`
	ModeName string `json:"mode_name"`
}

// ShowdownHand is one entry of the showdown players map.
type ShowdownHand struct {
	Cards []Card `json:"cards"`
	Score *Score `json:"score,omitempty"`
}

// ServerMessage is the flat envelope every inbound frame decodes into.
// Players is kept raw because its shape depends on the event.
type ServerMessage struct {
	MessageType string `json:"message_type"`
	Event       string `json:"event,omitempty"`

	ServerID string  `json:"server_id,omitempty"`
	Player   *Player `json:"player,omitempty"`
	Error    string  `json:"error,omitempty"`

	RoomID          ID              `json:"room_id,omitempty"`
	PlayerIDs       []*ID           `json:"player_ids,omitempty"`
	Players         json.RawMessage `json:"players,omitempty"`
	PlayerID        ID              `json:"player_id,omitempty"`
	OwnerID         ID              `json:"owner_id,omitempty"`
	GameModes       []GameMode      `json:"game_modes,omitempty"`
	CurrentGameMode ID              `json:"current_game_mode,omitempty"`

	GameID      string             `json:"game_id,omitempty"`
	GameType    string             `json:"game_type,omitempty"`
	DealerID    ID                 `json:"dealer_id,omitempty"`
	BigBlind    float64            `json:"big_blind,omitempty"`
	SmallBlind  float64            `json:"small_blind,omitempty"`
	Target      ID                 `json:"target,omitempty"`
	Cards       []Card             `json:"cards,omitempty"`
	Score       *Score             `json:"score,omitempty"`
	Bet         float64            `json:"bet,omitempty"`
	BetType     string             `json:"bet_type,omitempty"`
	Bets        map[string]float64 `json:"bets,omitempty"`
	Pots        []Pot              `json:"pots,omitempty"`
	Pot         *Pot               `json:"pot,omitempty"`
	Action      string             `json:"action,omitempty"`
	MinBet      float64            `json:"min_bet,omitempty"`
	MaxBet      float64            `json:"max_bet,omitempty"`
	MinScore    float64            `json:"min_score,omitempty"`
	Timeout     float64            `json:"timeout,omitempty"`
	TimeoutDate string             `json:"timeout_date,omitempty"`
	NumCards    int                `json:"num_cards,omitempty"`
	RankingList []RankingEntry     `json:"ranking_list,omitempty"`
}

type PongMessage struct {
	MessageType string `json:"message_type"`
}

type BetMessage struct {
	MessageType string  `json:"message_type"`
	Bet         float64 `json:"bet"`
}

type CardsChangeMessage struct {
	MessageType string `json:"message_type"`
	Cards       []int  `json:"cards"`
}

type ReadyStateMessage struct {
	MessageType string `json:"message_type"`
	PlayerID    ID     `json:"player_id"`
	Ready       bool   `json:"ready"`
}

type GameModeChangeMessage struct {
	MessageType string `json:"message_type"`
	ModeID      ID     `json:"modeId"`
}

// Bet values with a special meaning.
const (
	BetFold  float64 = -1
	BetCheck float64 = 0
)

func NewPong() PongMessage { return PongMessage{MessageType: "pong"} }

func NewBet(amount float64) BetMessage { return BetMessage{MessageType: "bet", Bet: amount} }

func NewCardsChange(positions []int) CardsChangeMessage {
	if positions == nil {
		positions = []int{}
	}
	return CardsChangeMessage{MessageType: "cards-change", Cards: positions}
}

func NewReadyState(playerID ID, ready bool) ReadyStateMessage {
	return ReadyStateMessage{MessageType: "ready-state-change", PlayerID: playerID, Ready: ready}
}

func NewGameModeChange(modeID ID) GameModeChangeMessage {
	return GameModeChangeMessage{MessageType: "game-mode-change", ModeID: modeID}
}

// RankingEntry is one [playerName, totalMoney, avgProfit] tuple of the ranking list.
type RankingEntry struct {
	Name       string
	TotalMoney float64
	AvgProfit  float64
}

func (r *RankingEntry) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("ranking entry: %w", err)
	}
	if len(tuple) != 3 {
		return fmt.Errorf("ranking entry: want 3 fields, got %d", len(tuple))
	}
	var name ID
	if err := json.Unmarshal(tuple[0], &name); err != nil {
		return fmt.Errorf("ranking entry name: %w", err)
	}
	money, err := number(tuple[1])
	if err != nil {
		return fmt.Errorf("ranking entry money: %w", err)
	}
	avg, err := number(tuple[2])
	if err != nil {
		return fmt.Errorf("ranking entry avg: %w", err)
	}
	*r = RankingEntry{Name: string(name), TotalMoney: money, AvgProfit: avg}
	return nil
}

func (r RankingEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Name, r.TotalMoney, r.AvgProfit})
}

// number accepts a JSON number or a numeric string.
func number(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}
