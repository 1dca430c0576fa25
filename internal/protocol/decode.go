package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

var ErrMalformedFrame = errors.New("malformed frame")
var ErrMalformedPayload = errors.New("malformed payload")

// DeadlineSpec is the action deadline as sent by the server: an absolute date
// and, as a fallback, a number of seconds.
type DeadlineSpec struct {
	Date    string
	Seconds float64
}

// Layout of timeout_date, e.g. "2025-01-03 16:58:00+0000".
const deadlineLayout = "2006-01-02 15:04:05-0700"

// Until returns how long is left before the deadline, never negative.
func (d DeadlineSpec) Until(now time.Time) time.Duration {
	if at, ok := d.At(); ok {
		if left := at.Sub(now); left > 0 {
			return left
		}
		return 0
	}
	if d.Seconds > 0 {
		return time.Duration(d.Seconds * float64(time.Second))
	}
	return 0
}

// At parses the absolute deadline, if any.
func (d DeadlineSpec) At() (time.Time, bool) {
	if d.Date == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{deadlineLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, d.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Decode parses one text frame. Unknown message types and events are not an
// error: they decode to Unknown, UnknownRoomEvent or UnknownGameEvent.
func Decode(data []byte) (Message, error) {
	var m types.ServerMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch m.MessageType {
	case "ping":
		return Ping{}, nil
	case "ping-state":
		return PingState{}, nil
	case "connect":
		msg := Connect{ServerID: m.ServerID}
		if m.Player != nil {
			msg.Player = *m.Player
		}
		return msg, nil
	case "disconnect":
		return Disconnect{}, nil
	case "error":
		return Error{Text: m.Error}, nil
	case "room-update":
		return decodeRoomUpdate(m)
	case "game-update":
		return decodeGameUpdate(m)
	default:
		return Unknown{Type: m.MessageType}, nil
	}
}

func decodeRoomUpdate(m types.ServerMessage) (Message, error) {
	seats := make([]types.ID, len(m.PlayerIDs))
	for i, id := range m.PlayerIDs {
		if id != nil {
			seats[i] = *id
		}
	}
	players, err := playerMap(m.Players)
	if err != nil {
		return nil, err
	}

	msg := RoomUpdate{RoomID: m.RoomID, Seats: seats, Players: players}
	switch m.Event {
	case "player-added":
		msg.Event = PlayerAdded{PlayerID: m.PlayerID}
	case "player-rejoined":
		msg.Event = PlayerRejoined{PlayerID: m.PlayerID}
	case "player-removed":
		msg.Event = PlayerRemoved{PlayerID: m.PlayerID}
	case "room-owner-assigned":
		msg.Event = RoomOwnerAssigned{OwnerID: m.OwnerID, Modes: m.GameModes, CurrentMode: m.CurrentGameMode}
	default:
		msg.Event = UnknownRoomEvent{Event: m.Event}
	}
	return msg, nil
}

func decodeGameUpdate(m types.ServerMessage) (Message, error) {
	msg := GameUpdate{GameID: m.GameID}
	player := types.Player{}
	if m.Player != nil {
		player = *m.Player
	}

	switch m.Event {
	case "new-game":
		var players []types.Player
		if len(m.Players) > 0 {
			if err := json.Unmarshal(m.Players, &players); err != nil {
				return nil, fmt.Errorf("%w: new-game players: %v", ErrMalformedPayload, err)
			}
		}
		msg.Event = NewGame{
			GameType:   m.GameType,
			Players:    players,
			DealerID:   m.DealerID,
			BigBlind:   m.BigBlind,
			SmallBlind: m.SmallBlind,
		}
	case "cards-assignment":
		ev := CardsAssignment{Target: m.Target, Cards: m.Cards}
		if m.Score != nil {
			ev.Score = *m.Score
		}
		msg.Event = ev
	case "game-over":
		msg.Event = GameOver{}
	case "fold":
		msg.Event = Fold{Player: player}
	case "dead-player":
		msg.Event = DeadPlayer{Player: player}
	case "bet":
		msg.Event = Bet{Player: player, Amount: m.Bet, BetType: m.BetType, Bets: betMap(m.Bets)}
	case "pots-update":
		players, err := playerMap(m.Players)
		if err != nil {
			return nil, err
		}
		msg.Event = PotsUpdate{Players: players, Pots: m.Pots}
	case "player-action":
		msg.Event = PlayerAction{
			Action:   m.Action,
			Player:   player,
			MinBet:   m.MinBet,
			MaxBet:   m.MaxBet,
			MinScore: m.MinScore,
			Bets:     betMap(m.Bets),
			Deadline: DeadlineSpec{Date: m.TimeoutDate, Seconds: m.Timeout},
		}
	case "cards-change":
		msg.Event = CardsChange{Player: player, NumCards: m.NumCards}
	case "shared-cards":
		msg.Event = SharedCards{Cards: m.Cards}
	case "winner-designation":
		players, err := playerMap(m.Players)
		if err != nil {
			return nil, err
		}
		ev := WinnerDesignation{Pots: m.Pots, Players: players}
		if m.Pot != nil {
			ev.Pot = *m.Pot
		}
		msg.Event = ev
	case "showdown":
		hands := map[types.ID]types.ShowdownHand{}
		if len(m.Players) > 0 {
			if err := json.Unmarshal(m.Players, &hands); err != nil {
				return nil, fmt.Errorf("%w: showdown players: %v", ErrMalformedPayload, err)
			}
		}
		msg.Event = Showdown{Players: hands}
	case "update-ranking-data":
		msg.Event = UpdateRankingData{Rows: m.RankingList}
	default:
		msg.Event = UnknownGameEvent{Event: m.Event}
	}
	return msg, nil
}

func playerMap(raw json.RawMessage) (map[types.ID]types.Player, error) {
	players := map[types.ID]types.Player{}
	if len(raw) == 0 || string(raw) == "null" {
		return players, nil
	}
	if err := json.Unmarshal(raw, &players); err != nil {
		return nil, fmt.Errorf("%w: players: %v", ErrMalformedPayload, err)
	}
	for id, p := range players {
		if p.ID == "" {
			p.ID = id
			players[id] = p
		}
	}
	return players, nil
}

func betMap(bets map[string]float64) map[types.ID]float64 {
	out := make(map[types.ID]float64, len(bets))
	for id, amount := range bets {
		out[types.ID(id)] = amount
	}
	return out
}
