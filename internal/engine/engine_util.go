package engine

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

const maxLogLines = 5

// Hole cards dealt to each player in texas hold'em.
const defaultHoleCards = 2

func NewEmptyState() State {
	return State{
		Conn:    ConnConnecting,
		Players: map[types.ID]Player{},
		Game:    Game{Bets: map[types.ID]float64{}, NumCards: defaultHoleCards},
		Timers:  map[types.ID]Timer{},
	}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// SeatOf returns the seat index of a player.
func (r Room) SeatOf(id types.ID) (int, bool) {
	i, ok := r.seatOf[id]
	return i, ok
}

// IsOwner reports whether id owns the room.
func (r Room) IsOwner(id types.ID) bool {
	return id != "" && r.OwnerID == id
}

// DisplayName is "You" for the local player.
func (p Player) DisplayName() string {
	if p.Local {
		return "You"
	}
	return p.Name
}

func (p Player) MoneyLabel() string {
	return FormatMoney(p.Money)
}

// FormatMoney renders whole dollars, dropping any fraction.
func FormatMoney(amount float64) string {
	return "$" + strconv.FormatInt(int64(math.Trunc(amount)), 10)
}

func (r RankingRow) MoneyLabel() string {
	return "$" + strconv.FormatFloat(r.TotalMoney, 'f', -1, 64)
}

func (r RankingRow) AvgLabel() string {
	return fmt.Sprintf("%.2f", r.AvgProfit)
}

// SetRanking replaces the ranking table, numbering rows from 1 in order.
func SetRanking(s State, entries []types.RankingEntry) State {
	next := s.clone()
	next.Ranking = rankingRows(entries)
	return next
}

func rankingRows(entries []types.RankingEntry) []RankingRow {
	rows := make([]RankingRow, len(entries))
	for i, e := range entries {
		rows[i] = RankingRow{Position: i + 1, Name: e.Name, TotalMoney: e.TotalMoney, AvgProfit: e.AvgProfit}
	}
	return rows
}

func (s State) clone() State {
	n := s
	n.Room.Seats = slices.Clone(s.Room.Seats)
	n.Room.seatOf = maps.Clone(s.Room.seatOf)
	n.Room.Modes = slices.Clone(s.Room.Modes)

	n.Players = make(map[types.ID]Player, len(s.Players))
	for id, p := range s.Players {
		p.Cards = slices.Clone(p.Cards)
		n.Players[id] = p
	}

	n.Game.Hand = slices.Clone(s.Game.Hand)
	n.Game.SharedCards = slices.Clone(s.Game.SharedCards)
	n.Game.Pots = slices.Clone(s.Game.Pots)
	for i, pot := range n.Game.Pots {
		n.Game.Pots[i].PlayerIDs = slices.Clone(pot.PlayerIDs)
		n.Game.Pots[i].WinnerIDs = slices.Clone(pot.WinnerIDs)
	}
	n.Game.Bets = maps.Clone(s.Game.Bets)
	if n.Game.Bets == nil {
		n.Game.Bets = map[types.ID]float64{}
	}

	n.Timers = maps.Clone(s.Timers)
	if n.Timers == nil {
		n.Timers = map[types.ID]Timer{}
	}
	n.Ranking = slices.Clone(s.Ranking)
	n.Log = slices.Clone(s.Log)
	return n
}

func appendLog(s *State, events []Event, text string) []Event {
	s.Log = append([]string{text}, s.Log...)
	if len(s.Log) > maxLogLines {
		s.Log = s.Log[:maxLogLines]
	}
	return append(events, Event{Type: EvtLog, Text: text})
}

func markLocal(s *State) {
	for id, p := range s.Players {
		p.Local = id == s.LocalPlayerID
		s.Players[id] = p
	}
}

func resetControls(s *State) {
	s.Controls.BetMode = false
	s.Controls.NoBetOnly = false
	s.Controls.DiscardMode = false
	clearSelection(s)
}

func clearSelection(s *State) {
	for i := range s.Game.Hand {
		s.Game.Hand[i].Selected = false
	}
}

// emptyGame clears everything a previous hand left on the table.
func emptyGame(s *State) {
	for id, p := range s.Players {
		p.Folded = false
		p.Winner = false
		p.Dealer = false
		p.Cards = nil
		s.Players[id] = p
	}
	s.Game = Game{Bets: map[types.ID]float64{}, NumCards: defaultHoleCards}
}

// destroyRoom tears the table down after the socket closes.
func destroyRoom(s *State) []Event {
	resetControls(s)
	emptyGame(s)
	s.Controls.Ready = false
	s.Room = Room{}
	s.Players = map[types.ID]Player{}
	s.Timers = map[types.ID]Timer{}
	return []Event{{Type: EvtRoomDestroyed}}
}

func emptySlots(n int, size CardSize) []CardSlot {
	slots := make([]CardSlot, n)
	for i := range slots {
		slots[i] = CardSlot{Size: size}
	}
	return slots
}

// setCards reveals wire cards into existing slots, growing the slot list when
// the server sends more cards than were dealt face down.
func setCards(slots []CardSlot, cards []types.Card, size CardSize) ([]CardSlot, error) {
	for i, wc := range cards {
		c, err := NewCard(wc.Rank(), wc.Suit())
		if err != nil {
			return nil, err
		}
		if i >= len(slots) {
			slots = append(slots, CardSlot{Size: size})
		}
		slots[i].Card = c
	}
	return slots, nil
}
