package engine

import (
	"fmt"
	"time"

	"github.com/DoyleJ11/poker-table-client/internal/protocol"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

// applyGame runs after controls and timers have been reset, so every handler
// starts from a table where nobody is being prompted.
func applyGame(s *State, m protocol.GameUpdate, now time.Time) ([]Event, error) {
	switch ev := m.Event.(type) {
	case protocol.NewGame:
		newGame(s, m.GameID, ev)
		return nil, nil

	case protocol.CardsAssignment:
		return nil, assignCards(s, ev)

	case protocol.GameOver:
		s.Controls.Ready = false
		return []Event{{Type: EvtRankingRefresh}}, nil

	case protocol.Fold:
		fold(s, ev.Player.ID)
		return nil, nil

	case protocol.DeadPlayer:
		fold(s, ev.Player.ID)
		return nil, nil

	case protocol.Bet:
		updatePlayer(s, ev.Player)
		s.Game.Bets = positiveBets(ev.Bets)
		return nil, nil

	case protocol.PotsUpdate:
		updatePlayers(s, ev.Players)
		s.Game.Pots = pots(ev.Pots)
		s.Game.Bets = map[types.ID]float64{}
		return nil, nil

	case protocol.PlayerAction:
		return playerAction(s, ev, now), nil

	case protocol.CardsChange:
		return cycleCards(s, ev.Player.ID, ev.NumCards), nil

	case protocol.SharedCards:
		shared, err := setCards(nil, ev.Cards, SizeMedium)
		if err != nil {
			return nil, err
		}
		s.Game.SharedCards = append(s.Game.SharedCards, shared...)
		return nil, nil

	case protocol.WinnerDesignation:
		updatePlayers(s, ev.Players)
		s.Game.Pots = pots(ev.Pots)
		setWinners(s, ev.Pot)
		return nil, nil

	case protocol.Showdown:
		return nil, showdown(s, ev.Players)

	case protocol.UpdateRankingData:
		s.Ranking = rankingRows(ev.Rows)
		return nil, nil

	case protocol.UnknownGameEvent:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: game event %T", ErrUnsupportedMessage, m.Event)
	}
}

func newGame(s *State, gameID string, ev protocol.NewGame) {
	emptyGame(s)
	s.Game.ID = gameID
	s.Game.Type = ev.GameType
	s.Game.DealerID = ev.DealerID
	s.Game.BigBlind = ev.BigBlind
	s.Game.SmallBlind = ev.SmallBlind
	s.Game.Active = true

	for _, dto := range ev.Players {
		p, ok := s.Players[dto.ID]
		if !ok {
			p = newPlayer(s, dto.ID, dto)
		}
		p.Cards = emptySlots(s.Game.NumCards, SizeSmall)
		p.Dealer = dto.ID == ev.DealerID
		p.Local = dto.ID == s.LocalPlayerID
		s.Players[dto.ID] = p
	}
}

func assignCards(s *State, ev protocol.CardsAssignment) error {
	n := max(s.Game.NumCards, len(ev.Cards))
	hand, err := setCards(emptySlots(n, SizeLarge), ev.Cards, SizeLarge)
	if err != nil {
		return err
	}

	if p, ok := s.Players[s.LocalPlayerID]; ok {
		seat := p.Cards
		if len(seat) == 0 {
			seat = emptySlots(n, SizeSmall)
		}
		if p.Cards, err = setCards(seat, ev.Cards, SizeSmall); err != nil {
			return err
		}
		s.Players[s.LocalPlayerID] = p
	}

	s.Game.Hand = hand
	s.Game.Category = ScoreCategory(ev.Score.Category)
	return nil
}

func fold(s *State, id types.ID) {
	if p, ok := s.Players[id]; ok {
		p.Folded = true
		s.Players[id] = p
	}
}

// updatePlayer refreshes money and name of a seated player. Absent players are
// not created.
func updatePlayer(s *State, dto types.Player) {
	p, ok := s.Players[dto.ID]
	if !ok {
		return
	}
	p.Money = dto.Money
	if dto.Name != "" {
		p.Name = dto.Name
	}
	s.Players[dto.ID] = p
}

func updatePlayers(s *State, players map[types.ID]types.Player) {
	for _, dto := range players {
		updatePlayer(s, dto)
	}
}

func positiveBets(bets map[types.ID]float64) map[types.ID]float64 {
	out := map[types.ID]float64{}
	for id, amount := range bets {
		if amount > 0 {
			out[id] = amount
		}
	}
	return out
}

func pots(in []types.Pot) []Pot {
	out := make([]Pot, len(in))
	for i, p := range in {
		out[i] = Pot{
			Money:     p.Money,
			PlayerIDs: append([]types.ID(nil), p.PlayerIDs...),
			WinnerIDs: append([]types.ID(nil), p.WinnerIDs...),
		}
	}
	return out
}

// setWinners folds everyone, then unfolds the winners among the pot's
// participants.
func setWinners(s *State, pot types.Pot) {
	for id, p := range s.Players {
		p.Folded = true
		p.Winner = false
		s.Players[id] = p
	}

	winners := make(map[types.ID]bool, len(pot.WinnerIDs))
	for _, id := range pot.WinnerIDs {
		winners[id] = true
	}
	for _, id := range pot.PlayerIDs {
		p, ok := s.Players[id]
		if !ok {
			continue
		}
		p.Winner = winners[id]
		p.Folded = !winners[id]
		s.Players[id] = p
	}
}

func playerAction(s *State, ev protocol.PlayerAction, now time.Time) []Event {
	var events []Event
	id := ev.Player.ID

	if id != "" && id == s.LocalPlayerID {
		s.Controls.AllowedToBet = ev.Player.AllowedToBet
		switch ev.Action {
		case protocol.ActionBet:
			enableBetMode(s, ev)
			events = append(events, Event{Type: EvtPrompted, PlayerID: id, Text: ev.Action})
		case protocol.ActionCardsChange:
			s.Controls.DiscardMode = true
			events = append(events, Event{Type: EvtPrompted, PlayerID: id, Text: ev.Action})
		}
	}

	if id == "" {
		return events
	}
	left := ev.Deadline.Until(now)
	s.Timers[id] = Timer{Deadline: now.Add(left), Seconds: left.Seconds()}
	events = append(events, Event{Type: EvtCountdownStarted, PlayerID: id, Seconds: left.Seconds()})
	return events
}

func enableBetMode(s *State, ev protocol.PlayerAction) {
	c := &s.Controls
	c.BetMode = true
	if ev.MinScore == 0 || c.AllowedToBet {
		c.NoBetOnly = false
		c.Stepper = NewStepper(ev.MinBet, ev.MaxBet)
		c.FoldLabel = "Fold"
		if ev.MinScore != 0 {
			c.FoldLabel = "Pass"
		}
		return
	}
	c.NoBetOnly = true
	c.Stepper = Stepper{}
	c.FoldLabel = ""
}

// cycleCards marks the trailing n cards of a player as swapped.
func cycleCards(s *State, id types.ID, n int) []Event {
	p, ok := s.Players[id]
	if !ok || n <= 0 {
		return nil
	}
	start := max(len(p.Cards)-n, 0)
	for i := start; i < len(p.Cards); i++ {
		p.Cards[i].Cycles++
	}
	s.Players[id] = p
	return []Event{{Type: EvtCardsCycled, PlayerID: id, Count: len(p.Cards) - start}}
}

func showdown(s *State, hands map[types.ID]types.ShowdownHand) error {
	for id, hand := range hands {
		p, ok := s.Players[id]
		if !ok {
			continue
		}
		cards, err := setCards(p.Cards, hand.Cards, SizeSmall)
		if err != nil {
			return err
		}
		p.Cards = cards
		s.Players[id] = p
	}
	return nil
}
