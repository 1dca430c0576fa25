package httpapi

import (
	"math"
	"sort"
	"time"

	"github.com/DoyleJ11/poker-table-client/internal/engine"
	"github.com/DoyleJ11/poker-table-client/internal/session"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

// Snapshot flattens a session view into its JSON form. Players are listed in
// seat order, then any player seen in the game but not seated.
func Snapshot(v session.View, now time.Time) types.TableSnapshot {
	s := v.State
	out := types.TableSnapshot{
		Version:       v.Version,
		Connection:    string(s.Conn),
		ServerID:      s.ServerID,
		LocalPlayerID: s.LocalPlayerID,
		Room: types.RoomView{
			RoomID:          s.Room.ID,
			Seats:           make([]types.SeatView, len(s.Room.Seats)),
			OwnerID:         s.Room.OwnerID,
			GameModes:       s.Room.Modes,
			CurrentGameMode: s.Room.CurrentMode,
		},
		Players: []types.PlayerView{},
		Game: types.GameView{
			GameID:        s.Game.ID,
			GameType:      s.Game.Type,
			Active:        s.Game.Active,
			DealerID:      s.Game.DealerID,
			SharedCards:   cardViews(s.Game.SharedCards),
			Hand:          cardViews(s.Game.Hand),
			ScoreCategory: s.Game.Category,
			Pots:          potViews(s.Game.Pots),
			Bets:          map[types.ID]float64{},
		},
		Controls: controlsView(s.Controls),
		Ranking:  make([]types.RankingRowView, len(s.Ranking)),
		Log:      append([]string{}, s.Log...),
	}

	seen := map[types.ID]bool{}
	for i, id := range s.Room.Seats {
		out.Room.Seats[i] = types.SeatView{Index: i}
		if id == "" {
			continue
		}
		pid := id
		out.Room.Seats[i].PlayerID = &pid
		if p, ok := s.Players[id]; ok {
			out.Players = append(out.Players, playerView(s, p, now))
			seen[id] = true
		}
	}
	var rest []types.ID
	for id := range s.Players {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, id := range rest {
		out.Players = append(out.Players, playerView(s, s.Players[id], now))
	}

	for id, amount := range s.Game.Bets {
		out.Game.Bets[id] = amount
	}
	for i, r := range s.Ranking {
		out.Ranking[i] = types.RankingRowView{Position: r.Position, Name: r.Name, Money: r.MoneyLabel(), Avg: r.AvgLabel()}
	}
	return out
}

func playerView(s engine.State, p engine.Player, now time.Time) types.PlayerView {
	pv := types.PlayerView{
		ID:     p.ID,
		Name:   p.DisplayName(),
		Money:  p.MoneyLabel(),
		Local:  p.Local,
		Dealer: p.Dealer,
		Folded: p.Folded,
		Winner: p.Winner,
		Bet:    s.Game.Bets[p.ID],
		Cards:  cardViews(p.Cards),
	}
	if t, ok := s.Timers[p.ID]; ok {
		left := int(math.Ceil(math.Max(0, t.Deadline.Sub(now).Seconds())))
		pv.CountdownSeconds = &left
	}
	return pv
}

func cardViews(slots []engine.CardSlot) []types.CardView {
	out := make([]types.CardView, len(slots))
	for i, slot := range slots {
		cv := types.CardView{Size: string(slot.Size), Label: slot.Card.String(), Selected: slot.Selected}
		sprite := engine.CardBack(slot.Size)
		if !slot.Card.FaceDown() {
			suit := int(slot.Card.Suit)
			cv.Rank = slot.Card.Rank
			cv.Suit = &suit
			// Cards in the view-model are already validated.
			if sp, err := engine.SpriteOffset(slot.Card.Rank, suit, slot.Size); err == nil {
				sprite = sp
			}
		}
		cv.Sheet, cv.X, cv.Y, cv.Width, cv.Height = sprite.Sheet, sprite.X, sprite.Y, sprite.Width, sprite.Height
		out[i] = cv
	}
	return out
}

func potViews(pots []engine.Pot) []types.Pot {
	out := make([]types.Pot, len(pots))
	for i, p := range pots {
		out[i] = types.Pot{Money: p.Money, PlayerIDs: p.PlayerIDs, WinnerIDs: p.WinnerIDs}
	}
	return out
}

func controlsView(c engine.Controls) types.ControlsView {
	cv := types.ControlsView{
		BetMode:     c.BetMode,
		NoBetOnly:   c.NoBetOnly,
		DiscardMode: c.DiscardMode,
		Ready:       c.Ready,
	}
	if c.BetMode && !c.NoBetOnly {
		cv.BetLabel = c.Stepper.Label()
		cv.Amount = c.Stepper.Amount
		cv.MinBet = c.Stepper.Min
		cv.MaxBet = c.Stepper.Max
		cv.CanIncrease = c.Stepper.CanIncrease()
		cv.CanDecrease = c.Stepper.CanDecrease()
		cv.FoldLabel = c.FoldLabel
	}
	return cv
}
