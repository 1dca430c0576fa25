// Package render draws a table snapshot for the terminal.
package render

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"

	"github.com/DoyleJ11/poker-table-client/internal/engine"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

// Table renders the whole view: seats, board, local hand and controls,
// ranking and the status log.
func Table(s engine.State, now time.Time) (string, error) {
	var seats []pterm.Panel
	for i, id := range s.Room.Seats {
		seats = append(seats, pterm.Panel{Data: seatBox(s, i, id, now)})
	}
	if len(seats) == 0 {
		seats = append(seats, pterm.Panel{Data: pterm.DefaultBox.WithTitle("Room").Sprint("Waiting for the room...")})
	}

	rows := [][]pterm.Panel{
		seats,
		{{Data: boardBox(s)}},
	}
	if s.Game.Active {
		rows = append(rows, []pterm.Panel{{Data: handBox(s)}, {Data: controlsBox(s)}})
	} else {
		rows = append(rows, []pterm.Panel{{Data: controlsBox(s)}})
	}

	table, err := pterm.DefaultPanel.WithPanels(rows).WithPadding(2).Srender()
	if err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}

	ranking, err := Ranking(s.Ranking)
	if err != nil {
		return "", err
	}
	return table + "\n" + ranking + "\n" + Log(s.Log), nil
}

func seatBox(s engine.State, seat int, id types.ID, now time.Time) string {
	title := "Seat " + strconv.Itoa(seat+1)
	p, ok := s.Players[id]
	if id == "" || !ok {
		return titledBox(title, pterm.Gray("(empty)"))
	}

	var b strings.Builder
	name := p.DisplayName()
	if s.Room.IsOwner(id) {
		name += " *"
	}
	b.WriteString(pterm.Bold.Sprint(name) + "\n")
	b.WriteString(p.MoneyLabel() + "\n")

	var flags []string
	if p.Dealer {
		flags = append(flags, pterm.LightYellow("D"))
	}
	if p.Winner {
		flags = append(flags, pterm.LightGreen("Winner"))
	}
	if p.Folded {
		flags = append(flags, pterm.LightRed("Folded"))
	}
	if bet, ok := s.Game.Bets[id]; ok {
		flags = append(flags, "bet "+engine.FormatMoney(bet))
	}
	if t, ok := s.Timers[id]; ok {
		flags = append(flags, pterm.LightCyan(Countdown(t, now)))
	}
	if len(flags) > 0 {
		b.WriteString(strings.Join(flags, " ") + "\n")
	}
	if len(p.Cards) > 0 {
		b.WriteString(Cards(p.Cards))
	}
	return titledBox(title, strings.TrimRight(b.String(), "\n"))
}

// titledBox draws a padded box with the title on its top border. pterm
// cannot fit a title wider than the body when the padding exceeds one
// column, so the first line is widened to the title.
func titledBox(title, body string) string {
	lines := strings.Split(body, "\n")
	width := 0
	for _, l := range lines {
		width = max(width, runewidth.StringWidth(pterm.RemoveColorFromString(l)))
	}
	if short := runewidth.StringWidth(title) - width; short > 0 {
		lines[0] += strings.Repeat(" ", short)
	}
	return pterm.DefaultBox.WithTitle(title).WithTitleTopLeft().WithHorizontalPadding(2).Sprint(strings.Join(lines, "\n"))
}

func boardBox(s engine.State) string {
	var b strings.Builder
	if s.Game.Active {
		fmt.Fprintf(&b, "Game %s  blinds %s/%s\n", s.Game.ID,
			engine.FormatMoney(s.Game.SmallBlind), engine.FormatMoney(s.Game.BigBlind))
	}
	if len(s.Game.SharedCards) > 0 {
		b.WriteString(Cards(s.Game.SharedCards) + "\n")
	} else {
		b.WriteString(pterm.Gray("no shared cards") + "\n")
	}
	for i, pot := range s.Game.Pots {
		fmt.Fprintf(&b, "Pot %d: %s (%d players)\n", i+1, engine.FormatMoney(pot.Money), len(pot.PlayerIDs))
	}
	return pterm.DefaultBox.WithTitle("Table").WithTitleTopCenter().Sprint(strings.TrimRight(b.String(), "\n"))
}

func handBox(s engine.State) string {
	body := Cards(s.Game.Hand)
	if s.Game.Category != "" {
		body += "\n" + s.Game.Category
	}
	if s.Controls.DiscardMode {
		body += "\n" + pterm.LightYellow("select cards to change, then discard")
	}
	return pterm.DefaultBox.WithTitle("Your hand").WithTitleTopLeft().Sprint(body)
}

func controlsBox(s engine.State) string {
	c := s.Controls
	var lines []string

	switch {
	case c.BetMode && c.NoBetOnly:
		lines = append(lines, "[nobet] No bet")
	case c.BetMode:
		st := c.Stepper
		lines = append(lines,
			fmt.Sprintf("%s %s  %s  %s %s",
				button("--", st.CanDecrease()), button("-", st.CanDecrease()),
				pterm.Bold.Sprint(st.Label()),
				button("+", st.CanIncrease()), button("++", st.CanIncrease())),
			fmt.Sprintf("[bet] %s  [allin] All In  [fold] %s", st.Label(), c.FoldLabel),
		)
	}

	ready := "not ready"
	if c.Ready {
		ready = pterm.LightGreen("ready")
	}
	lines = append(lines, "[ready] "+ready)

	switch {
	case len(s.Room.Modes) == 0:
	case s.Room.IsOwner(s.LocalPlayerID):
		lines = append(lines, "Game mode ([mode ID] to switch):")
		for _, m := range s.Room.Modes {
			mark := " "
			if m.ModeID == s.Room.CurrentMode {
				mark = ">"
			}
			lines = append(lines, fmt.Sprintf("%s %s %s", mark, m.ModeID, m.ModeName))
		}
	default:
		lines = append(lines, "Mode: "+modeName(s.Room))
	}
	return pterm.DefaultBox.WithTitle("Controls").WithTitleTopLeft().Sprint(strings.Join(lines, "\n"))
}

func modeName(r engine.Room) string {
	i := slices.IndexFunc(r.Modes, func(m types.GameMode) bool { return m.ModeID == r.CurrentMode })
	if i < 0 {
		return string(r.CurrentMode)
	}
	return r.Modes[i].ModeName
}

func button(label string, enabled bool) string {
	if !enabled {
		return pterm.Gray("[" + label + "]")
	}
	return "[" + label + "]"
}

// Cards draws slots left to right; selected slots are marked.
func Cards(slots []engine.CardSlot) string {
	parts := make([]string, len(slots))
	for i, slot := range slots {
		parts[i] = card(slot)
	}
	return strings.Join(parts, " ")
}

func card(slot engine.CardSlot) string {
	face := "[" + slot.Card.String() + "]"
	if slot.Card.FaceDown() {
		face = pterm.Gray(face)
	} else if slot.Card.Suit.Red() {
		face = pterm.LightRed(face)
	}
	if slot.Selected {
		face = "*" + face
	}
	return face
}

// Countdown shows whole seconds left, rounded up.
func Countdown(t engine.Timer, now time.Time) string {
	left := t.Deadline.Sub(now).Seconds()
	if left < 0 {
		left = 0
	}
	return strconv.Itoa(int(math.Ceil(left))) + "s"
}

func Ranking(rows []engine.RankingRow) (string, error) {
	data := pterm.TableData{{"#", "Player", "Money", "Avg"}}
	for _, r := range rows {
		data = append(data, []string{strconv.Itoa(r.Position), r.Name, r.MoneyLabel(), r.AvgLabel()})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("render ranking: %w", err)
	}
	return out, nil
}

func Log(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return pterm.DefaultBox.WithTitle("Log").WithTitleTopLeft().Sprint(strings.Join(lines, "\n"))
}
