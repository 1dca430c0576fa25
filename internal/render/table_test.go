package render

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/poker-table-client/internal/engine"
	"github.com/DoyleJ11/poker-table-client/internal/protocol"
)

func TestMain(m *testing.M) {
	pterm.DisableColor()
	os.Exit(m.Run())
}

var now = time.Date(2025, 1, 3, 16, 58, 0, 0, time.UTC)

func feed(t *testing.T, frames ...string) engine.State {
	t.Helper()
	s := engine.NewEmptyState()
	for _, f := range frames {
		msg, err := protocol.Decode([]byte(f))
		require.NoError(t, err)
		_, s, err = engine.Apply(s, msg, now)
		require.NoError(t, err)
	}
	return s
}

func TestTableShowsSeats(t *testing.T) {
	s := feed(t, `{"message_type":"room-update","event":"player-added","room_id":"R1",
		"player_ids":[null,"P1"],"players":{"P1":{"id":"P1","name":"Alice","money":100}},"player_id":"P1"}`)

	out, err := Table(s, now)
	require.NoError(t, err)
	assert.Contains(t, out, "Seat 1")
	assert.Contains(t, out, "(empty)")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "$100")
}

func TestTableShowsBetControls(t *testing.T) {
	s := feed(t,
		`{"message_type":"connect","server_id":"srv","player":{"id":"P1","name":"Alice","money":100}}`,
		`{"message_type":"room-update","event":"player-added","room_id":"R1","player_ids":["P1","P2"],
			"players":{"P1":{"id":"P1","name":"Alice","money":100},"P2":{"id":"P2","name":"Bob","money":100}},"player_id":"P2"}`,
		`{"message_type":"game-update","event":"new-game","game_id":"G1","dealer_id":"P2","players":[{"id":"P1"},{"id":"P2"}]}`,
		`{"message_type":"game-update","event":"cards-assignment","target":"P1","cards":[[14,3],[13,0]],"score":{"category":0}}`,
		`{"message_type":"game-update","event":"player-action","action":"bet","player":{"id":"P1"},"min_bet":10,"max_bet":100,"timeout":12}`,
	)

	out, err := Table(s, now)
	require.NoError(t, err)
	assert.Contains(t, out, "You")
	assert.Contains(t, out, "[A♥]")
	assert.Contains(t, out, "[K♠]")
	assert.Contains(t, out, "Highest card")
	assert.Contains(t, out, "Call")
	assert.Contains(t, out, "[fold] Fold")
	assert.Contains(t, out, "12s")
}

func TestTableShortSeatBodies(t *testing.T) {
	tests := []struct {
		name   string
		frames []string
		want   []string
	}{
		{
			name: "other player",
			frames: []string{`{"message_type":"room-update","event":"player-added","room_id":"R1",
				"player_ids":["P1"],"players":{"P1":{"id":"P1","name":"Alice","money":100}},"player_id":"P1"}`},
			want: []string{"Alice", "$100"},
		},
		{
			name: "local player",
			frames: []string{
				`{"message_type":"connect","server_id":"srv","player":{"id":"P1","name":"Alice","money":3000}}`,
				`{"message_type":"room-update","event":"player-added","room_id":"R1",
					"player_ids":["P1",null],"players":{"P1":{"id":"P1","name":"Alice","money":3000}},"player_id":"P1"}`,
			},
			want: []string{"You", "$3000"},
		},
		{
			name: "broke local player",
			frames: []string{
				`{"message_type":"connect","server_id":"srv","player":{"id":"P1","name":"A","money":0}}`,
				`{"message_type":"room-update","event":"player-added","room_id":"R1",
					"player_ids":[null,null,null,null,null,null,null,null,null,"P1"],"players":{"P1":{"id":"P1","name":"A","money":0}},"player_id":"P1"}`,
			},
			want: []string{"Seat 10", "You", "$0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := feed(t, tt.frames...)
			var out string
			require.NotPanics(t, func() {
				var err error
				out, err = Table(s, now)
				require.NoError(t, err)
			})
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestTitledBoxWidensToTitle(t *testing.T) {
	out := titledBox("Seat 1", "You\n$0")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Seat 1")
	for _, l := range lines[1:] {
		assert.Equal(t, runewidth.StringWidth(lines[0]), runewidth.StringWidth(l), "line %q", l)
	}
}

const ownerFrames = `{"message_type":"room-update","event":"room-owner-assigned","room_id":"R1","owner_id":"P1",
	"game_modes":[{"mode_id":1,"mode_name":"Traditional"},{"mode_id":2,"mode_name":"Short Deck"}],"current_game_mode":2,
	"player_ids":["P1","P2"],"players":{"P1":{"id":"P1","name":"Alice","money":100},"P2":{"id":"P2","name":"Bob","money":100}}}`

func TestOwnerSeesSelectableModes(t *testing.T) {
	s := feed(t, `{"message_type":"connect","server_id":"srv","player":{"id":"P1","name":"Alice","money":100}}`, ownerFrames)

	out, err := Table(s, now)
	require.NoError(t, err)
	assert.Contains(t, out, "[mode ID]")
	assert.Contains(t, out, "  1 Traditional")
	assert.Contains(t, out, "> 2 Short Deck")
	assert.NotContains(t, out, "Mode: ")
}

func TestOtherPlayersSeeModeLabel(t *testing.T) {
	s := feed(t, `{"message_type":"connect","server_id":"srv","player":{"id":"P2","name":"Bob","money":100}}`, ownerFrames)

	out, err := Table(s, now)
	require.NoError(t, err)
	assert.Contains(t, out, "Mode: Short Deck")
	assert.NotContains(t, out, "Traditional")
	assert.NotContains(t, out, "[mode ID]")
}

func TestCardsMarksSelectionAndFaceDown(t *testing.T) {
	slots := []engine.CardSlot{
		{Size: engine.SizeLarge, Card: engine.Card{Rank: 10, Suit: engine.Diamonds}, Selected: true},
		{Size: engine.SizeLarge},
	}
	assert.Equal(t, "*[10♦] [??]", Cards(slots))
}

func TestCountdownRoundsUp(t *testing.T) {
	assert.Equal(t, "3s", Countdown(engine.Timer{Deadline: now.Add(2100 * time.Millisecond)}, now))
	assert.Equal(t, "0s", Countdown(engine.Timer{Deadline: now.Add(-time.Second)}, now))
}

func TestRankingTable(t *testing.T) {
	s := engine.SetRanking(engine.NewEmptyState(), nil)
	out, err := Ranking(s.Ranking)
	require.NoError(t, err)
	assert.Contains(t, out, "Player")

	rows := []engine.RankingRow{{Position: 1, Name: "Alice", TotalMoney: 1200, AvgProfit: 3.456}}
	out, err = Ranking(rows)
	require.NoError(t, err)
	assert.Contains(t, out, "$1200")
	assert.Contains(t, out, "3.46")
}
