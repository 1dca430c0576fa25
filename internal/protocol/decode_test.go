package protocol

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

func TestDecode_TopLevelTags(t *testing.T) {
	cases := []struct {
		name  string
		frame string
		want  Message
	}{
		{name: "ping", frame: `{"message_type":"ping"}`, want: Ping{}},
		{name: "ping-state", frame: `{"message_type":"ping-state"}`, want: PingState{}},
		{name: "disconnect", frame: `{"message_type":"disconnect"}`, want: Disconnect{}},
		{name: "error", frame: `{"message_type":"error","error":"Unrecognized user"}`, want: Error{Text: "Unrecognized user"}},
		{
			name:  "connect",
			frame: `{"message_type":"connect","server_id":"srv-1","player":{"id":7,"name":"Alice","money":100}}`,
			want:  Connect{ServerID: "srv-1", Player: types.Player{ID: "7", Name: "Alice", Money: 100}},
		},
		{name: "unknown", frame: `{"message_type":"chat"}`, want: Unknown{Type: "chat"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.frame))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_MalformedFrame(t *testing.T) {
	_, err := Decode([]byte(`{"message_type":`))
	if !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("want ErrMalformedFrame, got %v", err)
	}
}

func TestDecode_RoomUpdateSeats(t *testing.T) {
	frame := `{"message_type":"room-update","event":"player-added","room_id":"R1",
		"player_ids":[null,"P1"],"players":{"P1":{"id":"P1","name":"Alice","money":100}},"player_id":"P1"}`

	msg, err := Decode([]byte(frame))
	require.NoError(t, err)

	ru, ok := msg.(RoomUpdate)
	require.True(t, ok, "want RoomUpdate, got %T", msg)
	assert.Equal(t, types.ID("R1"), ru.RoomID)
	assert.Equal(t, []types.ID{"", "P1"}, ru.Seats)
	assert.Equal(t, "Alice", ru.Players["P1"].Name)
	assert.Equal(t, PlayerAdded{PlayerID: "P1"}, ru.Event)
}

func TestDecode_RoomOwnerAssigned(t *testing.T) {
	frame := `{"message_type":"room-update","event":"room-owner-assigned","owner_id":"P1",
		"game_modes":[{"mode_id":1,"mode_name":"Traditional"},{"mode_id":2,"mode_name":"Short deck"}],
		"current_game_mode":1,"player_ids":["P1"],"players":{"P1":{"id":"P1"}}}`

	msg, err := Decode([]byte(frame))
	require.NoError(t, err)
	ev := msg.(RoomUpdate).Event.(RoomOwnerAssigned)
	assert.Equal(t, types.ID("P1"), ev.OwnerID)
	assert.Equal(t, types.ID("1"), ev.CurrentMode)
	require.Len(t, ev.Modes, 2)
	assert.Equal(t, types.GameMode{ModeID: "2", ModeName: "Short deck"}, ev.Modes[1])
}

func TestDecode_GameEvents(t *testing.T) {
	cases := []struct {
		name  string
		frame string
		check func(t *testing.T, ev GameEvent)
	}{
		{
			name:  "new-game players list",
			frame: `{"message_type":"game-update","event":"new-game","game_id":"G1","dealer_id":"P1","players":[{"id":"P1"},{"id":"P2"}]}`,
			check: func(t *testing.T, ev GameEvent) {
				ng := ev.(NewGame)
				assert.Equal(t, types.ID("P1"), ng.DealerID)
				assert.Len(t, ng.Players, 2)
			},
		},
		{
			name:  "cards-assignment",
			frame: `{"message_type":"game-update","event":"cards-assignment","target":"P1","cards":[[14,0],[13,3]],"score":{"category":1,"cards":[]}}`,
			check: func(t *testing.T, ev GameEvent) {
				ca := ev.(CardsAssignment)
				assert.Equal(t, []types.Card{{14, 0}, {13, 3}}, ca.Cards)
				assert.Equal(t, 1, ca.Score.Category)
			},
		},
		{
			name:  "bet with overlay",
			frame: `{"message_type":"game-update","event":"bet","player":{"id":"P2","money":90},"bet":10,"bet_type":"raise","bets":{"P2":10}}`,
			check: func(t *testing.T, ev GameEvent) {
				b := ev.(Bet)
				assert.Equal(t, 10.0, b.Amount)
				assert.Equal(t, map[types.ID]float64{"P2": 10}, b.Bets)
			},
		},
		{
			name:  "pots-update players map",
			frame: `{"message_type":"game-update","event":"pots-update","pots":[{"money":20,"player_ids":["P1","P2"]}],"players":{"P1":{"id":"P1","money":90}}}`,
			check: func(t *testing.T, ev GameEvent) {
				pu := ev.(PotsUpdate)
				assert.Len(t, pu.Pots, 1)
				assert.Equal(t, 90.0, pu.Players["P1"].Money)
			},
		},
		{
			name:  "player-action",
			frame: `{"message_type":"game-update","event":"player-action","action":"bet","player":{"id":"P1"},"min_bet":10,"max_bet":100,"timeout":30,"timeout_date":"2025-01-03 16:58:30+0000"}`,
			check: func(t *testing.T, ev GameEvent) {
				pa := ev.(PlayerAction)
				assert.Equal(t, ActionBet, pa.Action)
				assert.Equal(t, 100.0, pa.MaxBet)
				at, ok := pa.Deadline.At()
				require.True(t, ok)
				assert.Equal(t, time.Date(2025, 1, 3, 16, 58, 30, 0, time.UTC), at.UTC())
			},
		},
		{
			name:  "winner-designation",
			frame: `{"message_type":"game-update","event":"winner-designation","pot":{"money":40,"player_ids":["P1","P2"],"winner_ids":["P2"]},"pots":[],"players":{}}`,
			check: func(t *testing.T, ev GameEvent) {
				wd := ev.(WinnerDesignation)
				assert.Equal(t, []types.ID{"P2"}, wd.Pot.WinnerIDs)
			},
		},
		{
			name:  "showdown hands",
			frame: `{"message_type":"game-update","event":"showdown","players":{"P1":{"cards":[[2,1],[3,1]],"score":{"category":0}}}}`,
			check: func(t *testing.T, ev GameEvent) {
				sd := ev.(Showdown)
				assert.Equal(t, []types.Card{{2, 1}, {3, 1}}, sd.Players["P1"].Cards)
			},
		},
		{
			name:  "update-ranking-data",
			frame: `{"message_type":"game-update","event":"update-ranking-data","ranking_list":[["Alice",1200,3.456],["Bob","900","-1.5"]]}`,
			check: func(t *testing.T, ev GameEvent) {
				rows := ev.(UpdateRankingData).Rows
				require.Len(t, rows, 2)
				assert.Equal(t, types.RankingEntry{Name: "Bob", TotalMoney: 900, AvgProfit: -1.5}, rows[1])
			},
		},
		{
			name:  "unknown event",
			frame: `{"message_type":"game-update","event":"chat-line"}`,
			check: func(t *testing.T, ev GameEvent) {
				assert.Equal(t, UnknownGameEvent{Event: "chat-line"}, ev)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := Decode([]byte(tc.frame))
			require.NoError(t, err)
			gu, ok := msg.(GameUpdate)
			require.True(t, ok, "want GameUpdate, got %T", msg)
			tc.check(t, gu.Event)
		})
	}
}

func TestDeadlineSpec_Until(t *testing.T) {
	now := time.Date(2025, 1, 3, 16, 58, 0, 0, time.UTC)

	d := DeadlineSpec{Date: "2025-01-03 16:58:30+0000"}
	if got := d.Until(now); got != 30*time.Second {
		t.Fatalf("want 30s, got %v", got)
	}

	past := DeadlineSpec{Date: "2025-01-03 16:57:00+0000"}
	if got := past.Until(now); got != 0 {
		t.Fatalf("past deadline: want 0, got %v", got)
	}

	fallback := DeadlineSpec{Seconds: 12}
	if got := fallback.Until(now); got != 12*time.Second {
		t.Fatalf("seconds fallback: want 12s, got %v", got)
	}
}
