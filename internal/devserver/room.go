// Package devserver is a stand-in table server speaking the client protocol.
// It seats players and relays game-update frames that are pushed to it. It
// deals no cards and runs no betting rounds.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

var ErrRoomFull = errors.New("room is full")
var ErrRoomClosed = errors.New("room closed")

type RoomMsg interface{ isRoomMsg() }

// Join seats a player, or swaps the connection of a player already seated.
type Join struct {
	Player types.Player
	ConnID string
	Outbox chan []byte
	Reply  chan error
}

func (Join) isRoomMsg() {}

// Leave is ignored unless ConnID still owns the seat, so a stale socket
// closing after a rejoin does not unseat the player.
type Leave struct {
	PlayerID types.ID
	ConnID   string
}

func (Leave) isRoomMsg() {}

type FromPlayer struct {
	PlayerID types.ID
	Frame    []byte
}

func (FromPlayer) isRoomMsg() {}

// Broadcast relays a server frame. Frames with a "target" go to that player only.
type Broadcast struct {
	Frame []byte
}

func (Broadcast) isRoomMsg() {}

type GetRoom struct {
	Reply chan RoomView
}

func (GetRoom) isRoomMsg() {}

type ShutdownRoom struct{}

func (ShutdownRoom) isRoomMsg() {}

// Received is one frame a player sent, in arrival order.
type Received struct {
	PlayerID    types.ID        `json:"player_id"`
	MessageType string          `json:"message_type"`
	Frame       json.RawMessage `json:"frame"`
}

type RoomView struct {
	ID          types.ID          `json:"room_id"`
	Seats       []types.ID        `json:"seats"`
	OwnerID     types.ID          `json:"owner_id"`
	CurrentMode types.ID          `json:"current_game_mode"`
	Ready       map[types.ID]bool `json:"ready"`
	Received    []Received        `json:"received"`
	NumMembers  int               `json:"num_members"`
}

type member struct {
	connID string
	outbox chan []byte
}

type Room struct {
	id      types.ID
	inbox   chan RoomMsg
	seats   []types.ID
	players map[types.ID]types.Player
	members map[types.ID]member
	ready   map[types.ID]bool
	owner   types.ID
	modes   []types.GameMode
	mode    types.ID
	log     []Received
	onEmpty func()
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

type RoomOptions struct {
	Seats  int
	Modes  []types.GameMode
	Logger *zap.Logger
}

// NewRoom starts the room loop. onEmpty runs on the loop goroutine when the
// last player leaves and must not block.
func NewRoom(parent context.Context, id types.ID, opts RoomOptions, onEmpty func()) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		id:      id,
		inbox:   make(chan RoomMsg, 64),
		seats:   make([]types.ID, opts.Seats),
		players: make(map[types.ID]types.Player),
		members: make(map[types.ID]member),
		ready:   make(map[types.ID]bool),
		modes:   slices.Clone(opts.Modes),
		onEmpty: onEmpty,
		logger:  opts.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	if len(r.modes) > 0 {
		r.mode = r.modes[0].ModeID
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.logger = r.logger.With(zap.String("room_id", string(id)))

	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- RoomMsg { return r.inbox }

// Done is closed once the room has shut down.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				msg.Reply <- r.join(msg)

			case Leave:
				r.leave(msg)

			case FromPlayer:
				r.fromPlayer(msg)

			case Broadcast:
				r.relay(msg.Frame)

			case GetRoom:
				msg.Reply <- RoomView{
					ID:          r.id,
					Seats:       slices.Clone(r.seats),
					OwnerID:     r.owner,
					CurrentMode: r.mode,
					Ready:       maps.Clone(r.ready),
					Received:    slices.Clone(r.log),
					NumMembers:  len(r.members),
				}

			case ShutdownRoom:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) join(msg Join) error {
	id := msg.Player.ID
	if old, ok := r.members[id]; ok {
		closeOutbox(old)
		r.members[id] = member{connID: msg.ConnID, outbox: msg.Outbox}
		r.roomEvent("player-rejoined", id)
		return nil
	}

	seat := slices.Index(r.seats, "")
	if seat < 0 {
		return ErrRoomFull
	}
	r.seats[seat] = id
	r.players[id] = msg.Player
	r.members[id] = member{connID: msg.ConnID, outbox: msg.Outbox}
	r.logger.Info("player seated", zap.String("player_id", string(id)), zap.Int("seat", seat))

	r.roomEvent("player-added", id)
	if r.owner == "" {
		r.owner = id
		r.ownerAssigned()
	}
	return nil
}

func (r *Room) leave(msg Leave) {
	m, ok := r.members[msg.PlayerID]
	if !ok || m.connID != msg.ConnID {
		return
	}
	closeOutbox(m)
	r.unseat(msg.PlayerID)
}

func (r *Room) unseat(id types.ID) {
	delete(r.members, id)
	delete(r.players, id)
	delete(r.ready, id)
	if i := slices.Index(r.seats, id); i >= 0 {
		r.seats[i] = ""
	}
	r.logger.Info("player left", zap.String("player_id", string(id)))
	r.roomEvent("player-removed", id)

	if r.owner == id {
		r.owner = ""
		// Next owner is the next occupied seat.
		for _, sid := range r.seats {
			if sid != "" {
				r.owner = sid
				r.ownerAssigned()
				break
			}
		}
	}

	if len(r.members) == 0 && r.onEmpty != nil {
		r.onEmpty()
	}
}

func (r *Room) fromPlayer(msg FromPlayer) {
	var head struct {
		MessageType string   `json:"message_type"`
		Ready       bool     `json:"ready"`
		ModeID      types.ID `json:"modeId"`
	}
	if err := json.Unmarshal(msg.Frame, &head); err != nil {
		r.logger.Debug("bad client frame", zap.String("player_id", string(msg.PlayerID)), zap.Error(err))
		return
	}
	r.log = append(r.log, Received{PlayerID: msg.PlayerID, MessageType: head.MessageType, Frame: slices.Clone(msg.Frame)})

	switch head.MessageType {
	case "ready-state-change":
		r.ready[msg.PlayerID] = head.Ready

	case "game-mode-change":
		if msg.PlayerID != r.owner {
			r.logger.Info("mode change from non-owner ignored", zap.String("player_id", string(msg.PlayerID)))
			return
		}
		if !slices.ContainsFunc(r.modes, func(m types.GameMode) bool { return m.ModeID == head.ModeID }) {
			r.logger.Info("unknown mode ignored", zap.String("mode_id", string(head.ModeID)))
			return
		}
		r.mode = head.ModeID
		r.ownerAssigned()
	}
}

func (r *Room) relay(frame []byte) {
	var head struct {
		Target types.ID `json:"target"`
	}
	if err := json.Unmarshal(frame, &head); err != nil {
		r.logger.Warn("relay of invalid frame refused", zap.Error(err))
		return
	}
	if head.Target != "" {
		if m, ok := r.members[head.Target]; ok {
			r.deliver(head.Target, m, frame)
		}
		return
	}
	r.broadcast(frame)
}

func (r *Room) roomEvent(event string, playerID types.ID) {
	msg := r.update(event)
	msg.PlayerID = playerID
	r.send(msg)
}

func (r *Room) ownerAssigned() {
	msg := r.update("room-owner-assigned")
	msg.OwnerID = r.owner
	msg.GameModes = r.modes
	msg.CurrentGameMode = r.mode
	r.send(msg)
}

func (r *Room) update(event string) types.ServerMessage {
	seats := make([]*types.ID, len(r.seats))
	for i, id := range r.seats {
		if id != "" {
			seats[i] = &id
		}
	}
	players, _ := json.Marshal(r.players)
	return types.ServerMessage{
		MessageType: "room-update",
		Event:       event,
		RoomID:      r.id,
		PlayerIDs:   seats,
		Players:     players,
	}
}

func (r *Room) send(msg types.ServerMessage) {
	frame, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("encode room update", zap.Error(err))
		return
	}
	r.broadcast(frame)
}

func (r *Room) broadcast(frame []byte) {
	for id, m := range r.members {
		r.deliver(id, m, frame)
	}
}

// deliver drops a slow socket by closing its outbox. The player stays seated
// until the handler's Leave arrives for that connection.
func (r *Room) deliver(id types.ID, m member, frame []byte) {
	if m.outbox == nil {
		return
	}
	select {
	case m.outbox <- frame:
	default:
		r.logger.Warn("dropping slow player", zap.String("player_id", string(id)))
		close(m.outbox)
		r.members[id] = member{connID: m.connID}
	}
}

func closeOutbox(m member) {
	if m.outbox != nil {
		close(m.outbox)
	}
}

func (r *Room) shutdown() {
	for id, m := range r.members {
		closeOutbox(m)
		delete(r.members, id)
	}
	r.cancel()
}
