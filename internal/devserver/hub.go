package devserver

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

type HubMsg interface{ isHubMsg() }

// EnsureRoom returns the room with ID, opening it first if needed.
type EnsureRoom struct {
	ID    types.ID
	Reply chan *Room
}

type FindRoom struct {
	ID    types.ID
	Reply chan *Room
}

// RemoveRoom only removes Room if it is still registered under ID.
type RemoveRoom struct {
	ID   types.ID
	Room *Room
}

type ListRooms struct {
	Reply chan []types.ID
}

type ShutdownHub struct{}

func (EnsureRoom) isHubMsg()  {}
func (FindRoom) isHubMsg()    {}
func (RemoveRoom) isHubMsg()  {}
func (ListRooms) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[types.ID]*Room
	opts   RoomOptions
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, opts RoomOptions) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[types.ID]*Room),
		opts:   opts,
		log:    opts.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub has shut down.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				if rm := h.rooms[msg.ID]; rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.open(msg.ID)

			case FindRoom:
				msg.Reply <- h.rooms[msg.ID] // may be nil

			case RemoveRoom:
				if rm := h.rooms[msg.ID]; rm != nil && rm == msg.Room {
					rm.Inbox() <- ShutdownRoom{}
					delete(h.rooms, msg.ID)
					h.log.Info("room closed", zap.String("room_id", string(msg.ID)))
				}

			case ListRooms:
				ids := make([]types.ID, 0, len(h.rooms))
				for id := range h.rooms {
					ids = append(ids, id)
				}
				msg.Reply <- ids

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- ShutdownRoom{}
				}
				clear(h.rooms)
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) open(id types.ID) *Room {
	var rm *Room
	// onEmpty runs on the room loop, so hand the removal back without blocking it.
	rm = NewRoom(h.ctx, id, h.opts, func() {
		go func() {
			select {
			case h.inbox <- RemoveRoom{ID: id, Room: rm}:
			case <-h.ctx.Done():
			}
		}()
	})
	h.rooms[id] = rm
	h.log.Info("room opened", zap.String("room_id", string(id)))
	return rm
}

// Room is a blocking EnsureRoom.
func (h *Hub) Room(ctx context.Context, id types.ID) (*Room, error) {
	reply := make(chan *Room, 1)
	select {
	case h.inbox <- EnsureRoom{ID: id, Reply: reply}:
	case <-h.ctx.Done():
		return nil, ErrRoomClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case rm := <-reply:
		return rm, nil
	case <-h.ctx.Done():
		return nil, ErrRoomClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
