package engine

import (
	"fmt"

	"github.com/DoyleJ11/poker-table-client/internal/protocol"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

func applyRoom(s *State, m protocol.RoomUpdate) ([]Event, error) {
	// The first room-update of a session lays out the whole table.
	if !s.Room.Initialized {
		initRoom(s, m)
	}

	switch ev := m.Event.(type) {
	case protocol.PlayerAdded:
		seatPlayer(s, m, ev.PlayerID)
	case protocol.PlayerRejoined:
		seatPlayer(s, m, ev.PlayerID)
	case protocol.PlayerRemoved:
		unseatPlayer(s, ev.PlayerID)
	case protocol.RoomOwnerAssigned:
		s.Room.OwnerID = ev.OwnerID
		s.Room.Modes = append([]types.GameMode(nil), ev.Modes...)
		s.Room.CurrentMode = ev.CurrentMode
	case protocol.UnknownRoomEvent:
	default:
		return nil, fmt.Errorf("%w: room event %T", ErrUnsupportedMessage, m.Event)
	}
	return nil, nil
}

func initRoom(s *State, m protocol.RoomUpdate) {
	s.Room = Room{
		Initialized: true,
		ID:          m.RoomID,
		Seats:       append([]types.ID(nil), m.Seats...),
		seatOf:      map[types.ID]int{},
		OwnerID:     s.Room.OwnerID,
		Modes:       s.Room.Modes,
		CurrentMode: s.Room.CurrentMode,
	}
	s.Players = map[types.ID]Player{}
	for i, id := range m.Seats {
		if id == "" {
			continue
		}
		s.Room.seatOf[id] = i
		s.Players[id] = newPlayer(s, id, m.Players[id])
	}
}

func newPlayer(s *State, id types.ID, dto types.Player) Player {
	return Player{ID: id, Name: dto.Name, Money: dto.Money, Local: id == s.LocalPlayerID}
}

// seatPlayer places a player at the seat the server reports for them. Seats
// beyond the rendered layout are ignored.
func seatPlayer(s *State, m protocol.RoomUpdate, id types.ID) {
	if id == "" {
		return
	}
	seat := -1
	for i, sid := range m.Seats {
		if sid == id {
			seat = i
			break
		}
	}
	if seat < 0 || seat >= len(s.Room.Seats) {
		return
	}

	if old, ok := s.Room.seatOf[id]; ok && old != seat {
		s.Room.Seats[old] = ""
	}
	if prev := s.Room.Seats[seat]; prev != "" && prev != id {
		delete(s.Room.seatOf, prev)
		delete(s.Players, prev)
	}

	s.Room.Seats[seat] = id
	s.Room.seatOf[id] = seat

	// A player who reconnects keeps their cards and fold state.
	dto, known := m.Players[id]
	if p, ok := s.Players[id]; ok {
		if known {
			p.Name, p.Money = dto.Name, dto.Money
		}
		s.Players[id] = p
		return
	}
	s.Players[id] = newPlayer(s, id, dto)
}

func unseatPlayer(s *State, id types.ID) {
	seat, ok := s.Room.seatOf[id]
	if !ok {
		return
	}
	s.Room.Seats[seat] = ""
	delete(s.Room.seatOf, id)
	delete(s.Players, id)
}
