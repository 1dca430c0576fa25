package devserver

import (
	"context"
	"testing"
	"time"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

func TestHub_Ensure_Find_SamePointer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, RoomOptions{Seats: 2})
	reply := make(chan *Room, 1)

	h.Inbox() <- EnsureRoom{ID: "1234", Reply: reply}
	rm1 := <-reply

	h.Inbox() <- FindRoom{ID: "1234", Reply: reply}
	rm2 := <-reply

	if rm1 == nil || rm2 == nil || rm1 != rm2 {
		t.Fatalf("expected same room pointer")
	}

	h.Inbox() <- FindRoom{ID: "nope", Reply: reply}
	if rm := <-reply; rm != nil {
		t.Fatalf("expected no room, got %v", rm)
	}
}

func TestHub_EmptyRoomIsRemoved(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, RoomOptions{Seats: 2})

	rm, err := h.Room(ctx, "1234")
	if err != nil {
		t.Fatalf("room: %v", err)
	}
	out := join(t, rm, types.ID("P1"), "c1")
	rm.Inbox() <- Leave{PlayerID: "P1", ConnID: "c1"}
	for range out {
	}

	select {
	case <-rm.Done():
	case <-time.After(time.Second):
		t.Fatalf("empty room was not shut down")
	}

	reply := make(chan []types.ID, 1)
	h.Inbox() <- ListRooms{Reply: reply}
	if ids := <-reply; len(ids) != 0 {
		t.Fatalf("expected no rooms, got %v", ids)
	}
}

func TestHub_ShutdownClosesRooms(t *testing.T) {
	h := NewHub(context.Background(), RoomOptions{Seats: 2})
	rm, err := h.Room(context.Background(), "1234")
	if err != nil {
		t.Fatalf("room: %v", err)
	}

	h.Inbox() <- ShutdownHub{}
	select {
	case <-rm.Done():
	case <-time.After(time.Second):
		t.Fatalf("room still running after hub shutdown")
	}
	if _, err := h.Room(context.Background(), "5678"); err != ErrRoomClosed {
		t.Fatalf("want ErrRoomClosed, got %v", err)
	}
}
