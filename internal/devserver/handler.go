package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

// Players start with the same bankroll a new account gets.
const startingMoney = 3000

const writeTimeout = 3 * time.Second

var errUnrecognizedUser = errors.New("unrecognized user")

// Identity is read from the query string first, then from cookies of the
// same names.
func identity(r *http.Request) (types.Player, types.ID, error) {
	get := func(name string) string {
		if v := r.URL.Query().Get(name); v != "" {
			return v
		}
		if c, err := r.Cookie(name); err == nil {
			return c.Value
		}
		return ""
	}

	id, room := get("player_id"), get("room_id")
	if id == "" || room == "" {
		return types.Player{}, "", errUnrecognizedUser
	}
	name := get("player_name")
	if name == "" {
		name = id
	}
	return types.Player{ID: types.ID(id), Name: name, Money: startingMoney}, types.ID(room), nil
}

// Handler upgrades a table connection: connect first, then the room's
// room-update stream, with client frames passed to the room.
func Handler(h *Hub, serverID string, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
		})
		if err != nil {
			log.Debug("accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		connID := uuid.NewString()
		clog := log.With(zap.String("conn_id", connID))

		player, roomID, err := identity(r)
		if err != nil {
			writeFrame(r.Context(), conn, types.ServerMessage{MessageType: "error", Error: "Unrecognized user"})
			conn.Close(websocket.StatusPolicyViolation, "unrecognized user")
			return
		}
		clog = clog.With(zap.String("player_id", string(player.ID)), zap.String("room_id", string(roomID)))

		if err := writeFrame(r.Context(), conn, types.ServerMessage{MessageType: "connect", ServerID: serverID, Player: &player}); err != nil {
			clog.Debug("connect write failed", zap.Error(err))
			return
		}

		rm, err := h.Room(r.Context(), roomID)
		if err != nil {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		out := make(chan []byte, 32)
		reply := make(chan error, 1)
		select {
		case rm.Inbox() <- Join{Player: player, ConnID: connID, Outbox: out, Reply: reply}:
		case <-rm.Done():
			conn.Close(websocket.StatusGoingAway, "room closed")
			return
		}
		select {
		case err = <-reply:
		case <-rm.Done():
			err = ErrRoomClosed
		}
		if err != nil {
			clog.Info("join refused", zap.Error(err))
			writeFrame(r.Context(), conn, types.ServerMessage{MessageType: "error", Error: err.Error()})
			conn.Close(websocket.StatusTryAgainLater, err.Error())
			return
		}
		clog.Info("player connected")

		defer func() {
			select {
			case rm.Inbox() <- Leave{PlayerID: player.ID, ConnID: connID}:
			case <-rm.Done():
			}
			clog.Info("player disconnected")
		}()

		// Writer goroutine. A closed outbox means the room let go of us.
		go func() {
			for frame := range out {
				ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
				err := conn.Write(ctx, websocket.MessageText, frame)
				cancel()
				if err != nil {
					conn.CloseNow()
					return
				}
			}
			conn.Close(websocket.StatusGoingAway, "bye")
		}()

		// Reader loop
		for {
			typ, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					clog.Debug("read ended", zap.Error(err))
				}
				return
			}
			if typ != websocket.MessageText {
				continue
			}

			var head struct {
				MessageType string `json:"message_type"`
			}
			if json.Unmarshal(data, &head) == nil && head.MessageType == "disconnect" {
				return
			}

			select {
			case rm.Inbox() <- FromPlayer{PlayerID: player.ID, Frame: data}:
			case <-rm.Done():
				return
			}
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
