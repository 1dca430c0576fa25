package devserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

const maxFrame = 64 << 10

type Routes struct {
	ServerID     string
	EndpointPath string // "/poker/texas-holdem"
	RankingPath  string // "/api/get-ranking"
}

func SetupRoutes(h *Hub, store RankingStore, cfg Routes, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get(cfg.EndpointPath, Handler(h, cfg.ServerID, log))
	r.Get(cfg.RankingPath, GetRanking(store, log))

	r.Route("/rooms/{roomID}", func(r chi.Router) {
		r.Get("/", GetRoomState(h))
		r.Post("/broadcast", PostBroadcast(h))
	})
	return r
}

func GetRanking(store RankingStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := store.Ranking(r.Context())
		if err != nil {
			log.Error("ranking query failed", zap.Error(err))
			http.Error(w, "ranking unavailable", http.StatusInternalServerError)
			return
		}
		if rows == nil {
			rows = []types.RankingEntry{}
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func GetRoomState(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, ok := findRoom(w, r, h)
		if !ok {
			return
		}
		reply := make(chan RoomView, 1)
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		select {
		case rm.Inbox() <- GetRoom{Reply: reply}:
		case <-rm.Done():
			http.Error(w, "room closed", http.StatusGone)
			return
		case <-ctx.Done():
			http.Error(w, "room busy", http.StatusServiceUnavailable)
			return
		}
		select {
		case v := <-reply:
			writeJSON(w, http.StatusOK, v)
		case <-rm.Done():
			http.Error(w, "room closed", http.StatusGone)
		case <-ctx.Done():
			http.Error(w, "room busy", http.StatusServiceUnavailable)
		}
	}
}

// PostBroadcast relays the request body to the room as a server frame.
func PostBroadcast(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, ok := findRoom(w, r, h)
		if !ok {
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxFrame))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		var head struct {
			MessageType string `json:"message_type"`
		}
		if err := json.Unmarshal(body, &head); err != nil || head.MessageType == "" {
			http.Error(w, "body must be a JSON object with message_type", http.StatusBadRequest)
			return
		}

		select {
		case rm.Inbox() <- Broadcast{Frame: body}:
			w.WriteHeader(http.StatusAccepted)
		case <-rm.Done():
			http.Error(w, "room closed", http.StatusGone)
		case <-r.Context().Done():
		}
	}
}

func findRoom(w http.ResponseWriter, r *http.Request, h *Hub) (*Room, bool) {
	reply := make(chan *Room, 1)
	select {
	case h.Inbox() <- FindRoom{ID: types.ID(chi.URLParam(r, "roomID")), Reply: reply}:
	case <-h.Done():
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return nil, false
	}
	var rm *Room
	select {
	case rm = <-reply:
	case <-h.Done():
	}
	if rm == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return nil, false
	}
	return rm, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
