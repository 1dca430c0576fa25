package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-client/internal/engine"
	"github.com/DoyleJ11/poker-table-client/internal/session"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

// StateSource is the running session as seen by the status API.
type StateSource interface {
	View(ctx context.Context) (session.View, error)
	Submit(ctx context.Context, cmd engine.Command) error
}

const requestTimeout = 2 * time.Second

var commandTypes = map[string]engine.CommandType{}

func init() {
	for _, t := range []engine.CommandType{
		engine.CmdToggleReady,
		engine.CmdIncreaseBet, engine.CmdIncreaseBetQuick,
		engine.CmdDecreaseBet, engine.CmdDecreaseBetQuick,
		engine.CmdBet, engine.CmdAllIn, engine.CmdFold, engine.CmdNoBet,
		engine.CmdToggleCard, engine.CmdSubmitDiscard,
		engine.CmdChangeGameMode,
	} {
		commandTypes[string(t)] = t
	}
}

func GetState(src StateSource, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		v, err := src.View(ctx)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, Snapshot(v, now()))
	}
}

func PostCommand(src StateSource, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CommandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("bad json"))
			return
		}
		t, ok := commandTypes[req.Type]
		if !ok {
			writeError(w, http.StatusBadRequest, errors.New("unknown type"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		err := src.Submit(ctx, engine.Command{Type: t, Card: req.Card, ModeID: req.ModeID})
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, session.ErrSessionClosed), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, err)
		default:
			log.Debug("command rejected", zap.String("type", req.Type), zap.Error(err))
			writeError(w, http.StatusConflict, err)
		}
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, types.ErrorResponse{Error: err.Error()})
}
