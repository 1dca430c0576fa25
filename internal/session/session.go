// Package session owns the table state for one connection. All server frames
// and player commands go through a single loop, so reducers never race.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-client/internal/engine"
	"github.com/DoyleJ11/poker-table-client/internal/protocol"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

var ErrSessionClosed = errors.New("session closed")

type Msg interface{ isSessionMsg() }

type FromServer struct {
	Frame []byte
}

func (FromServer) isSessionMsg() {}

type Opened struct{}

func (Opened) isSessionMsg() {}

type Closed struct{ Err error }

func (Closed) isSessionMsg() {}

// FromUser carries a player command. Reply, if set, receives the reducer's
// verdict and must be buffered.
type FromUser struct {
	Cmd   engine.Command
	Reply chan error
}

func (FromUser) isSessionMsg() {}

type RankingLoaded struct {
	Rows []types.RankingEntry
	Err  error
}

func (RankingLoaded) isSessionMsg() {}

type Subscribe struct {
	ClientID string
	Outbox   chan Snapshot // where this subscriber receives snapshots
}

func (Subscribe) isSessionMsg() {}

type Unsubscribe struct{ ClientID string }

func (Unsubscribe) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version        int
	NumSubscribers int
	State          engine.State
}

// Sender delivers an outbound payload to the server.
type Sender interface {
	Send(ctx context.Context, v any) error
}

// RankingSource loads the leaderboard.
type RankingSource interface {
	Fetch(ctx context.Context) ([]types.RankingEntry, error)
}

type Options struct {
	Sender       Sender
	Ranking      RankingSource // optional
	Logger       *zap.Logger
	Now          func() time.Time
	WriteTimeout time.Duration
}

type Session struct {
	inbox       chan Msg
	state       engine.State
	version     int
	subscribers map[string]chan Snapshot

	sender       Sender
	ranking      RankingSource
	log          *zap.Logger
	now          func() time.Time
	writeTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, initial engine.State, opts Options) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		inbox:        make(chan Msg, 64),
		state:        initial,
		subscribers:  make(map[string]chan Snapshot),
		sender:       opts.Sender,
		ranking:      opts.Ranking,
		log:          opts.Logger,
		now:          opts.Now,
		writeTimeout: opts.WriteTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = 5 * time.Second
	}

	s.refreshRanking()
	go s.loop()
	return s
}

// Inbox exposes the loop's mailbox to the transport and the input reader.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed when the session stops.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Subscribe:
				s.subscribers[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: s.version, State: s.state}

			case Unsubscribe:
				if ch, ok := s.subscribers[msg.ClientID]; ok {
					close(ch)
					delete(s.subscribers, msg.ClientID)
				}

			case FromServer:
				decoded, err := protocol.Decode(msg.Frame)
				if err != nil {
					s.log.Debug("dropping frame", zap.Error(err), zap.Int("bytes", len(msg.Frame)))
					break
				}
				s.apply(decoded)

			case Opened:
				s.apply(protocol.SocketOpened{})

			case Closed:
				if msg.Err != nil {
					s.log.Info("socket closed", zap.Error(msg.Err))
				}
				s.apply(protocol.SocketClosed{Err: msg.Err})

			case FromUser:
				events, next, err := engine.Act(s.state, msg.Cmd)
				if msg.Reply != nil {
					msg.Reply <- err
				}
				if err != nil {
					s.log.Debug("command rejected", zap.String("cmd", string(msg.Cmd.Type)), zap.Error(err))
					break
				}
				s.commit(next, events)

			case RankingLoaded:
				if msg.Err != nil {
					s.log.Error("ranking refresh failed", zap.Error(msg.Err))
					break
				}
				s.commit(engine.SetRanking(s.state, msg.Rows), nil)

			case GetState:
				msg.Reply <- View{
					Version:        s.version,
					NumSubscribers: len(s.subscribers),
					State:          s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) apply(msg protocol.Message) {
	events, next, err := engine.Apply(s.state, msg, s.now())
	if err != nil {
		s.log.Warn("message rejected", zap.String("type", fmt.Sprintf("%T", msg)), zap.Error(err))
		return
	}
	s.commit(next, events)
}

func (s *Session) commit(next engine.State, events []engine.Event) {
	s.state = next
	s.version++
	s.handle(events)
	s.broadcast(Snapshot{Version: s.version, State: s.state})
}

func (s *Session) handle(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtSend:
			s.send(ev.Payload)
		case engine.EvtLog:
			s.log.Info(ev.Text)
		case engine.EvtRankingRefresh:
			s.refreshRanking()
		case engine.EvtPrompted:
			s.log.Info("your turn", zap.String("action", ev.Text))
		case engine.EvtRoomDestroyed:
			s.log.Debug("room destroyed")
		}
	}
}

func (s *Session) send(payload any) {
	if s.sender == nil {
		s.log.Warn("no connection, dropping outbound message")
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, s.writeTimeout)
	defer cancel()
	if err := s.sender.Send(ctx, payload); err != nil {
		s.log.Warn("send failed", zap.Error(err))
	}
}

// refreshRanking fetches off the loop and reports back through the inbox.
func (s *Session) refreshRanking() {
	if s.ranking == nil {
		return
	}
	go func() {
		rows, err := s.ranking.Fetch(s.ctx)
		select {
		case s.inbox <- RankingLoaded{Rows: rows, Err: err}:
		case <-s.ctx.Done():
		}
	}()
}

// shutdown cancels first so a subscriber that sees its outbox close can
// already tell the session is gone.
func (s *Session) shutdown() {
	s.cancel()
	for id, ch := range s.subscribers {
		close(ch) // no more snapshots
		delete(s.subscribers, id)
	}
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Slow subscriber, drop it.
			close(ch)
			delete(s.subscribers, id)
		}
	}
}

// View asks the loop for the current state.
func (s *Session) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case s.inbox <- GetState{Reply: reply}:
	case <-s.ctx.Done():
		return View{}, ErrSessionClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-s.ctx.Done():
		return View{}, ErrSessionClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Submit runs a player command and waits for the verdict.
func (s *Session) Submit(ctx context.Context, cmd engine.Command) error {
	reply := make(chan error, 1)
	select {
	case s.inbox <- FromUser{Cmd: cmd, Reply: reply}:
	case <-s.ctx.Done():
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-s.ctx.Done():
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
