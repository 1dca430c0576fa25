package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

func TestEndpointURL(t *testing.T) {
	cases := []struct {
		origin  string
		want    string
		wantErr bool
	}{
		{origin: "http://localhost:8080", want: "ws://localhost:8080/poker/texas-holdem"},
		{origin: "https://poker.example.com/", want: "wss://poker.example.com/poker/texas-holdem"},
		{origin: "ws://10.0.0.1:9000", want: "ws://10.0.0.1:9000/poker/texas-holdem"},
		{origin: "ftp://poker.example.com", wantErr: true},
		{origin: "localhost:8080", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.origin, func(t *testing.T) {
			got, err := EndpointURL(tc.origin, "/poker/texas-holdem")
			if tc.wantErr {
				if !errors.Is(err, ErrBadOrigin) {
					t.Fatalf("want ErrBadOrigin, got %v", err)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// echoServer sends one connect frame, then answers every text frame with a
// frame wrapping it, and closes normally on "bye".
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "session=abc" {
			http.Error(w, "no cookie", http.StatusUnauthorized)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"message_type":"connect","server_id":"srv"}`))
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			if strings.Contains(string(data), "bye") {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			_ = conn.Write(ctx, websocket.MessageText, []byte(`{"message_type":"echo","got":`+string(data)+`}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	endpoint, err := EndpointURL(srv.URL, "/")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c, err := Dial(ctx, endpoint, Options{Header: http.Header{"Cookie": {"session=abc"}}})
	require.NoError(t, err)
	return c
}

func TestClient_SendAndReceive(t *testing.T) {
	c := dial(t, echoServer(t))

	frames := make(chan string, 4)
	runErr := make(chan error, 1)
	go func() {
		runErr <- c.Run(context.Background(), func(b []byte) { frames <- string(b) })
	}()

	select {
	case f := <-frames:
		assert.Contains(t, f, `"connect"`)
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for connect frame")
	}

	require.NoError(t, c.Send(context.Background(), types.NewBet(25)))
	select {
	case f := <-frames:
		assert.Contains(t, f, `{"message_type":"bet","bet":25}`)
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for echo")
	}

	require.NoError(t, c.Send(context.Background(), map[string]string{"message_type": "bye"}))
	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("normal closure should end Run cleanly, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after server close")
	}

	if err := c.Send(context.Background(), types.NewPong()); !errors.Is(err, ErrClosed) {
		t.Fatalf("send after close: want ErrClosed, got %v", err)
	}
}

func TestClient_RunStopsOnCancel(t *testing.T) {
	c := dial(t, echoServer(t))
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(ctx, func([]byte) {}) }()

	cancel()
	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("want nil on cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop on cancel")
	}
}

func TestDial_HandshakeRejected(t *testing.T) {
	srv := echoServer(t)
	endpoint, err := EndpointURL(srv.URL, "/")
	require.NoError(t, err)

	_, err = Dial(context.Background(), endpoint, Options{})
	if err == nil {
		t.Fatalf("expected dial without cookie to fail")
	}
}
