package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-table-client/internal/engine"
	"github.com/DoyleJ11/poker-table-client/internal/httpapi"
	"github.com/DoyleJ11/poker-table-client/internal/input"
	"github.com/DoyleJ11/poker-table-client/internal/render"
	"github.com/DoyleJ11/poker-table-client/internal/session"
)

const renderSubscriber = "terminal"

func subscribe(sess *session.Session) chan session.Snapshot {
	out := make(chan session.Snapshot, 16)
	select {
	case sess.Inbox() <- session.Subscribe{ClientID: renderSubscriber, Outbox: out}:
	case <-sess.Done():
		close(out)
	}
	return out
}

// renderLoop redraws on every snapshot and once a second for the countdowns.
func renderLoop(ctx context.Context, sess *session.Session, log *zap.Logger) error {
	area, err := pterm.DefaultArea.Start()
	if err != nil {
		return fmt.Errorf("start render area: %w", err)
	}
	defer area.Stop() //nolint:errcheck

	out := subscribe(sess)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last engine.State
	var have bool
	for {
		select {
		case snap, ok := <-out:
			if !ok {
				select {
				case <-sess.Done():
					return nil
				default:
				}
				log.Warn("renderer fell behind, resubscribing")
				out = subscribe(sess)
				continue
			}
			last, have = snap.State, true
		case <-ticker.C:
			if !have {
				continue
			}
		case <-ctx.Done():
			return nil
		case <-sess.Done():
			return nil
		}

		view, err := render.Table(last, time.Now())
		if err != nil {
			log.Warn("render failed", zap.Error(err))
			continue
		}
		area.Update(view)
	}
}

func readInput(ctx context.Context, r io.Reader, sess *session.Session, log *zap.Logger) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "help" {
			fmt.Fprintln(os.Stderr, input.Help)
			continue
		}
		cmd, err := input.Parse(line)
		if errors.Is(err, input.ErrEmpty) {
			continue
		}
		if err != nil {
			log.Warn("bad input", zap.Error(err))
			continue
		}

		sctx, cancel := submitTimeout(ctx)
		err = sess.Submit(sctx, cmd)
		cancel()
		switch {
		case errors.Is(err, session.ErrSessionClosed), errors.Is(err, context.Canceled):
			return
		case err != nil:
			log.Info("command rejected", zap.String("cmd", string(cmd.Type)), zap.Error(err))
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn("stdin closed", zap.Error(err))
	}
}

func serveStatus(ctx context.Context, addr string, sess *session.Session, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.SetupRoutes(sess, time.Now, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info("status api listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return fmt.Errorf("status api: %w", err)
	case <-ctx.Done():
	case <-sess.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if lerr := <-errc; !errors.Is(lerr, http.ErrServerClosed) {
		err = multierr.Append(err, lerr)
	}
	return err
}
