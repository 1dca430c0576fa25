package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/poker-table-client/internal/config"
	"github.com/DoyleJ11/poker-table-client/internal/engine"
	"github.com/DoyleJ11/poker-table-client/internal/logging"
	"github.com/DoyleJ11/poker-table-client/internal/ranking"
	"github.com/DoyleJ11/poker-table-client/internal/session"
	"github.com/DoyleJ11/poker-table-client/internal/ws"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

var (
	Name      string = "tableclient"
	Version   string = "unknown"
	GitCommit string = "unknown"
	BuildAt   string = "unknown"
	BuildBy   string = runtime.Version()
	RunningOS string = runtime.GOOS + "/" + runtime.GOARCH
)

func longVersion() string {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintln(buf, "project:", Name)
	fmt.Fprintln(buf, "version:", Version)
	fmt.Fprintln(buf, "git commit:", GitCommit)
	fmt.Fprintln(buf, "build at:", BuildAt)
	fmt.Fprintln(buf, "build by:", BuildBy)
	fmt.Fprintln(buf, "running OS/Arch:", RunningOS)
	return buf.String()
}

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println(longVersion())
	}
	app := cli.NewApp()
	app.Version = Version
	app.Name = Name
	app.Usage = "sit at a poker table from the terminal"
	app.Flags = []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (yaml, json or toml)"},
		&cli.StringFlag{Name: "origin", Usage: "page origin of the table server, e.g. http://localhost:5000"},
		&cli.StringFlag{Name: "player-id", Usage: "player id used until the server confirms one"},
		&cli.StringFlag{Name: "cookie", Usage: "Cookie header sent with the handshake and ranking requests"},
		&cli.StringFlag{Name: "status-addr", Usage: "serve the local status API on this address"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.BoolFlag{Name: "dev", Usage: "human readable logs"},
		&cli.BoolFlag{Name: "no-render", Usage: "do not draw the table"},
	}
	app.Action = RealMain
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var stringFlags = map[string]string{
	"origin":      "origin",
	"player-id":   "player_id",
	"cookie":      "cookie",
	"status-addr": "status_addr",
	"log-level":   "log_level",
}

func overrides(c *cli.Context) map[string]any {
	out := map[string]any{}
	for flag, key := range stringFlags {
		if c.IsSet(flag) {
			out[key] = c.String(flag)
		}
	}
	if c.IsSet("dev") {
		out["development"] = c.Bool("dev")
	}
	if c.IsSet("no-render") {
		out["render"] = !c.Bool("no-render")
	}
	return out
}

func RealMain(c *cli.Context) error {
	cfg, err := config.LoadClient(c.String("config"), overrides(c))
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	log = log.With(zap.String("client_id", uuid.NewString()))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	header := http.Header{}
	if cfg.Cookie != "" {
		header.Set("Cookie", cfg.Cookie)
	}

	endpoint, err := ws.EndpointURL(cfg.Origin, cfg.EndpointPath)
	if err != nil {
		return err
	}
	rk, err := ranking.NewClient(cfg.Origin, cfg.RankingPath, header, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return err
	}

	log.Info("connecting", zap.String("endpoint", endpoint))
	conn, err := ws.Dial(ctx, endpoint, ws.Options{Header: header, WriteTimeout: cfg.WriteTimeout, Logger: log.Named("ws")})
	if err != nil {
		return err
	}
	defer conn.Close() //nolint:errcheck

	initial := engine.NewEmptyState()
	initial.LocalPlayerID = types.ID(cfg.PlayerID)
	sess := session.New(ctx, initial, session.Options{
		Sender:       conn,
		Ranking:      rk,
		Logger:       log.Named("session"),
		WriteTimeout: cfg.WriteTimeout,
	})
	sess.Inbox() <- session.Opened{}

	g, gctx := errgroup.WithContext(ctx)

	// Socket reader. When it ends the session takes the room down and stops.
	g.Go(func() error {
		err := conn.Run(gctx, func(frame []byte) {
			select {
			case sess.Inbox() <- session.FromServer{Frame: frame}:
			case <-sess.Done():
			}
		})
		for _, m := range []session.Msg{session.Closed{Err: err}, session.Shutdown{}} {
			select {
			case sess.Inbox() <- m:
			case <-sess.Done():
			}
		}
		return err
	})

	if cfg.Render {
		g.Go(func() error { return renderLoop(gctx, sess, log.Named("render")) })
	}
	if cfg.StatusAddr != "" {
		g.Go(func() error { return serveStatus(gctx, cfg.StatusAddr, sess, log.Named("status")) })
	}

	// Stdin cannot be interrupted, so the reader stays outside the group.
	go readInput(ctx, os.Stdin, sess, log.Named("input"))

	return g.Wait()
}

func submitTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 2*time.Second)
}
