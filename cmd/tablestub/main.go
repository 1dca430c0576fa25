package main

import (
	"bytes"
	"context"
	"errors"
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
	"github.com/DoyleJ11/poker-table-client/internal/devserver"
	"github.com/DoyleJ11/poker-table-client/internal/logging"
	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

var (
	Name      string = "tablestub"
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

var gameModes = []types.GameMode{
	{ModeID: "1", ModeName: "Traditional"},
	{ModeID: "2", ModeName: "Short Deck"},
}

// Served when no database is configured.
var demoRanking = []types.RankingEntry{
	{Name: "alice", TotalMoney: 4210, AvgProfit: 12.5},
	{Name: "bob", TotalMoney: 3000, AvgProfit: 0},
	{Name: "carol", TotalMoney: 2375, AvgProfit: -6.25},
}

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println(longVersion())
	}
	app := cli.NewApp()
	app.Version = Version
	app.Name = Name
	app.Usage = "local table server for the poker client"
	app.Flags = []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (yaml, json or toml)"},
		&cli.StringFlag{Name: "listen", Usage: "listen address"},
		&cli.StringFlag{Name: "dsn", Usage: "postgres DSN for the ranking tables"},
		&cli.IntFlag{Name: "seats", Usage: "seats per room"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.BoolFlag{Name: "dev", Usage: "human readable logs"},
		&cli.BoolFlag{Name: "migrate", Usage: "create the ranking tables before serving"},
	}
	app.Action = RealMain
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func overrides(c *cli.Context) map[string]any {
	out := map[string]any{}
	if c.IsSet("listen") {
		out["listen_addr"] = c.String("listen")
	}
	if c.IsSet("dsn") {
		out["database_dsn"] = c.String("dsn")
	}
	if c.IsSet("seats") {
		out["seats"] = c.Int("seats")
	}
	if c.IsSet("log-level") {
		out["log_level"] = c.String("log-level")
	}
	if c.IsSet("dev") {
		out["development"] = c.Bool("dev")
	}
	return out
}

func RealMain(c *cli.Context) error {
	cfg, err := config.LoadStub(c.String("config"), overrides(c))
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store devserver.RankingStore = devserver.MemoryStore{Rows: demoRanking}
	if cfg.DatabaseDSN != "" {
		gs, err := devserver.OpenGormStore(cfg.DatabaseDSN, log.Named("db"))
		if err != nil {
			return err
		}
		if c.Bool("migrate") {
			if err := gs.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		store = gs
	}

	hub := devserver.NewHub(ctx, devserver.RoomOptions{Seats: cfg.Seats, Modes: gameModes, Logger: log.Named("room")})
	serverID := uuid.NewString()
	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: devserver.SetupRoutes(hub, store, devserver.Routes{
			ServerID:     serverID,
			EndpointPath: cfg.EndpointPath,
			RankingPath:  cfg.RankingPath,
		}, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("server_id", serverID))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Rooms close their sockets; Shutdown does not wait for hijacked connections.
		select {
		case hub.Inbox() <- devserver.ShutdownHub{}:
		case <-hub.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
