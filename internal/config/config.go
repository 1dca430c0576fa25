// Package config layers defaults, an optional .env file, an optional config
// file, TABLE_* environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

var ErrInvalidConfig = errors.New("invalid config")
var ErrConfigFile = errors.New("config file")

const envPrefix = "TABLE"

type Client struct {
	Origin       string
	EndpointPath string
	RankingPath  string
	PlayerID     string
	Cookie       string
	StatusAddr   string // empty disables the status API
	LogLevel     string
	Development  bool
	WriteTimeout time.Duration
	Render       bool
}

type Stub struct {
	ListenAddr   string
	EndpointPath string
	RankingPath  string
	DatabaseDSN  string // empty keeps the ranking in memory
	Seats        int
	LogLevel     string
	Development  bool
}

func LoadClient(configFile string, overrides map[string]any) (Client, error) {
	v, err := load(configFile, overrides, map[string]any{
		"origin":        "http://localhost:5000",
		"endpoint_path": "/poker/texas-holdem",
		"ranking_path":  "/api/get-ranking",
		"status_addr":   "",
		"log_level":     "info",
		"development":   false,
		"write_timeout": "3s",
		"render":        true,
	})
	if err != nil {
		return Client{}, err
	}

	cfg := Client{
		Origin:       v.GetString("origin"),
		EndpointPath: v.GetString("endpoint_path"),
		RankingPath:  v.GetString("ranking_path"),
		PlayerID:     v.GetString("player_id"),
		Cookie:       v.GetString("cookie"),
		StatusAddr:   v.GetString("status_addr"),
		LogLevel:     v.GetString("log_level"),
		Development:  v.GetBool("development"),
		WriteTimeout: v.GetDuration("write_timeout"),
		Render:       v.GetBool("render"),
	}
	return cfg, cfg.validate()
}

func (c Client) validate() error {
	var err error
	if u, perr := url.Parse(c.Origin); perr != nil || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("%w: origin %q", ErrInvalidConfig, c.Origin))
	}
	if c.EndpointPath == "" {
		err = multierr.Append(err, fmt.Errorf("%w: endpoint_path is empty", ErrInvalidConfig))
	}
	if c.WriteTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: write_timeout must be positive", ErrInvalidConfig))
	}
	return err
}

func LoadStub(configFile string, overrides map[string]any) (Stub, error) {
	v, err := load(configFile, overrides, map[string]any{
		"listen_addr":   ":5000",
		"endpoint_path": "/poker/texas-holdem",
		"ranking_path":  "/api/get-ranking",
		"database_dsn":  "",
		"seats":         5,
		"log_level":     "info",
		"development":   false,
	})
	if err != nil {
		return Stub{}, err
	}

	cfg := Stub{
		ListenAddr:   v.GetString("listen_addr"),
		EndpointPath: v.GetString("endpoint_path"),
		RankingPath:  v.GetString("ranking_path"),
		DatabaseDSN:  v.GetString("database_dsn"),
		Seats:        v.GetInt("seats"),
		LogLevel:     v.GetString("log_level"),
		Development:  v.GetBool("development"),
	}

	var verr error
	if cfg.ListenAddr == "" {
		verr = multierr.Append(verr, fmt.Errorf("%w: listen_addr is empty", ErrInvalidConfig))
	}
	if cfg.Seats < 2 {
		verr = multierr.Append(verr, fmt.Errorf("%w: seats must be at least 2", ErrInvalidConfig))
	}
	return cfg, verr
}

func load(configFile string, overrides, defaults map[string]any) (*viper.Viper, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrConfigFile, configFile, err)
		}
	}
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v, nil
}
