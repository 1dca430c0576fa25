package devserver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoyleJ11/poker-table-client/pkg/types"
)

var ErrRankingUnavailable = errors.New("ranking unavailable")

// RankingStore backs GET /api/get-ranking.
type RankingStore interface {
	Ranking(ctx context.Context) ([]types.RankingEntry, error)
}

type MemoryStore struct {
	Rows []types.RankingEntry
}

func (m MemoryStore) Ranking(context.Context) ([]types.RankingEntry, error) {
	return slices.Clone(m.Rows), nil
}

// User and PlayerPoints mirror the tables the ranking is read from.
type User struct {
	UserID       uint   `gorm:"primaryKey;column:user_id"`
	Username     string `gorm:"column:username;type:varchar(64);not null;unique"`
	Nickname     string `gorm:"column:nickname;type:varchar(64);not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255)"`
	Email        string `gorm:"column:email;type:varchar(128)"`
}

func (User) TableName() string { return "users" }

type PlayerPoints struct {
	UserID        uint    `gorm:"primaryKey;column:user_id"`
	ModeID        uint    `gorm:"primaryKey;column:mode_id"`
	Points        float64 `gorm:"column:points;not null;default:3000"`
	TotalGames    int     `gorm:"column:total_games;not null;default:0"`
	BorrowCount   int     `gorm:"column:borrow_count;not null;default:0"`
	BBPer100Hands float64 `gorm:"column:bb_per_100hands;not null;default:0"`
}

func (PlayerPoints) TableName() string { return "player_points" }

// Only the cash game modes count towards the leaderboard.
var rankedModes = []uint{1, 2}

type GormStore struct {
	db *gorm.DB
}

func OpenGormStore(dsn string, log *zap.Logger) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: NewGormZap(log),
	})
	if err != nil {
		return nil, fmt.Errorf("open ranking db: %w", err)
	}
	return &GormStore{db: db}, nil
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

// Migrate creates the two tables for a fresh development database.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&User{}, &PlayerPoints{})
}

type rankingRow struct {
	Nickname      string
	Points        float64
	BBPer100Hands float64 `gorm:"column:bb_per_100hands"`
	TotalGames    int
}

func (s *GormStore) Ranking(ctx context.Context) ([]types.RankingEntry, error) {
	var rows []rankingRow
	err := s.db.WithContext(ctx).
		Table("player_points").
		Select("users.nickname, player_points.points, player_points.bb_per_100hands, player_points.total_games").
		Joins("JOIN users ON player_points.user_id = users.user_id").
		Where("player_points.mode_id IN ?", rankedModes).
		Where("users.nickname NOT LIKE ?", "admin%").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRankingUnavailable, err)
	}
	return rankingEntries(rows), nil
}

// rankingEntries averages bb/100 over games played, rounded to cents.
func rankingEntries(rows []rankingRow) []types.RankingEntry {
	out := make([]types.RankingEntry, 0, len(rows))
	for _, r := range rows {
		var avg float64
		if r.TotalGames > 0 {
			avg = math.Round(r.BBPer100Hands/float64(r.TotalGames)*100) / 100
		}
		out = append(out, types.RankingEntry{Name: r.Nickname, TotalMoney: r.Points, AvgProfit: avg})
	}
	return out
}

// GormZap sends gorm's query log to zap.
type GormZap struct {
	Log           *zap.Logger
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

func NewGormZap(log *zap.Logger) *GormZap {
	if log == nil {
		log = zap.NewNop()
	}
	return &GormZap{
		Log:           log.With(zap.String("component", "gorm")),
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormlogger.Warn,
	}
}

func (l *GormZap) LogMode(lv gormlogger.LogLevel) gormlogger.Interface {
	ret := *l
	ret.LogLevel = lv
	return &ret
}

func (l *GormZap) Info(_ context.Context, s string, args ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		l.Log.Sugar().Infof(s, args...)
	}
}

func (l *GormZap) Warn(_ context.Context, s string, args ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		l.Log.Sugar().Warnf(s, args...)
	}
}

func (l *GormZap) Error(_ context.Context, s string, args ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		l.Log.Sugar().Errorf(s, args...)
	}
}

func (l *GormZap) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.LogLevel >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.Log.Error("query failed", zap.Error(err), zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		sql, rows := fc()
		l.Log.Warn("slow query", zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	case l.LogLevel == gormlogger.Info:
		sql, rows := fc()
		l.Log.Debug("query", zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	}
}
