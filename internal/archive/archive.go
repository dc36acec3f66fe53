// Package archive persists scanned posts to Postgres so the feed history
// survives between daemon runs. Purely optional: without a configured
// database the service is a no-op.
package archive

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"time"

	"engagelayer/internal/config"
	"engagelayer/internal/core"

	"github.com/samber/lo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// PostModel is the archived projection of a scanned post.
type PostModel struct {
	ID         uint64 `gorm:"primaryKey"`
	Author     string
	Content    string
	CampaignID int64
	LikeCount  int64
	TotalVotes int64
	IsPoll     bool
	Options    []byte `gorm:"type:jsonb"`
	CreatedAt  int64
	ScannedAt  time.Time
}

func (PostModel) TableName() string {
	return "posts"
}

type Archive struct {
	Logger *slog.Logger
	Config *config.Config

	db *gorm.DB
}

func (a *Archive) Init(context.Context) error {
	a.Logger = a.Logger.With("component", "archive.Archive")

	if a.Config.DatabaseURL == "" {
		a.Logger.Info("no database configured, archiving disabled")
		return nil
	}

	db, err := gorm.Open(postgres.Open(a.Config.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}
	a.db = db

	return db.AutoMigrate(&PostModel{})
}

func (a *Archive) HealthCheck(context.Context) error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (a *Archive) Shutdown(context.Context) error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}

// Enabled reports whether a database is configured.
func (a *Archive) Enabled() bool {
	return a.db != nil
}

// SavePosts upserts the scanned posts. Counters and poll options are
// refreshed on conflict; identity columns never change once written.
func (a *Archive) SavePosts(ctx context.Context, posts []core.Post) error {
	if a.db == nil || len(posts) == 0 {
		return nil
	}

	models := lo.Map(posts, func(p core.Post, _ int) PostModel {
		options, _ := json.Marshal(p.Options)
		return PostModel{
			ID:         p.ID,
			Author:     p.Author.Hex(),
			Content:    p.Content,
			CampaignID: bigInt64(p.CampaignID),
			LikeCount:  bigInt64(p.LikeCount),
			TotalVotes: bigInt64(p.TotalVotes),
			IsPoll:     p.IsPoll(),
			Options:    options,
			CreatedAt:  bigInt64(p.CreatedAt),
			ScannedAt:  time.Now(),
		}
	})

	return a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"like_count", "total_votes", "options", "scanned_at",
		}),
	}).Create(&models).Error
}

func bigInt64(v *big.Int) int64 {
	if v == nil {
		return 0
	}
	return v.Int64()
}
