package token

import (
	"context"
	"fmt"
	"time"

	"token-pulse/internal/worker/writer"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dbWriteTimeout = 30 * time.Second

type DbTokenWriter struct {
	db *gorm.DB
	tl *zap.Logger
}

func NewDbTokenWriter(db *gorm.DB, tl *zap.Logger) writer.BatchWriter[Snapshot] {
	return &DbTokenWriter{db: db, tl: tl}
}

// BWrite 每个快照一个事务，逐条 upsert，任意一条失败整体回滚
func (w *DbTokenWriter) BWrite(ctx context.Context, snapshots []Snapshot) error {
	for _, s := range snapshots {
		if err := w.writeSnapshot(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (w *DbTokenWriter) writeSnapshot(ctx context.Context, s Snapshot) error {
	if len(s.Tokens) == 0 {
		return nil
	}

	newCtx, cancel := context.WithTimeout(ctx, dbWriteTimeout)
	defer cancel()

	err := w.db.WithContext(newCtx).Transaction(func(tx *gorm.DB) error {
		for _, t := range s.Tokens {
			row := *t
			row.ID = 0
			row.Category = s.Category
			// 匹配唯一索引 uniq_discovery_mint_category
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "mint"},
					{Name: "category"},
				},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"name":             gorm.Expr("EXCLUDED.name"),
					"symbol":           gorm.Expr("EXCLUDED.symbol"),
					"uri":              gorm.Expr("EXCLUDED.uri"),
					"image":            gorm.Expr("EXCLUDED.image"),
					"marketcap":        gorm.Expr("EXCLUDED.marketcap"),
					"price_change_24h": gorm.Expr("EXCLUDED.price_change_24h"),
					"metrics":          gorm.Expr("EXCLUDED.metrics"),
					"updated_at":       gorm.Expr("EXCLUDED.updated_at"),
				}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("upsert %s/%s: %w", s.Category, t.Mint, err)
			}
		}
		return nil
	})
	if err != nil {
		w.tl.Warn("❌ DB snapshot write failed, rolled back",
			zap.String("category", s.Category),
			zap.Int("tokens", len(s.Tokens)),
			zap.Error(err))
		return err
	}
	return nil
}

func (w *DbTokenWriter) Close() error {
	return nil
}
