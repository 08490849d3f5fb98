package services

import (
	"context"
	"time"

	"github.com/mcwa24/bilbord-expo/database"

	"go.uber.org/zap"
)

// ExpirySweeper periodically deletes banners whose grace period has
// run out. The list endpoint already purges opportunistically on every
// read; the sweeper keeps the table clean during quiet stretches.
type ExpirySweeper struct {
	db       *database.DB
	interval time.Duration
}

func NewExpirySweeper(db *database.DB, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{db: db, interval: interval}
}

// Start runs the sweep loop until the context is cancelled.
func (s *ExpirySweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.db.PurgeExpired(ctx)
				if err != nil {
					zap.S().Warnw("expiry sweep failed", "error", err)
					continue
				}
				if n > 0 {
					zap.S().Infow("purged expired banners", "count", n)
				}
			}
		}
	}()
}
