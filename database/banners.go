package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mcwa24/bilbord-expo/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrBannerNotFound is returned when an update targets an id with no
// matching row.
var ErrBannerNotFound = errors.New("banner not found")

const bannerColumns = "id, image_url, link, title, created_at, expires_at, position"

// coerceID binds numeric string ids as the store's bigint key type.
// Non-numeric ids are passed through unchanged so heterogeneous key
// schemes from older data keep working.
func coerceID(id string) interface{} {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

// ListBanners returns all non-expired banners in display order:
// position ascending with nulls last, then created_at descending.
//
// Rows whose expires_at is older than the grace cutoff are purged
// first; purge failures are logged and swallowed, the read proceeds
// regardless.
func (db *DB) ListBanners(ctx context.Context) ([]models.Banner, error) {
	now := time.Now()
	cutoff := now.Add(-db.ExpiryGrace)

	if _, err := db.ExecContext(ctx,
		`DELETE FROM banners WHERE expires_at IS NOT NULL AND expires_at < $1`, cutoff); err != nil {
		zap.S().Warnw("failed to purge expired banners", "error", err)
	}

	query := `SELECT ` + bannerColumns + ` FROM banners ORDER BY position ASC NULLS LAST, created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch banners: %w", err)
	}
	defer rows.Close()

	banners := []models.Banner{}
	for rows.Next() {
		var b models.Banner
		if err := rows.Scan(&b.ID, &b.ImageURL, &b.Link, &b.Title, &b.CreatedAt, &b.ExpiresAt, &b.Position); err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		// The purge above is best effort, so expired rows may still
		// come back from the store. Filter them here too.
		if b.Expired(now, db.ExpiryGrace) {
			continue
		}
		banners = append(banners, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read banners: %w", err)
	}

	return banners, nil
}

// CreateBanner inserts a new banner and returns the persisted record
// including the generated id and created_at.
func (db *DB) CreateBanner(ctx context.Context, b models.Banner) (*models.Banner, error) {
	query := `INSERT INTO banners (image_url, link, title, expires_at, position)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`

	err := db.QueryRowContext(ctx, query,
		b.ImageURL, b.Link, b.Title, b.ExpiresAt, b.Position,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create banner: %w", err)
	}

	return &b, nil
}

// UpdateBanner overwrites every mutable field of an existing banner.
func (db *DB) UpdateBanner(ctx context.Context, id string, b models.Banner) (*models.Banner, error) {
	query := `UPDATE banners
	          SET image_url = $1, link = $2, title = $3, expires_at = $4, position = $5
	          WHERE id = $6
	          RETURNING id, created_at`

	err := db.QueryRowContext(ctx, query,
		b.ImageURL, b.Link, b.Title, b.ExpiresAt, b.Position, coerceID(id),
	).Scan(&b.ID, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBannerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update banner: %w", err)
	}

	return &b, nil
}

// DeleteBanner removes a banner and returns its image URL so the
// caller can clean up object storage. Deleting an id that is already
// gone is not an error; the returned URL is then empty.
func (db *DB) DeleteBanner(ctx context.Context, id string) (string, error) {
	var imageURL string
	err := db.QueryRowContext(ctx,
		`DELETE FROM banners WHERE id = $1 RETURNING image_url`, coerceID(id),
	).Scan(&imageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete banner: %w", err)
	}
	return imageURL, nil
}

// PurgeExpired deletes banners whose expires_at is older than the
// grace cutoff and reports how many rows went away.
func (db *DB) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-db.ExpiryGrace)
	res, err := db.ExecContext(ctx,
		`DELETE FROM banners WHERE expires_at IS NOT NULL AND expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired banners: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// BannerStats summarizes the table for the admin dashboard.
type BannerStats struct {
	Total   int `json:"total_banners"`
	Active  int `json:"active_banners"`
	Expired int `json:"expired_banners"`
}

// CountBanners returns banner counts for the admin dashboard.
func (db *DB) CountBanners(ctx context.Context) (*BannerStats, error) {
	var stats BannerStats

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM banners`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to count banners: %w", err)
	}

	cutoff := time.Now().Add(-db.ExpiryGrace)
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM banners WHERE expires_at IS NOT NULL AND expires_at < $1`, cutoff,
	).Scan(&stats.Expired)
	if err != nil {
		return nil, fmt.Errorf("failed to count expired banners: %w", err)
	}

	stats.Active = stats.Total - stats.Expired
	return &stats, nil
}

// VerifiedPosition is a post-write read-back of one banner's position.
type VerifiedPosition struct {
	ID       string `json:"id"`
	Position *int   `json:"position"`
}

// ReorderResult reports a completed reorder: how many rows were
// written, what the store read back per row, and the fresh list.
type ReorderResult struct {
	Updated  int                `json:"updated"`
	Verified []VerifiedPosition `json:"verified"`
	Banners  []models.Banner    `json:"banners"`
}

// UpdatePositions writes the client-proposed slot order back to the
// store. Each banner gets one position write; the writes are
// independent rows, so they run concurrently, and any single failure
// fails the whole call with no rollback of writes already applied.
//
// After the writes it reads each row back to confirm, waits out the
// settle delay (the store is a hosted service with its own consistency
// lag), and returns the freshly ordered list so the caller can replace
// its optimistic state with server-confirmed truth.
func (db *DB) UpdatePositions(ctx context.Context, positions []models.BannerPosition) (*ReorderResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range positions {
		p := p
		g.Go(func() error {
			_, err := db.ExecContext(gctx,
				`UPDATE banners SET position = $1 WHERE id = $2`, p.Position, coerceID(p.ID))
			if err != nil {
				return fmt.Errorf("failed to update position of banner %s: %w", p.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	verified := make([]VerifiedPosition, 0, len(positions))
	for _, p := range positions {
		var v VerifiedPosition
		err := db.QueryRowContext(ctx,
			`SELECT id, position FROM banners WHERE id = $1`, coerceID(p.ID),
		).Scan(&v.ID, &v.Position)
		if err != nil {
			zap.S().Warnw("failed to verify banner position", "banner", p.ID, "error", err)
			continue
		}
		verified = append(verified, v)
	}

	if db.ReorderSettle > 0 {
		select {
		case <-time.After(db.ReorderSettle):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	banners, err := db.ListBanners(ctx)
	if err != nil {
		return nil, err
	}

	return &ReorderResult{
		Updated:  len(positions),
		Verified: verified,
		Banners:  banners,
	}, nil
}
