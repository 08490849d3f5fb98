package models

import (
	"sort"
	"time"
)

// Banner is a single promotional banner shown on the public gallery.
// ExpiresAt and Position are nullable in the store; a nil ExpiresAt
// means the banner never expires, a nil Position sorts it after every
// positioned banner.
type Banner struct {
	ID        int64      `json:"id" db:"id"`
	ImageURL  string     `json:"imageUrl" db:"image_url"`
	Link      string     `json:"link" db:"link"`
	Title     string     `json:"title" db:"title"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	ExpiresAt *time.Time `json:"expiresAt" db:"expires_at"`
	Position  *int       `json:"position" db:"position"`
}

func (Banner) TableName() string { return "banners" }

func (Banner) CreateTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS banners (
        id BIGSERIAL PRIMARY KEY,
        image_url TEXT NOT NULL,
        link TEXT NOT NULL,
        title TEXT DEFAULT '',
        created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
        expires_at TIMESTAMP WITH TIME ZONE,
        position INTEGER
    );`
}

// Expired reports whether the banner has passed its expiration date by
// more than the grace window. Banners stay visible for the full grace
// period after expires_at before they are hidden and purged.
func (b Banner) Expired(now time.Time, grace time.Duration) bool {
	if b.ExpiresAt == nil {
		return false
	}
	return b.ExpiresAt.Before(now.Add(-grace))
}

// SortForDisplay orders banners the way the gallery shows them:
// positioned banners ascending by position, then unpositioned banners
// newest first.
func SortForDisplay(banners []Banner) {
	sort.SliceStable(banners, func(i, j int) bool {
		a, b := banners[i], banners[j]
		switch {
		case a.Position != nil && b.Position != nil:
			return *a.Position < *b.Position
		case a.Position != nil:
			return true
		case b.Position != nil:
			return false
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

// BannerPosition is one entry of a reorder request: the banner and the
// zero-based slot index it should occupy.
type BannerPosition struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}
