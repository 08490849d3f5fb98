package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcwa24/bilbord-expo/models"
)

const testGrace = 5 * 24 * time.Hour

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &DB{DB: db, ExpiryGrace: testGrace, ReorderSettle: 0}, mock
}

var bannerCols = []string{"id", "image_url", "link", "title", "created_at", "expires_at", "position"}

const (
	purgeSQL  = `DELETE FROM banners WHERE expires_at IS NOT NULL AND expires_at < $1`
	listSQL   = `SELECT id, image_url, link, title, created_at, expires_at, position FROM banners ORDER BY position ASC NULLS LAST, created_at DESC`
	updateSQL = `UPDATE banners SET image_url = $1, link = $2, title = $3, expires_at = $4, position = $5 WHERE id = $6 RETURNING id, created_at`
)

func expectPurge(mock sqlmock.Sqlmock) {
	mock.ExpectExec(regexp.QuoteMeta(purgeSQL)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestListBannersOrderAndFiltering(t *testing.T) {
	db, mock := newTestDB(t)
	now := time.Now()

	expectPurge(mock)
	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).WillReturnRows(
		sqlmock.NewRows(bannerCols).
			AddRow(int64(3), "https://img/c.png", "https://c.com", "C", now, nil, int64(0)).
			AddRow(int64(1), "https://img/a.png", "https://a.com", "A", now, nil, int64(1)).
			// Expired beyond grace, survived the purge race: filtered out.
			AddRow(int64(9), "https://img/x.png", "https://x.com", "X", now, now.Add(-6*24*time.Hour), int64(2)).
			// Expired within grace: still visible.
			AddRow(int64(4), "https://img/d.png", "https://d.com", "D", now, now.Add(-2*24*time.Hour), int64(3)).
			AddRow(int64(5), "https://img/e.png", "https://e.com", "E", now, nil, nil),
	)

	banners, err := db.ListBanners(context.Background())
	require.NoError(t, err)

	var ids []int64
	for _, b := range banners {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{3, 1, 4, 5}, ids)
	assert.Nil(t, banners[3].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBannersPurgeFailureIsSwallowed(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec(regexp.QuoteMeta(purgeSQL)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(errors.New("store unavailable"))
	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).WillReturnRows(
		sqlmock.NewRows(bannerCols).
			AddRow(int64(1), "https://img/a.png", "https://a.com", "A", time.Now(), nil, nil),
	)

	banners, err := db.ListBanners(context.Background())
	require.NoError(t, err)
	assert.Len(t, banners, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBannersQueryError(t *testing.T) {
	db, mock := newTestDB(t)

	expectPurge(mock)
	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).WillReturnError(errors.New("boom"))

	banners, err := db.ListBanners(context.Background())
	assert.Error(t, err)
	assert.Nil(t, banners)
}

func TestCreateBanner(t *testing.T) {
	db, mock := newTestDB(t)
	created := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO banners (image_url, link, title, expires_at, position) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
	)).
		WithArgs("https://img/a.png", "https://a.com", "A", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	b, err := db.CreateBanner(context.Background(), models.Banner{
		ImageURL: "https://img/a.png",
		Link:     "https://a.com",
		Title:    "A",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.ID)
	assert.Equal(t, created, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBanner(t *testing.T) {
	db, mock := newTestDB(t)
	created := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(updateSQL)).
		WithArgs("https://img/a.png", "https://a.com", "A", nil, nil, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	b, err := db.UpdateBanner(context.Background(), "7", models.Banner{
		ImageURL: "https://img/a.png",
		Link:     "https://a.com",
		Title:    "A",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBannerNotFound(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(updateSQL)).
		WithArgs("https://img/a.png", "https://a.com", "", nil, nil, int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	_, err := db.UpdateBanner(context.Background(), "99", models.Banner{
		ImageURL: "https://img/a.png",
		Link:     "https://a.com",
	})
	assert.ErrorIs(t, err, ErrBannerNotFound)
}

func TestDeleteBannerIdempotent(t *testing.T) {
	db, mock := newTestDB(t)

	// Two deletes of the same id: the second matches zero rows and is
	// still treated as success.
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM banners WHERE id = $1 RETURNING image_url`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"image_url"}).AddRow("https://img/a.png"))
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM banners WHERE id = $1 RETURNING image_url`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"image_url"}))

	imageURL, err := db.DeleteBanner(context.Background(), "7")
	assert.NoError(t, err)
	assert.Equal(t, "https://img/a.png", imageURL)

	imageURL, err = db.DeleteBanner(context.Background(), "7")
	assert.NoError(t, err)
	assert.Empty(t, imageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoerceID(t *testing.T) {
	assert.Equal(t, int64(42), coerceID("42"))
	assert.Equal(t, "abc-123", coerceID("abc-123"))
}

func TestPurgeExpired(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec(regexp.QuoteMeta(purgeSQL)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := db.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCountBanners(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM banners`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT COUNT(*) FROM banners WHERE expires_at IS NOT NULL AND expires_at < $1`,
	)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	stats, err := db.CountBanners(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.Expired)
	assert.Equal(t, 4, stats.Active)
}

func TestUpdatePositions(t *testing.T) {
	db, mock := newTestDB(t)
	now := time.Now()

	// The position writes run concurrently, so their order is not
	// deterministic.
	mock.MatchExpectationsInOrder(false)

	positions := []models.BannerPosition{
		{ID: "3", Position: 0},
		{ID: "1", Position: 1},
		{ID: "2", Position: 2},
	}

	for _, p := range positions {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE banners SET position = $1 WHERE id = $2`)).
			WithArgs(p.Position, coerceID(p.ID)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	for _, p := range positions {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, position FROM banners WHERE id = $1`)).
			WithArgs(coerceID(p.ID)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "position"}).AddRow(p.ID, int64(p.Position)))
	}

	expectPurge(mock)
	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).WillReturnRows(
		sqlmock.NewRows(bannerCols).
			AddRow(int64(3), "https://img/c.png", "https://c.com", "C", now, nil, int64(0)).
			AddRow(int64(1), "https://img/a.png", "https://a.com", "A", now, nil, int64(1)).
			AddRow(int64(2), "https://img/b.png", "https://b.com", "B", now, nil, int64(2)),
	)

	res, err := db.UpdatePositions(context.Background(), positions)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Updated)
	assert.Len(t, res.Verified, 3)

	var ids []int64
	for _, b := range res.Banners {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePositionsWriteFailure(t *testing.T) {
	db, mock := newTestDB(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE banners SET position = $1 WHERE id = $2`)).
		WithArgs(0, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE banners SET position = $1 WHERE id = $2`)).
		WithArgs(1, int64(1)).
		WillReturnError(errors.New("write refused"))

	_, err := db.UpdatePositions(context.Background(), []models.BannerPosition{
		{ID: "3", Position: 0},
		{ID: "1", Position: 1},
	})
	assert.Error(t, err)
}

func TestUpdatePositionsVerifyFailureIsNotFatal(t *testing.T) {
	db, mock := newTestDB(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE banners SET position = $1 WHERE id = $2`)).
		WithArgs(0, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, position FROM banners WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnError(errors.New("read refused"))

	expectPurge(mock)
	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).
		WillReturnRows(sqlmock.NewRows(bannerCols))

	res, err := db.UpdatePositions(context.Background(), []models.BannerPosition{{ID: "3", Position: 0}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Empty(t, res.Verified)
}
