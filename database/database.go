package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mcwa24/bilbord-expo/models"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type DB struct {
	*sql.DB

	// ExpiryGrace is how long a banner stays visible past expires_at.
	ExpiryGrace time.Duration

	// ReorderSettle is the wait before the post-reorder re-read.
	ReorderSettle time.Duration
}

var Database *DB

// Connect establishes a connection to the PostgreSQL database.
func Connect(databaseURL string, expiryGrace, reorderSettle time.Duration) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	Database = &DB{DB: db, ExpiryGrace: expiryGrace, ReorderSettle: reorderSettle}
	return Database, nil
}

// InitializeTables creates all tables if they don't exist.
func (db *DB) InitializeTables() error {
	tables := []interface {
		TableName() string
		CreateTableSQL() string
	}{
		models.Banner{},
		models.User{},
	}

	for _, model := range tables {
		zap.S().Infow("creating table", "table", model.TableName())
		if _, err := db.Exec(model.CreateTableSQL()); err != nil {
			return fmt.Errorf("failed to create table %s: %w", model.TableName(), err)
		}
	}

	if err := db.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations handles schema updates for existing tables.
func (db *DB) runMigrations() error {
	migrations := []string{
		// Older deployments predate expiry and manual ordering.
		`ALTER TABLE banners ADD COLUMN IF NOT EXISTS expires_at TIMESTAMP WITH TIME ZONE;`,
		`ALTER TABLE banners ADD COLUMN IF NOT EXISTS position INTEGER;`,
		`ALTER TABLE banners ALTER COLUMN title SET DEFAULT '';`,

		`CREATE INDEX IF NOT EXISTS idx_banners_position ON banners(position);`,
		`CREATE INDEX IF NOT EXISTS idx_banners_expires_at ON banners(expires_at);`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			zap.S().Warnw("migration failed, continuing", "migration", i+1, "error", err)
			// Continue with other migrations even if one fails
		}
	}

	return nil
}

// SeedAdmin ensures the admin account from the environment exists.
// An empty password leaves the user table untouched so a deployment
// without credentials cannot mint a guessable login.
func (db *DB) SeedAdmin(username, password string) error {
	if username == "" || password == "" {
		zap.S().Warn("admin credentials not configured, skipping admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	query := `INSERT INTO users (id, username, password_hash, role, created_at)
	          VALUES ($1, $2, $3, 'admin', now())
	          ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`
	if _, err := db.Exec(query, uuid.New(), username, string(hash)); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	return nil
}

// GetUserByUsername looks up an admin account for login.
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	var u models.User
	query := `SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`
	err := db.QueryRow(query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
