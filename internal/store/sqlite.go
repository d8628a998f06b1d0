package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"cryptofolio/internal/models"
)

// SQLiteSnapshot persists the holdings list in a SQLite database.
// Each save replaces the full table, matching the serialize-on-write
// behavior of the file backend.
type SQLiteSnapshot struct {
	db *sql.DB
}

// NewSQLiteSnapshot opens (or creates) the database at dbPath.
func NewSQLiteSnapshot(dbPath string) (*SQLiteSnapshot, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteSnapshot{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSnapshot) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS holdings (
		position INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL,
		quantity REAL NOT NULL,
		avg_buy_price REAL NOT NULL,
		target_price REAL NOT NULL,
		stop_loss REAL NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the stored holdings with the given list. The position column
// preserves insertion order, which is display-significant.
func (s *SQLiteSnapshot) Save(holdings []models.Holding) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM holdings`); err != nil {
		return fmt.Errorf("clearing holdings: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO holdings (position, id, asset_id, quantity, avg_buy_price, target_price, stop_loss, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, h := range holdings {
		_, err := stmt.Exec(i, h.ID, h.AssetID, h.Quantity, h.AvgBuyPrice, h.TargetPrice, h.StopLoss, h.CreatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("inserting holding %s: %w", h.ID, err)
		}
	}

	return tx.Commit()
}

// Load reads the stored holdings in insertion order.
func (s *SQLiteSnapshot) Load() ([]models.Holding, error) {
	rows, err := s.db.Query(`
		SELECT id, asset_id, quantity, avg_buy_price, target_price, stop_loss, created_at
		FROM holdings ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		var createdAt string
		if err := rows.Scan(&h.ID, &h.AssetID, &h.Quantity, &h.AvgBuyPrice, &h.TargetPrice, &h.StopLoss, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning holding: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			h.CreatedAt = t
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// Close closes the database.
func (s *SQLiteSnapshot) Close() error {
	return s.db.Close()
}
