package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mulefish/search-toy/internal/models"
	"github.com/mulefish/search-toy/internal/vector"
)

// SQLiteStore implements Store using SQLite. Vectors are stored as BLOBs of
// little-endian float32 values.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);
	CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);

	CREATE TABLE IF NOT EXISTS item_embeddings (
		item_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		model_name TEXT NOT NULL,
		vector BLOB NOT NULL,
		FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// DBPath returns the database file path (used for disk stats and watching).
func (s *SQLiteStore) DBPath() string {
	return s.dbPath
}

// Driver returns "sqlite3".
func (s *SQLiteStore) Driver() string {
	return "sqlite3"
}

// ResetSchema drops and recreates all tables.
func (s *SQLiteStore) ResetSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS item_embeddings`); err != nil {
		return fmt.Errorf("failed to drop item_embeddings: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS items`); err != nil {
		return fmt.Errorf("failed to drop items: %w", err)
	}
	return initSchema(s.db)
}

// CreateItem inserts an item and assigns the generated ID.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *models.Item) error {
	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO items (name, description, category, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Category, string(metadataJSON), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read generated id: %w", err)
	}
	item.ID = id
	return nil
}

// GetItem returns an item by ID.
func (s *SQLiteStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	var metadataJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, category, COALESCE(metadata, ''), created_at, updated_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Description, &item.Category, &metadataJSON, &item.CreatedAt, &item.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &item.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &item, nil
}

// ListItems returns items ordered by name with offset and limit.
func (s *SQLiteStore) ListItems(ctx context.Context, offset, limit int) ([]*models.Item, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, category, COALESCE(metadata, ''), created_at, updated_at
		 FROM items ORDER BY name LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// SearchItems returns items matching any token, ordered by name.
func (s *SQLiteStore) SearchItems(ctx context.Context, tokens []string, limit int) ([]*models.Item, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	conds := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens)*3)
	for _, tok := range tokens {
		pattern := "%" + tok + "%"
		conds = append(conds, "(name LIKE ? OR description LIKE ? OR category LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT id, name, description, category, COALESCE(metadata, ''), created_at, updated_at
		 FROM items WHERE ` + strings.Join(conds, " OR ") + ` ORDER BY name`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		var item models.Item
		var metadataJSON string
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Category, &metadataJSON, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if metadataJSON != "" && metadataJSON != "null" {
			_ = json.Unmarshal([]byte(metadataJSON), &item.Metadata)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// UpsertEmbedding writes or replaces the embedding for an item.
func (s *SQLiteStore) UpsertEmbedding(ctx context.Context, emb *models.ItemEmbedding) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO item_embeddings (item_id, name, category, model_name, vector)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(item_id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			model_name = excluded.model_name,
			vector = excluded.vector`,
		emb.ItemID, emb.Name, emb.Category, emb.ModelName, vector.EncodeEmbedding(emb.Vector),
	)
	return err
}

// BatchUpsertEmbeddings writes multiple embeddings in one transaction.
func (s *SQLiteStore) BatchUpsertEmbeddings(ctx context.Context, embs []*models.ItemEmbedding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO item_embeddings (item_id, name, category, model_name, vector)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(item_id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			model_name = excluded.model_name,
			vector = excluded.vector`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, emb := range embs {
		if _, err := stmt.ExecContext(ctx, emb.ItemID, emb.Name, emb.Category, emb.ModelName, vector.EncodeEmbedding(emb.Vector)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadEmbeddings returns all embeddings ordered by ascending item ID.
func (s *SQLiteStore) LoadEmbeddings(ctx context.Context) ([]*models.ItemEmbedding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, name, category, model_name, vector
		 FROM item_embeddings ORDER BY item_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	var embs []*models.ItemEmbedding
	for rows.Next() {
		var emb models.ItemEmbedding
		var blob []byte
		if err := rows.Scan(&emb.ItemID, &emb.Name, &emb.Category, &emb.ModelName, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		vec, err := vector.DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", emb.ItemID, err)
		}
		emb.Vector = vec
		embs = append(embs, &emb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read embeddings: %w", err)
	}
	return embs, nil
}

// CountItems returns the total number of items.
func (s *SQLiteStore) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count)
	return count, err
}

// CountEmbeddings returns the total number of embeddings.
func (s *SQLiteStore) CountEmbeddings(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM item_embeddings`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
