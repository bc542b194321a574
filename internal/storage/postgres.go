package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/mulefish/search-toy/internal/models"
)

// PostgresStore implements Store using PostgreSQL with the pgvector
// extension. Vectors are stored in a vector(n) column, which also allows
// in-database similarity search via SearchSimilar.
type PostgresStore struct {
	db         *sql.DB
	dimensions int
}

// NewPostgresStore opens a connection, verifies it, and initializes the
// schema. dimensions fixes the width of the vector column.
func NewPostgresStore(databaseURL string, dimensions int) (*PostgresStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("vector dimensions must be positive, got %d", dimensions)
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db, dimensions: dimensions}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS items (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS item_embeddings (
			item_id BIGINT PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			model_name TEXT NOT NULL,
			vector vector(%d) NOT NULL
		)`, s.dimensions),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Driver returns "postgres".
func (s *PostgresStore) Driver() string {
	return "postgres"
}

// ResetSchema drops and recreates all tables.
func (s *PostgresStore) ResetSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS item_embeddings`); err != nil {
		return fmt.Errorf("failed to drop item_embeddings: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS items`); err != nil {
		return fmt.Errorf("failed to drop items: %w", err)
	}
	return s.initSchema(ctx)
}

// CreateItem inserts an item and assigns the generated ID.
func (s *PostgresStore) CreateItem(ctx context.Context, item *models.Item) error {
	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO items (name, description, category, metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5, $6)
		 RETURNING id`,
		item.Name, item.Description, item.Category, string(metadataJSON), item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// GetItem returns an item by ID.
func (s *PostgresStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	var metadataJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, category, COALESCE(metadata::text, ''), created_at, updated_at
		 FROM items WHERE id = $1`, id,
	).Scan(&item.ID, &item.Name, &item.Description, &item.Category, &metadataJSON, &item.CreatedAt, &item.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &item.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &item, nil
}

// ListItems returns items ordered by name with offset and limit.
func (s *PostgresStore) ListItems(ctx context.Context, offset, limit int) ([]*models.Item, error) {
	query := `SELECT id, name, description, category, COALESCE(metadata::text, ''), created_at, updated_at
		 FROM items ORDER BY name OFFSET $1`
	args := []interface{}{offset}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	return scanPGItems(rows)
}

// SearchItems returns items matching any token (ILIKE), ordered by name.
func (s *PostgresStore) SearchItems(ctx context.Context, tokens []string, limit int) ([]*models.Item, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	conds := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens)+1)
	for i, tok := range tokens {
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR category ILIKE $%d)", i+1, i+1, i+1))
		args = append(args, "%"+tok+"%")
	}

	query := `SELECT id, name, description, category, COALESCE(metadata::text, ''), created_at, updated_at
		 FROM items WHERE ` + strings.Join(conds, " OR ") + ` ORDER BY name`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()
	return scanPGItems(rows)
}

func scanPGItems(rows *sql.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		var item models.Item
		var metadataJSON string
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Category, &metadataJSON, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if metadataJSON != "" && metadataJSON != "null" {
			_ = json.Unmarshal([]byte(metadataJSON), &item.Metadata)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// UpsertEmbedding writes or replaces the embedding for an item.
func (s *PostgresStore) UpsertEmbedding(ctx context.Context, emb *models.ItemEmbedding) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO item_embeddings (item_id, name, category, model_name, vector)
		 VALUES ($1, $2, $3, $4, $5::vector)
		 ON CONFLICT (item_id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			model_name = EXCLUDED.model_name,
			vector = EXCLUDED.vector`,
		emb.ItemID, emb.Name, emb.Category, emb.ModelName, vectorToString(emb.Vector),
	)
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

// BatchUpsertEmbeddings writes multiple embeddings in one transaction.
func (s *PostgresStore) BatchUpsertEmbeddings(ctx context.Context, embs []*models.ItemEmbedding) error {
	if len(embs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO item_embeddings (item_id, name, category, model_name, vector)
		 VALUES ($1, $2, $3, $4, $5::vector)
		 ON CONFLICT (item_id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			model_name = EXCLUDED.model_name,
			vector = EXCLUDED.vector`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, emb := range embs {
		if _, err := stmt.ExecContext(ctx, emb.ItemID, emb.Name, emb.Category, emb.ModelName, vectorToString(emb.Vector)); err != nil {
			return fmt.Errorf("insert embedding: %w", err)
		}
	}
	return tx.Commit()
}

// LoadEmbeddings returns all embeddings ordered by ascending item ID.
func (s *PostgresStore) LoadEmbeddings(ctx context.Context) ([]*models.ItemEmbedding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, name, category, model_name, vector::text
		 FROM item_embeddings ORDER BY item_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	var embs []*models.ItemEmbedding
	for rows.Next() {
		var emb models.ItemEmbedding
		var vectorStr string
		if err := rows.Scan(&emb.ItemID, &emb.Name, &emb.Category, &emb.ModelName, &vectorStr); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		vec, err := vectorFromString(vectorStr)
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

// SearchSimilar ranks embeddings in the database using the pgvector cosine
// distance operator, returning the top limit results with similarity and
// distance filled in. The secondary item_id sort key breaks distance ties by
// ascending ID, matching the in-memory ranker's insertion-order rule.
func (s *PostgresStore) SearchSimilar(ctx context.Context, queryVec []float32, limit int) ([]*models.RankedResult, error) {
	vectorStr := vectorToString(queryVec)
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, name, category, 1 - (vector <=> $1::vector) AS similarity
		 FROM item_embeddings
		 ORDER BY vector <=> $1::vector, item_id ASC
		 LIMIT $2`,
		vectorStr, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer rows.Close()

	var results []*models.RankedResult
	for rows.Next() {
		var res models.RankedResult
		if err := rows.Scan(&res.ID, &res.Name, &res.Category, &res.Similarity); err != nil {
			return nil, fmt.Errorf("scan similar: %w", err)
		}
		res.Distance = 1 - res.Similarity
		res.Rank = len(results) + 1
		results = append(results, &res)
	}
	return results, rows.Err()
}

// CountItems returns the total number of items.
func (s *PostgresStore) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count)
	return count, err
}

// CountEmbeddings returns the total number of embeddings.
func (s *PostgresStore) CountEmbeddings(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM item_embeddings`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// vectorToString converts a float32 slice to pgvector literal format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// vectorFromString parses the pgvector literal format back into a float32 slice.
func vectorFromString(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("invalid vector literal %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector element %q: %w", p, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
