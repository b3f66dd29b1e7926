package index

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

// PGVector is the production index backed by Postgres with the pgvector
// extension. Concurrency safety is delegated to the database.
type PGVector struct {
	pool      *pgxpool.Pool
	dimension int
}

// NewPGVector connects to Postgres, verifies the connection and ensures
// the chunks table exists with the configured vector dimension.
func NewPGVector(ctx context.Context, connString string, dimension int) (*PGVector, error) {
	if dimension <= 0 {
		return nil, &domain.ConfigurationError{Field: "embedding dimension", Reason: "must be positive"}
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PGVector{pool: pool, dimension: dimension}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// ensureSchema creates the extension and chunks table if missing.
func (s *PGVector) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id UUID PRIMARY KEY,
			document_id UUID NOT NULL,
			document TEXT NOT NULL,
			chunk_index INT NOT NULL,
			page INT NOT NULL,
			content TEXT NOT NULL,
			start_offset INT NOT NULL,
			end_offset INT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS chunks_document_id_idx ON chunks (document_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Dimension returns the configured vector dimension.
func (s *PGVector) Dimension() int { return s.dimension }

// Upsert inserts all entries in one batch. Every vector is validated
// against the index dimension before anything is written.
func (s *PGVector) Upsert(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if err := checkDimension(len(e.Vector), s.dimension); err != nil {
			return err
		}
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		vec := pgvector.NewVector(e.Vector)
		batch.Queue(
			`INSERT INTO chunks (id, document_id, document, chunk_index, page, content, start_offset, end_offset, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			e.Chunk.ID, e.Chunk.DocumentID, e.Chunk.Document, e.Chunk.Index, e.Chunk.Page,
			e.Chunk.Text, e.Chunk.StartOffset, e.Chunk.EndOffset, vec, e.Chunk.CreatedAt,
		)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < len(entries); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}
	return nil
}

// Search ranks stored chunks by cosine distance and maps the distance to
// a [0,1] similarity score. Ties break by (document id, chunk index).
func (s *PGVector) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	if err := checkDimension(len(vector), s.dimension); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	vec := pgvector.NewVector(vector)
	rows, err := s.pool.Query(ctx,
		`SELECT id, document_id, document, chunk_index, page, content, start_offset, end_offset, created_at,
		        1 - (embedding <=> $1) / 2 AS score
		 FROM chunks
		 ORDER BY embedding <=> $1, document_id, chunk_index
		 LIMIT $2`,
		vec, k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(
			&h.Chunk.ID, &h.Chunk.DocumentID, &h.Chunk.Document, &h.Chunk.Index, &h.Chunk.Page,
			&h.Chunk.Text, &h.Chunk.StartOffset, &h.Chunk.EndOffset, &h.Chunk.CreatedAt, &h.Score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// DeleteDocument removes every chunk of the given document, retiring a
// superseded generation.
func (s *PGVector) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, docID)
	return err
}

// Close releases the connection pool.
func (s *PGVector) Close() error {
	s.pool.Close()
	return nil
}
