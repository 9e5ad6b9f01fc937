package pgvector

import (
	"context"
	"fmt"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	pgv "github.com/pgvector/pgvector-go"
)

// DefaultTable holds chunk vectors unless overridden
const DefaultTable = "chunk_vectors"

// Store keeps chunk vectors in PostgreSQL with the pgvector extension and
// ranks them by cosine distance.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

var _ interfaces.VectorStore = &Store{}

type Option func(*Store)

// WithTable overrides the table name. name is interpolated into SQL and must be trusted.
func WithTable(name string) Option {
	return func(s *Store) {
		s.table = name
	}
}

func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool, table: DefaultTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a connection pool for dsn
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create pgx pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, goerr.Wrap(err, "failed to ping postgres")
	}
	return pool, nil
}

// Migrate creates the extension, table and indexes for vectors of dimension dim
func (s *Store) Migrate(ctx context.Context, dim int) error {
	if dim <= 0 {
		return goerr.New("vector dimension must be positive", goerr.V("dimension", dim))
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id          TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			agent_id    TEXT NOT NULL,
			title       TEXT NOT NULL,
			content     TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			embedding   vector(%d) NOT NULL
		)`, s.table, dim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_agent_id_idx ON %s (agent_id)`, s.table, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_document_id_idx ON %s (document_id)`, s.table, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)`, s.table, s.table),
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to apply pgvector schema", goerr.V("statement", stmt))
		}
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, record *model.VectorRecord) error {
	if len(record.Vector) == 0 {
		return goerr.New("vector is empty", goerr.V("id", record.ID))
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, document_id, agent_id, title, content, chunk_index, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			agent_id    = EXCLUDED.agent_id,
			title       = EXCLUDED.title,
			content     = EXCLUDED.content,
			chunk_index = EXCLUDED.chunk_index,
			embedding   = EXCLUDED.embedding`, s.table)

	m := record.Metadata
	_, err := s.pool.Exec(ctx, query,
		record.ID, string(m.DocumentID), string(m.AgentID), m.Title, m.Content, m.ChunkIndex,
		pgv.NewVector(record.Vector),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert chunk vector", goerr.V("id", record.ID))
	}
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter model.VectorFilter) ([]*model.VectorMatch, error) {
	if topK <= 0 {
		return nil, goerr.New("topK must be positive", goerr.V("topK", topK))
	}

	query := fmt.Sprintf(`SELECT id, document_id, agent_id, title, content, chunk_index, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE ($2 = '' OR agent_id = $2) AND ($3 = '' OR document_id = $3)
		ORDER BY embedding <=> $1
		LIMIT $4`, s.table)

	rows, err := s.pool.Query(ctx, query,
		pgv.NewVector(vector), string(filter.AgentID), string(filter.DocumentID), topK)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query chunk vectors")
	}
	defer rows.Close()

	matches := make([]*model.VectorMatch, 0, topK)
	for rows.Next() {
		var (
			m          model.VectorMatch
			documentID string
			agentID    string
			score      float64
		)
		if err := rows.Scan(&m.ID, &documentID, &agentID, &m.Metadata.Title, &m.Metadata.Content, &m.Metadata.ChunkIndex, &score); err != nil {
			return nil, goerr.Wrap(err, "failed to scan chunk vector row")
		}
		m.Metadata.DocumentID = model.DocumentID(documentID)
		m.Metadata.AgentID = model.AgentID(agentID)
		m.Score = float32(score)
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read chunk vector rows")
	}
	return matches, nil
}

func (s *Store) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, s.table)
	if _, err := s.pool.Exec(ctx, query, ids); err != nil {
		return goerr.Wrap(err, "failed to delete chunk vectors", goerr.V("ids", ids))
	}
	return nil
}

func (s *Store) DeleteByFilter(ctx context.Context, filter model.VectorFilter) error {
	if filter.IsEmpty() {
		return goerr.New("refusing to delete with empty filter")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE ($1 = '' OR agent_id = $1) AND ($2 = '' OR document_id = $2)`, s.table)
	if _, err := s.pool.Exec(ctx, query, string(filter.AgentID), string(filter.DocumentID)); err != nil {
		return goerr.Wrap(err, "failed to delete chunk vectors by filter",
			goerr.V("agent_id", filter.AgentID),
			goerr.V("document_id", filter.DocumentID))
	}
	return nil
}
