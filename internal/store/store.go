package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is the PostgreSQL run audit log. It implements schemas.RunStore.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

var _ schemas.RunStore = (*Store)(nil)

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// SaveRun records one finished run and its full action log.
func (s *Store) SaveRun(ctx context.Context, result *schemas.RunResult) error {
	actions, err := json.Marshal(result.ActionsTaken)
	if err != nil {
		return fmt.Errorf("failed to encode action log: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	_, err = tx.Exec(ctx, `
        INSERT INTO runs (run_id, status, final_url, final_response, error, actions_taken, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.RunID,
		string(result.Status),
		result.FinalURL,
		result.FinalResponse,
		result.Error,
		actions,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", result.RunID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun loads one audited run by its ID. Returns pgx.ErrNoRows when the run
// was never recorded.
func (s *Store) GetRun(ctx context.Context, runID string) (*schemas.RunResult, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT run_id, status, final_url, final_response, error, actions_taken
        FROM runs WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read run %s: %w", runID, err)
		}
		return nil, fmt.Errorf("run %s: %w", runID, pgx.ErrNoRows)
	}

	var (
		result  schemas.RunResult
		status  string
		actions []byte
	)
	if err := rows.Scan(&result.RunID, &status, &result.FinalURL, &result.FinalResponse, &result.Error, &actions); err != nil {
		return nil, fmt.Errorf("failed to scan run %s: %w", runID, err)
	}
	result.Status = schemas.RunStatus(status)
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &result.ActionsTaken); err != nil {
			return nil, fmt.Errorf("failed to decode action log for run %s: %w", runID, err)
		}
	}
	return &result, nil
}
