package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"bridgeid/internal/verification/models"
	id "bridgeid/pkg/domain"
	"bridgeid/pkg/platform/sentinel"
)

// PostgresStore persists subject statuses in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx constructs a status store bound to a transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *PostgresStore) Set(ctx context.Context, status models.SubjectStatus) error {
	query := `
		INSERT INTO subject_status (subject_id, state, correlation_id, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subject_id) DO UPDATE
		SET state = EXCLUDED.state, correlation_id = EXCLUDED.correlation_id, updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer().ExecContext(ctx, query,
		status.SubjectID.String(),
		string(status.State),
		status.CorrelationID.Bytes(),
		status.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set subject status: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, subjectID id.SubjectID) (models.SubjectStatus, error) {
	query := `
		SELECT state, correlation_id, updated_at
		FROM subject_status
		WHERE subject_id = $1
	`
	var (
		state         string
		correlationID []byte
		st            = models.SubjectStatus{SubjectID: subjectID}
	)
	err := s.execer().QueryRowContext(ctx, query, subjectID.String()).Scan(&state, &correlationID, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SubjectStatus{}, sentinel.ErrNotFound
		}
		return models.SubjectStatus{}, fmt.Errorf("find subject status: %w", err)
	}
	st.State = models.SubjectState(state)
	st.CorrelationID = id.CorrelationID(common.BytesToHash(correlationID))
	return st, nil
}
