package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgconn"

	"bridgeid/internal/verification/models"
	id "bridgeid/pkg/domain"
	"bridgeid/pkg/platform/sentinel"
)

// PostgresStore persists verification requests in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPostgres constructs a PostgreSQL-backed request store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx constructs a request store bound to a transaction.
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

const selectColumns = `
	SELECT correlation_id, subject_id::text, did, destination_chain, requester,
	       correlation_tag, fee::text, dispatched, status, result_code, fulfilled_by,
	       created_at, fulfilled_at
	FROM verification_requests
`

func (s *PostgresStore) NextNonce(ctx context.Context) (uint64, error) {
	var nonce int64
	if err := s.execer().QueryRowContext(ctx, `SELECT nextval('verification_request_nonce')`).Scan(&nonce); err != nil {
		return 0, fmt.Errorf("next request nonce: %w", err)
	}
	return uint64(nonce), nil
}

func (s *PostgresStore) Exists(ctx context.Context, correlationID id.CorrelationID) (bool, error) {
	var exists bool
	err := s.execer().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM verification_requests WHERE correlation_id = $1)`,
		correlationID.Bytes(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check request exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Create(ctx context.Context, req *models.Request) error {
	if req == nil {
		return fmt.Errorf("request is required")
	}
	query := `
		INSERT INTO verification_requests (
			correlation_id, subject_id, did, destination_chain, requester,
			correlation_tag, fee, dispatched, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.execer().ExecContext(ctx, query,
		req.CorrelationID.Bytes(),
		req.SubjectID.String(),
		req.DID,
		req.DestinationChain,
		req.Requester.Bytes(),
		req.CorrelationTag,
		req.Fee.String(),
		req.Dispatched,
		string(req.Status),
		req.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("correlation ID %s: %w", req.CorrelationID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create verification request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, correlationID id.CorrelationID) (*models.Request, error) {
	return s.find(ctx, selectColumns+` WHERE correlation_id = $1`, correlationID)
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, correlationID id.CorrelationID) (*models.Request, error) {
	return s.find(ctx, selectColumns+` WHERE correlation_id = $1 FOR UPDATE`, correlationID)
}

func (s *PostgresStore) find(ctx context.Context, query string, correlationID id.CorrelationID) (*models.Request, error) {
	req, err := scanRequest(s.execer().QueryRowContext(ctx, query, correlationID.Bytes()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification request: %w", err)
	}
	return req, nil
}

// Update writes the fulfillment columns. The status guard keeps fulfilled rows immutable.
func (s *PostgresStore) Update(ctx context.Context, req *models.Request) error {
	if req == nil {
		return fmt.Errorf("request is required")
	}
	query := `
		UPDATE verification_requests
		SET status = $2, result_code = $3, fulfilled_by = $4, fulfilled_at = $5, dispatched = $6
		WHERE correlation_id = $1 AND status = 'pending'
	`
	var fulfilledBy []byte
	if req.FulfilledAt != nil {
		fulfilledBy = req.FulfilledBy.Bytes()
	}
	res, err := s.execer().ExecContext(ctx, query,
		req.CorrelationID.Bytes(),
		string(req.Status),
		int16(req.Result),
		fulfilledBy,
		req.FulfilledAt,
		req.Dispatched,
	)
	if err != nil {
		return fmt.Errorf("update verification request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update verification request rows: %w", err)
	}
	if rows == 0 {
		exists, err := s.Exists(ctx, req.CorrelationID)
		if err != nil {
			return err
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("request %s is final: %w", req.CorrelationID, sentinel.ErrInvalidState)
	}
	return nil
}

// DeletePending removes a pending row. Fulfilled rows are never deleted.
func (s *PostgresStore) DeletePending(ctx context.Context, correlationID id.CorrelationID) error {
	res, err := s.execer().ExecContext(ctx,
		`DELETE FROM verification_requests WHERE correlation_id = $1 AND status = 'pending'`,
		correlationID.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("delete verification request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete verification request rows: %w", err)
	}
	if rows == 0 {
		exists, err := s.Exists(ctx, correlationID)
		if err != nil {
			return err
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("request %s is final: %w", correlationID, sentinel.ErrInvalidState)
	}
	return nil
}

func (s *PostgresStore) CountPendingCreatedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := s.execer().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verification_requests WHERE status = 'pending' AND created_at < $1`,
		cutoff,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count stale requests: %w", err)
	}
	return count, nil
}

func scanRequest(row *sql.Row) (*models.Request, error) {
	var (
		correlationID []byte
		subjectID     string
		requester     []byte
		fee           string
		status        string
		resultCode    sql.NullInt16
		fulfilledBy   []byte
		fulfilledAt   sql.NullTime
		req           models.Request
	)
	if err := row.Scan(
		&correlationID,
		&subjectID,
		&req.DID,
		&req.DestinationChain,
		&requester,
		&req.CorrelationTag,
		&fee,
		&req.Dispatched,
		&status,
		&resultCode,
		&fulfilledBy,
		&req.CreatedAt,
		&fulfilledAt,
	); err != nil {
		return nil, err
	}

	req.CorrelationID = id.CorrelationID(common.BytesToHash(correlationID))
	sid, err := strconv.ParseUint(subjectID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode subject_id: %w", err)
	}
	req.SubjectID = id.SubjectID(sid)
	req.Requester = common.BytesToAddress(requester)
	amount, ok := new(big.Int).SetString(fee, 10)
	if !ok {
		return nil, fmt.Errorf("decode fee %q", fee)
	}
	req.Fee = amount
	req.Status = models.RequestStatus(status)
	if resultCode.Valid {
		req.Result = models.ResultCode(resultCode.Int16)
	}
	if len(fulfilledBy) > 0 {
		req.FulfilledBy = common.BytesToAddress(fulfilledBy)
	}
	if fulfilledAt.Valid {
		at := fulfilledAt.Time
		req.FulfilledAt = &at
	}
	return &req, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
