package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"bridgeid/internal/verification/models"
	"bridgeid/pkg/platform/sentinel"
)

// PostgresStore persists the single settings row in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx constructs a settings store bound to a transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *PostgresStore) execer() dbExecutor {
	if p.tx != nil {
		return p.tx
	}
	return p.db
}

const selectSettings = `
	SELECT owner, responder, correlation_tag, fee::text, mock_mode, updated_at
	FROM verification_settings
	WHERE id = 1
`

func (p *PostgresStore) Initialize(ctx context.Context, s *models.Settings) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("settings are required")
	}
	query := `
		INSERT INTO verification_settings (id, owner, responder, correlation_tag, fee, mock_mode, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := p.execer().ExecContext(ctx, query, settingsArgs(s)...)
	if err != nil {
		return false, fmt.Errorf("initialize settings: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("initialize settings rows: %w", err)
	}
	return rows == 1, nil
}

func (p *PostgresStore) Load(ctx context.Context) (*models.Settings, error) {
	return p.load(ctx, selectSettings)
}

// LoadForUpdate locks the settings row until the surrounding transaction ends.
func (p *PostgresStore) LoadForUpdate(ctx context.Context) (*models.Settings, error) {
	return p.load(ctx, selectSettings+` FOR UPDATE`)
}

func (p *PostgresStore) load(ctx context.Context, query string) (*models.Settings, error) {
	var (
		owner, responder []byte
		fee              string
		s                models.Settings
	)
	err := p.execer().QueryRowContext(ctx, query).Scan(
		&owner, &responder, &s.Responder.CorrelationTag, &fee, &s.Responder.MockModeEnabled, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	amount, ok := new(big.Int).SetString(fee, 10)
	if !ok {
		return nil, fmt.Errorf("decode fee %q", fee)
	}
	s.Owner = common.BytesToAddress(owner)
	s.Responder.ResponderAddress = common.BytesToAddress(responder)
	s.Responder.FeeAmount = amount
	return &s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s *models.Settings) error {
	if s == nil {
		return fmt.Errorf("settings are required")
	}
	query := `
		UPDATE verification_settings
		SET owner = $1, responder = $2, correlation_tag = $3, fee = $4, mock_mode = $5, updated_at = $6
		WHERE id = 1
	`
	res, err := p.execer().ExecContext(ctx, query, settingsArgs(s)...)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save settings rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func settingsArgs(s *models.Settings) []any {
	fee := "0"
	if s.Responder.FeeAmount != nil {
		fee = s.Responder.FeeAmount.String()
	}
	return []any{
		s.Owner.Bytes(),
		s.Responder.ResponderAddress.Bytes(),
		s.Responder.CorrelationTag,
		fee,
		s.Responder.MockModeEnabled,
		s.UpdatedAt,
	}
}
