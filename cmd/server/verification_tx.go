package main

import (
	"context"
	"database/sql"
	"time"

	verificationservice "bridgeid/internal/verification/service"
	requeststore "bridgeid/internal/verification/store/request"
	settingsstore "bridgeid/internal/verification/store/settings"
	statusstore "bridgeid/internal/verification/store/status"
	dErrors "bridgeid/pkg/domain-errors"
)

const defaultVerificationTxTimeout = 5 * time.Second

// verificationPostgresTx runs one protocol transition in a SQL transaction with
// every store bound to it.
type verificationPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newVerificationPostgresTx(db *sql.DB, timeout time.Duration) *verificationPostgresTx {
	return &verificationPostgresTx{db: db, timeout: timeout}
}

func (t *verificationPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores verificationservice.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultVerificationTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	stores := verificationservice.Stores{
		Requests: requeststore.NewPostgresTx(tx),
		Statuses: statusstore.NewPostgresTx(tx),
		Settings: settingsstore.NewPostgresTx(tx),
	}
	if err := fn(ctx, stores); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
