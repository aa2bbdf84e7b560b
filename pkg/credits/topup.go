package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/easyprospect/api/pkg/database"
	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/metrics"
)

var errAlreadyApplied = errors.New("top-up already applied")

// TopUp adds purchased credits to a balance. reference identifies the
// payment (the checkout session id); a reference is applied at most once, so
// redelivered webhooks are harmless. applied is false for a repeat.
func (l *Ledger) TopUp(ctx context.Context, userID, amount int, pack, reference string) (remaining int, applied bool, err error) {
	if amount <= 0 {
		return 0, false, domain.NewValidationError("top-up amount must be positive")
	}
	if reference == "" {
		return 0, false, domain.NewValidationError("top-up reference is required")
	}

	err = database.WithTx(ctx, l.db, func(tx *sqlx.Tx) error {
		var current int
		err := tx.GetContext(ctx, &current, tx.Rebind("SELECT credits FROM users WHERE id = ?"), userID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("user")
		}
		if err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}

		var seen int
		if err := tx.GetContext(ctx, &seen,
			tx.Rebind("SELECT COUNT(*) FROM credit_purchases WHERE reference = ?"), reference); err != nil {
			return fmt.Errorf("failed to check top-up reference: %w", err)
		}
		if seen > 0 {
			return errAlreadyApplied
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO credit_purchases (user_id, pack, credits, reference, created_at) VALUES (?, ?, ?, ?, ?)`),
			userID, pack, amount, reference, now); err != nil {
			return err
		}

		err = tx.GetContext(ctx, &remaining, tx.Rebind(
			"UPDATE users SET credits = credits + ?, updated_at = ? WHERE id = ? RETURNING credits"),
			amount, now, userID)
		if err != nil {
			return fmt.Errorf("failed to add credits: %w", err)
		}
		return nil
	})

	if errors.Is(err, errAlreadyApplied) || database.IsUniqueViolation(err) {
		balance, berr := l.Balance(ctx, userID)
		if berr != nil {
			return 0, false, berr
		}
		l.log.Info("top-up already applied", "user_id", userID, "reference", reference)
		return balance.Credits, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	metrics.RecordCreditTopUp(pack, amount)
	l.log.Info("credits added", "user_id", userID, "amount", amount, "pack", pack, "remaining", remaining)
	return remaining, true, nil
}
