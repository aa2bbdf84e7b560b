// Package credits owns user credit balances: the atomic debit that pays for
// an export, top-ups from purchased packs and the download audit log.
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
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/metrics"
	"github.com/easyprospect/api/pkg/models"
)

// DefaultHistoryLimit is how many download records the history endpoint returns
const DefaultHistoryLimit = 50

// DebitRequest describes one purchase to charge
type DebitRequest struct {
	UserID      int
	Amount      int
	RecordCount int
	Format      string
	Filters     string // JSON snapshot of what was bought
}

// DebitResult is the outcome of a successful debit
type DebitResult struct {
	Remaining int
	Download  models.Download
}

// Ledger debits and credits user balances
type Ledger struct {
	db  *sqlx.DB
	log logger.Logger
}

// NewLedger creates a ledger on db
func NewLedger(db *sqlx.DB, log logger.Logger) *Ledger {
	return &Ledger{db: db, log: log.With("component", "credits")}
}

// Debit charges the user and writes the download record in its own transaction
func (l *Ledger) Debit(ctx context.Context, req DebitRequest) (*DebitResult, error) {
	var result *DebitResult
	err := database.WithTx(ctx, l.db, func(tx *sqlx.Tx) error {
		var err error
		result, err = l.DebitTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DebitTx charges the user inside tx. The balance check and the decrement are
// one conditional UPDATE, so two concurrent debits can never both pass
// against the same credits. Nothing is written when it fails.
func (l *Ledger) DebitTx(ctx context.Context, tx *sqlx.Tx, req DebitRequest) (*DebitResult, error) {
	if req.UserID <= 0 {
		return nil, domain.NewUnauthorizedError()
	}
	if req.Amount <= 0 {
		return nil, domain.NewValidationError("debit amount must be positive")
	}
	if req.Filters == "" {
		req.Filters = "{}"
	}

	now := time.Now().UTC()

	var remaining int
	err := tx.GetContext(ctx, &remaining, tx.Rebind(
		`UPDATE users SET credits = credits - ?, updated_at = ?
		 WHERE id = ? AND credits >= ?
		 RETURNING credits`), req.Amount, now, req.UserID, req.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordCreditDebit("rejected", 0)
		return nil, l.explainRejectedDebit(ctx, tx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to debit credits: %w", err)
	}

	download := models.Download{
		UserID:      req.UserID,
		Filters:     req.Filters,
		RecordCount: req.RecordCount,
		CreditsUsed: req.Amount,
		Format:      req.Format,
		CreatedAt:   now,
	}
	err = tx.GetContext(ctx, &download.ID, tx.Rebind(
		`INSERT INTO downloads (user_id, filters, record_count, credits_used, format, created_at)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		download.UserID, download.Filters, download.RecordCount, download.CreditsUsed, download.Format, download.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record download: %w", err)
	}

	metrics.RecordCreditDebit("accepted", req.Amount)
	l.log.Info("credits debited",
		"user_id", req.UserID, "amount", req.Amount, "remaining", remaining, "download_id", download.ID)

	return &DebitResult{Remaining: remaining, Download: download}, nil
}

func (l *Ledger) explainRejectedDebit(ctx context.Context, tx *sqlx.Tx, req DebitRequest) error {
	var balance int
	err := tx.GetContext(ctx, &balance, tx.Rebind("SELECT credits FROM users WHERE id = ?"), req.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError("user")
	}
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}
	l.log.Info("debit rejected", "user_id", req.UserID, "balance", balance, "required", req.Amount)
	return domain.NewInsufficientCreditsError(balance, req.Amount)
}

// Balance returns the user's credits, plan and lifetime download count
func (l *Ledger) Balance(ctx context.Context, userID int) (*models.CreditBalanceResponse, error) {
	var row struct {
		Credits int    `db:"credits"`
		Plan    string `db:"plan"`
	}
	err := l.db.GetContext(ctx, &row, l.db.Rebind("SELECT credits, plan FROM users WHERE id = ?"), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	var downloads int
	if err := l.db.GetContext(ctx, &downloads,
		l.db.Rebind("SELECT COUNT(*) FROM downloads WHERE user_id = ?"), userID); err != nil {
		return nil, fmt.Errorf("failed to count downloads: %w", err)
	}

	return &models.CreditBalanceResponse{Credits: row.Credits, Plan: row.Plan, TotalDownloads: downloads}, nil
}

// Downloads returns the user's most recent download records, newest first
func (l *Ledger) Downloads(ctx context.Context, userID, limit int) ([]models.Download, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	out := []models.Download{}
	err := l.db.SelectContext(ctx, &out, l.db.Rebind(
		`SELECT id, user_id, filters, record_count, credits_used, format, created_at
		 FROM downloads WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	return out, nil
}
