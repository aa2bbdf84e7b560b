// Package export materializes company records as downloadable files, either
// as a free redacted preview or as a paid full export.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/easyprospect/api/pkg/companies"
	"github.com/easyprospect/api/pkg/credits"
	"github.com/easyprospect/api/pkg/database"
	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/filter"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/metrics"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/quote"
	"github.com/easyprospect/api/pkg/redact"
)

// File is a rendered export
type File struct {
	Data        []byte
	ContentType string
	Filename    string
	Rows        int // rows in the file
	Total       int // matching records before the cap
}

// PreviewResult is a redacted sample of a filter's matches
type PreviewResult struct {
	Rows  []models.Company
	Total int
	Quote quote.Quote
}

// PublicRequest asks for an unauthenticated export
type PublicRequest struct {
	Criteria filter.Criteria
	Format   Format
	Preview  bool
}

// PurchaseRequest asks for a paid export of either explicit ids or a filter
type PurchaseRequest struct {
	UserID     int
	CompanyIDs []int
	Criteria   *filter.Criteria
	Format     Format
}

// PurchaseResult is a delivered paid export
type PurchaseResult struct {
	File      File
	Remaining int
	Download  models.Download
}

// Service runs previews and purchases
type Service struct {
	db     *sqlx.DB
	repo   *companies.Repository
	ledger *credits.Ledger
	quotes *quote.Service
	log    logger.Logger
	now    func() time.Time
}

// NewService creates an export service
func NewService(db *sqlx.DB, repo *companies.Repository, ledger *credits.Ledger, quotes *quote.Service, log logger.Logger) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		ledger: ledger,
		quotes: quotes,
		log:    log.With("component", "export"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Preview returns at most limit redacted rows, the true match count and the
// quote for buying all of them. Credits are not touched.
func (s *Service) Preview(ctx context.Context, c filter.Criteria, limit int) (*PreviewResult, error) {
	if limit <= 0 || limit > PreviewCap {
		limit = PreviewCap
	}

	q, err := s.quotes.Quote(ctx, c)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Find(ctx, c.Normalize(), 0, limit)
	if err != nil {
		return nil, err
	}

	return &PreviewResult{Rows: redact.Companies(rows), Total: q.Total, Quote: q}, nil
}

// Public renders an unauthenticated export. Rows are always redacted; the
// preview flag only selects the row cap.
func (s *Service) Public(ctx context.Context, req PublicRequest) (*File, error) {
	if err := filter.Validate(req.Criteria); err != nil {
		return nil, err
	}
	c := req.Criteria.Normalize()

	total, err := s.repo.Count(ctx, c)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Find(ctx, c, 0, req.Format.Cap(req.Preview))
	if err != nil {
		return nil, err
	}

	file, err := s.build(req.Format, report{
		Rows:        redact.Companies(rows),
		Total:       total,
		Preview:     true,
		Criteria:    c,
		GeneratedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordExport("public", string(req.Format), file.Rows)
	return file, nil
}

// Purchase charges the user one credit per delivered record and returns the
// unredacted file. Counting, debiting, fetching and rendering share one
// transaction: if any step fails the debit is rolled back and nothing is
// returned. Losing the response after commit leaves the credits spent.
func (s *Service) Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	if req.UserID <= 0 {
		return nil, domain.NewUnauthorizedError()
	}
	byIDs := len(req.CompanyIDs) > 0
	if !byIDs && req.Criteria == nil {
		return nil, domain.NewValidationError("company_ids or filters are required")
	}
	if len(req.CompanyIDs) > MaxPurchaseIDs {
		return nil, domain.NewValidationError(fmt.Sprintf("at most %d company_ids per purchase", MaxPurchaseIDs))
	}

	var c filter.Criteria
	snapshot := ""
	if byIDs {
		ids, err := json.Marshal(map[string][]int{"company_ids": req.CompanyIDs})
		if err != nil {
			return nil, fmt.Errorf("failed to encode purchase ids: %w", err)
		}
		snapshot = string(ids)
	} else {
		if err := filter.Validate(*req.Criteria); err != nil {
			return nil, err
		}
		c = req.Criteria.Normalize()
		snapshot = c.JSON()
	}

	limit := req.Format.Cap(false)
	var result *PurchaseResult

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		var total int
		var err error
		if byIDs {
			total, err = repo.CountByIDs(ctx, req.CompanyIDs)
		} else {
			total, err = repo.Count(ctx, c)
		}
		if err != nil {
			return err
		}
		if total == 0 {
			return domain.NewNotFoundError("companies")
		}
		charge := min(total, limit)

		debit, err := s.ledger.DebitTx(ctx, tx, credits.DebitRequest{
			UserID:      req.UserID,
			Amount:      charge,
			RecordCount: charge,
			Format:      string(req.Format),
			Filters:     snapshot,
		})
		if err != nil {
			return err
		}

		var rows []models.Company
		if byIDs {
			rows, err = repo.FindByIDs(ctx, req.CompanyIDs, limit)
		} else {
			rows, err = repo.Find(ctx, c, 0, limit)
		}
		if err != nil {
			return err
		}
		if len(rows) != charge {
			return fmt.Errorf("fetched %d records but charged %d", len(rows), charge)
		}

		file, err := s.build(req.Format, report{
			Rows:        rows,
			Total:       total,
			Criteria:    c,
			GeneratedAt: s.now(),
		})
		if err != nil {
			return err
		}

		result = &PurchaseResult{File: *file, Remaining: debit.Remaining, Download: debit.Download}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordExport("purchase", string(req.Format), result.File.Rows)
	s.log.Info("export purchased",
		"user_id", req.UserID,
		"download_id", result.Download.ID,
		"rows", result.File.Rows,
		"format", req.Format,
		"remaining", result.Remaining)
	return result, nil
}

func (s *Service) build(f Format, r report) (*File, error) {
	data, err := render(f, r)
	if err != nil {
		return nil, err
	}
	return &File{
		Data:        data,
		ContentType: f.ContentType(),
		Filename:    fmt.Sprintf("companies-%s.%s", r.GeneratedAt.Format("20060102-150405"), f.Extension()),
		Rows:        len(r.Rows),
		Total:       r.Total,
	}, nil
}
