// Package companies is the read side of the company dataset plus the admin
// create path.
package companies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/easyprospect/api/pkg/database"
	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/filter"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/phone"
)

const columns = `id, name, trade_name, tax_id, email, phone, whatsapp, website, linkedin, instagram,
	continent, country, state, city, address, sector, subsector, size,
	is_importer, is_exporter, is_distributor, is_manufacturer, is_retailer, is_wholesaler,
	responsible_name, responsible_title, quality, active, created_at, updated_at`

// orderBy ranks records best first; id breaks ties so pages are stable
const orderBy = "ORDER BY quality DESC, updated_at DESC, id ASC"

// Repository runs queries against the companies table. It is bound either to
// the pool or, through WithTx, to a single transaction.
type Repository struct {
	q sqlx.ExtContext
}

// NewRepository creates a repository on the connection pool
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{q: db}
}

// WithTx returns a repository whose queries run inside tx
func (r *Repository) WithTx(tx *sqlx.Tx) *Repository {
	return &Repository{q: tx}
}

// Count returns how many active records match the criteria
func (r *Repository) Count(ctx context.Context, c filter.Criteria) (int, error) {
	p, err := filter.Compile(c)
	if err != nil {
		return 0, err
	}

	var total int
	query := r.q.Rebind("SELECT COUNT(*) FROM companies WHERE " + p.Where)
	if err := sqlx.GetContext(ctx, r.q, &total, query, p.Args...); err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return total, nil
}

// Find returns one ranked page of active records matching the criteria
func (r *Repository) Find(ctx context.Context, c filter.Criteria, offset, limit int) ([]models.Company, error) {
	p, err := filter.Compile(c)
	if err != nil {
		return nil, err
	}

	query := r.q.Rebind(fmt.Sprintf("SELECT %s FROM companies WHERE %s %s LIMIT ? OFFSET ?", columns, p.Where, orderBy))
	args := append(p.Args, limit, offset)

	out := []models.Company{}
	if err := sqlx.SelectContext(ctx, r.q, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find companies: %w", err)
	}
	return out, nil
}

// CountByIDs returns how many of ids refer to active records
func (r *Repository) CountByIDs(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In("SELECT COUNT(*) FROM companies WHERE active = ? AND id IN (?)", true, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to expand ids: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, r.q, &total, r.q.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count companies by id: %w", err)
	}
	return total, nil
}

// FindByIDs returns the active records among ids, ranked, at most limit rows
func (r *Repository) FindByIDs(ctx context.Context, ids []int, limit int) ([]models.Company, error) {
	out := []models.Company{}
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(
		fmt.Sprintf("SELECT %s FROM companies WHERE active = ? AND id IN (?) %s LIMIT ?", columns, orderBy),
		true, ids, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to expand ids: %w", err)
	}

	if err := sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to find companies by id: %w", err)
	}
	return out, nil
}

// GetByID returns one active record
func (r *Repository) GetByID(ctx context.Context, id int) (*models.Company, error) {
	var c models.Company
	query := r.q.Rebind(fmt.Sprintf("SELECT %s FROM companies WHERE id = ? AND active = ?", columns))
	err := sqlx.GetContext(ctx, r.q, &c, query, id, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("company")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %d: %w", id, err)
	}
	return &c, nil
}

// Create inserts a new record. A record with the same email already existing
// is a conflict.
func (r *Repository) Create(ctx context.Context, req models.CreateCompanyRequest) (*models.Company, error) {
	now := time.Now().UTC()
	c := models.Company{
		Name:             strings.TrimSpace(req.Name),
		TradeName:        req.TradeName,
		TaxID:            req.TaxID,
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:            phone.Normalize(req.Phone, req.Country),
		WhatsApp:         phone.Normalize(req.WhatsApp, req.Country),
		Website:          req.Website,
		LinkedIn:         req.LinkedIn,
		Instagram:        req.Instagram,
		Continent:        req.Continent,
		Country:          req.Country,
		State:            req.State,
		City:             req.City,
		Address:          req.Address,
		Sector:           req.Sector,
		Subsector:        req.Subsector,
		Size:             req.Size,
		IsImporter:       req.IsImporter,
		IsExporter:       req.IsExporter,
		IsDistributor:    req.IsDistributor,
		IsManufacturer:   req.IsManufacturer,
		IsRetailer:       req.IsRetailer,
		IsWholesaler:     req.IsWholesaler,
		ResponsibleName:  req.ResponsibleName,
		ResponsibleTitle: req.ResponsibleTitle,
		Quality:          req.Quality,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if c.Email != "" {
		var exists int
		query := r.q.Rebind("SELECT COUNT(*) FROM companies WHERE email = ?")
		if err := sqlx.GetContext(ctx, r.q, &exists, query, c.Email); err != nil {
			return nil, fmt.Errorf("failed to check company email: %w", err)
		}
		if exists > 0 {
			return nil, domain.NewConflictError("A company with this email already exists")
		}
	}

	query, args, err := sqlx.Named(`INSERT INTO companies (
		name, trade_name, tax_id, email, phone, whatsapp, website, linkedin, instagram,
		continent, country, state, city, address, sector, subsector, size,
		is_importer, is_exporter, is_distributor, is_manufacturer, is_retailer, is_wholesaler,
		responsible_name, responsible_title, quality, active, created_at, updated_at
	) VALUES (
		:name, :trade_name, :tax_id, :email, :phone, :whatsapp, :website, :linkedin, :instagram,
		:continent, :country, :state, :city, :address, :sector, :subsector, :size,
		:is_importer, :is_exporter, :is_distributor, :is_manufacturer, :is_retailer, :is_wholesaler,
		:responsible_name, :responsible_title, :quality, :active, :created_at, :updated_at
	) RETURNING id`, c)
	if err != nil {
		return nil, fmt.Errorf("failed to bind company insert: %w", err)
	}

	if err := sqlx.GetContext(ctx, r.q, &c.ID, r.q.Rebind(query), args...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.NewConflictError("A company with this email already exists")
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return &c, nil
}
