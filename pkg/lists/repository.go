// Package lists stores the admin-curated bundles sold at a fixed price.
package lists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/easyprospect/api/pkg/database"
	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/models"
)

// Tag kinds stored in list_values
const (
	KindSegment       = "segment"
	KindRegion        = "region"
	KindCountry       = "country"
	KindIncludedField = "included_field"
)

const listColumns = `id, name, description, quantity, price, discount_price, validation_rate,
	file_url, sample_url, image_url, featured, active, created_at, updated_at`

// Repository persists lists and their tag rows
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a list repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Search returns lists matching s, featured first then newest. Tag filters
// are EXISTS sub-queries over list_values, so matching happens in the database.
func (r *Repository) Search(ctx context.Context, s models.ListSearch) ([]models.List, error) {
	var (
		where []string
		args  []interface{}
	)
	if !s.IncludeInactive {
		where = append(where, "active = ?")
		args = append(args, true)
	}
	for _, tag := range []struct{ kind, value string }{
		{KindSegment, s.Segment},
		{KindRegion, s.Region},
		{KindCountry, s.Country},
	} {
		if tag.value == "" {
			continue
		}
		where = append(where, `EXISTS (SELECT 1 FROM list_values v
			WHERE v.list_id = lists.id AND v.kind = ? AND LOWER(v.value) = LOWER(?))`)
		args = append(args, tag.kind, tag.value)
	}
	if term := strings.TrimSpace(s.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if s.PriceMin != nil {
		where = append(where, "price >= ?")
		args = append(args, s.PriceMin.StringFixed(2))
	}
	if s.PriceMax != nil {
		where = append(where, "price <= ?")
		args = append(args, s.PriceMax.StringFixed(2))
	}
	if s.Featured != nil {
		where = append(where, "featured = ?")
		args = append(args, *s.Featured)
	}

	query := "SELECT " + listColumns + " FROM lists"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY featured DESC, created_at DESC, id DESC"

	out := []models.List{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to search lists: %w", err)
	}
	if err := r.loadValues(ctx, r.db, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one list with its tags
func (r *Repository) GetByID(ctx context.Context, id int) (*models.List, error) {
	return r.get(ctx, r.db, id)
}

func (r *Repository) get(ctx context.Context, q sqlx.ExtContext, id int) (*models.List, error) {
	var l models.List
	err := sqlx.GetContext(ctx, q, &l, q.Rebind("SELECT "+listColumns+" FROM lists WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("list")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list %d: %w", id, err)
	}

	one := []models.List{l}
	if err := r.loadValues(ctx, q, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// Create inserts l and its tags, returning the stored list
func (r *Repository) Create(ctx context.Context, l models.List) (*models.List, error) {
	var created *models.List
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := tx.BindNamed(`INSERT INTO lists (
			name, description, quantity, price, discount_price, validation_rate,
			file_url, sample_url, image_url, featured, active, created_at, updated_at
		) VALUES (
			:name, :description, :quantity, :price, :discount_price, :validation_rate,
			:file_url, :sample_url, :image_url, :featured, :active, :created_at, :updated_at
		) RETURNING id`, l)
		if err != nil {
			return fmt.Errorf("failed to bind list insert: %w", err)
		}

		var id int
		if err := tx.GetContext(ctx, &id, query, args...); err != nil {
			return fmt.Errorf("failed to insert list: %w", err)
		}
		if err := writeValues(ctx, tx, id, l); err != nil {
			return err
		}

		created, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update overwrites the list row and replaces its tags
func (r *Repository) Update(ctx context.Context, l models.List) (*models.List, error) {
	var updated *models.List
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := tx.BindNamed(`UPDATE lists SET
			name = :name, description = :description, quantity = :quantity, price = :price,
			discount_price = :discount_price, validation_rate = :validation_rate,
			file_url = :file_url, sample_url = :sample_url, image_url = :image_url,
			featured = :featured, active = :active, updated_at = :updated_at
			WHERE id = :id`, l)
		if err != nil {
			return fmt.Errorf("failed to bind list update: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update list %d: %w", l.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NewNotFoundError("list")
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM list_values WHERE list_id = ?"), l.ID); err != nil {
			return fmt.Errorf("failed to clear list values: %w", err)
		}
		if err := writeValues(ctx, tx, l.ID, l); err != nil {
			return err
		}

		updated, err = r.get(ctx, tx, l.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a list. Its tags go with it.
func (r *Repository) Delete(ctx context.Context, id int) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM list_values WHERE list_id = ?"), id); err != nil {
			return fmt.Errorf("failed to delete list values: %w", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM lists WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("failed to delete list %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NewNotFoundError("list")
		}
		return nil
	})
}

func writeValues(ctx context.Context, tx *sqlx.Tx, listID int, l models.List) error {
	insert := tx.Rebind("INSERT INTO list_values (list_id, kind, position, value) VALUES (?, ?, ?, ?)")
	for _, group := range []struct {
		kind   string
		values []string
	}{
		{KindSegment, l.Segments},
		{KindRegion, l.Regions},
		{KindCountry, l.Countries},
		{KindIncludedField, l.IncludedFields},
	} {
		for pos, v := range group.values {
			if _, err := tx.ExecContext(ctx, insert, listID, group.kind, pos, v); err != nil {
				return fmt.Errorf("failed to write list %s: %w", group.kind, err)
			}
		}
	}
	return nil
}

// loadValues fills the tag slices of ls in one query
func (r *Repository) loadValues(ctx context.Context, q sqlx.ExtContext, ls []models.List) error {
	if len(ls) == 0 {
		return nil
	}

	ids := make([]int, len(ls))
	index := make(map[int]*models.List, len(ls))
	for i := range ls {
		ids[i] = ls[i].ID
		index[ls[i].ID] = &ls[i]
		ls[i].Segments = []string{}
		ls[i].Regions = []string{}
		ls[i].Countries = []string{}
		ls[i].IncludedFields = []string{}
	}

	query, args, err := sqlx.In(
		"SELECT list_id, kind, value FROM list_values WHERE list_id IN (?) ORDER BY list_id, kind, position", ids)
	if err != nil {
		return fmt.Errorf("failed to expand list ids: %w", err)
	}

	var rows []struct {
		ListID int    `db:"list_id"`
		Kind   string `db:"kind"`
		Value  string `db:"value"`
	}
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load list values: %w", err)
	}

	for _, row := range rows {
		l := index[row.ListID]
		switch row.Kind {
		case KindSegment:
			l.Segments = append(l.Segments, row.Value)
		case KindRegion:
			l.Regions = append(l.Regions, row.Value)
		case KindCountry:
			l.Countries = append(l.Countries, row.Value)
		case KindIncludedField:
			l.IncludedFields = append(l.IncludedFields, row.Value)
		}
	}
	return nil
}
