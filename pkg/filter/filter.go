// Package filter turns user-facing search criteria into a SQL predicate over
// the companies table.
package filter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Criteria is the set of filters a user applies to the company dataset.
// An empty set means the dimension is not restricted.
type Criteria struct {
	Search     string   `json:"search,omitempty" validate:"max=200"`
	Continents []string `json:"continents,omitempty" validate:"max=50,dive,max=100"`
	Countries  []string `json:"countries,omitempty" validate:"max=50,dive,max=100"`
	States     []string `json:"states,omitempty" validate:"max=50,dive,max=100"`
	Sectors    []string `json:"sectors,omitempty" validate:"max=50,dive,max=100"`
	Sizes      []string `json:"sizes,omitempty" validate:"max=50,dive,max=100"`

	IsImporter     bool `json:"is_importer,omitempty"`
	IsExporter     bool `json:"is_exporter,omitempty"`
	IsDistributor  bool `json:"is_distributor,omitempty"`
	IsManufacturer bool `json:"is_manufacturer,omitempty"`
	IsRetailer     bool `json:"is_retailer,omitempty"`
	IsWholesaler   bool `json:"is_wholesaler,omitempty"`
}

// Predicate is a WHERE clause with "?" placeholders and its arguments.
// Callers rebind the final query for their driver.
type Predicate struct {
	Where string
	Args  []any
}

var searchColumns = []string{"name", "trade_name", "email", "city"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Compile builds the predicate for c. Inactive records are always excluded.
func Compile(c Criteria) (Predicate, error) {
	c = c.Normalize()

	clauses := []string{"active = ?"}
	args := []any{true}

	if c.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(c.Search)) + "%"
		ors := make([]string, 0, len(searchColumns))
		for _, col := range searchColumns {
			ors = append(ors, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col))
			args = append(args, pattern)
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	sets := []struct {
		column string
		values []string
	}{
		{"continent", c.Continents},
		{"country", c.Countries},
		{"state", c.States},
		{"sector", c.Sectors},
		{"size", c.Sizes},
	}
	for _, s := range sets {
		if len(s.values) == 0 {
			continue
		}
		clauses = append(clauses, s.column+" IN (?)")
		args = append(args, s.values)
	}

	flags := []struct {
		column string
		on     bool
	}{
		{"is_importer", c.IsImporter},
		{"is_exporter", c.IsExporter},
		{"is_distributor", c.IsDistributor},
		{"is_manufacturer", c.IsManufacturer},
		{"is_retailer", c.IsRetailer},
		{"is_wholesaler", c.IsWholesaler},
	}
	for _, f := range flags {
		if f.on {
			clauses = append(clauses, f.column+" = ?")
			args = append(args, true)
		}
	}

	where, expanded, err := sqlx.In(strings.Join(clauses, " AND "), args...)
	if err != nil {
		return Predicate{}, fmt.Errorf("failed to expand filter arguments: %w", err)
	}
	return Predicate{Where: where, Args: expanded}, nil
}

// Normalize trims every value, drops blanks and duplicates and sorts the sets,
// so equal filters compare and hash equally.
func (c Criteria) Normalize() Criteria {
	c.Search = strings.TrimSpace(c.Search)
	c.Continents = normalizeSet(c.Continents)
	c.Countries = normalizeSet(c.Countries)
	c.States = normalizeSet(c.States)
	c.Sectors = normalizeSet(c.Sectors)
	c.Sizes = normalizeSet(c.Sizes)
	return c
}

func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// IsEmpty reports whether c restricts nothing beyond the active flag
func (c Criteria) IsEmpty() bool {
	n := c.Normalize()
	return n.Search == "" &&
		len(n.Continents) == 0 && len(n.Countries) == 0 && len(n.States) == 0 &&
		len(n.Sectors) == 0 && len(n.Sizes) == 0 &&
		!n.IsImporter && !n.IsExporter && !n.IsDistributor &&
		!n.IsManufacturer && !n.IsRetailer && !n.IsWholesaler
}

// JSON returns the normalized criteria as JSON, as stored on download records
func (c Criteria) JSON() string {
	b, err := json.Marshal(c.Normalize())
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Key returns a stable hash of the normalized criteria, used for cache keys
func (c Criteria) Key() string {
	sum := sha256.Sum256([]byte(c.JSON()))
	return hex.EncodeToString(sum[:16])
}
