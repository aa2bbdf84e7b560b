package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StringList decodes either a JSON array of strings or a string holding a
// JSON-encoded array, which is how older clients submit list tags.
type StringList []string

var errStringList = errors.New("expected an array of strings")

// UnmarshalJSON implements json.Unmarshaler
func (s *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = nil
		return nil
	}

	var values []string
	if err := json.Unmarshal(data, &values); err == nil {
		*s = values
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return errStringList
	}
	if strings.TrimSpace(encoded) == "" {
		*s = nil
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return errStringList
	}
	*s = values
	return nil
}

// List is a curated, fixed-price bundle sold as a whole
type List struct {
	ID             int                 `db:"id" json:"id"`
	Name           string              `db:"name" json:"name"`
	Description    string              `db:"description" json:"description"`
	Quantity       int                 `db:"quantity" json:"quantity"`
	Price          decimal.Decimal     `db:"price" json:"price"`
	DiscountPrice  decimal.NullDecimal `db:"discount_price" json:"discount_price"`
	ValidationRate int                 `db:"validation_rate" json:"validation_rate"`
	FileURL        string              `db:"file_url" json:"file_url,omitempty"`
	SampleURL      string              `db:"sample_url" json:"sample_url,omitempty"`
	ImageURL       string              `db:"image_url" json:"image_url,omitempty"`
	Featured       bool                `db:"featured" json:"featured"`
	Active         bool                `db:"active" json:"active"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updated_at"`

	Segments       []string `db:"-" json:"segments"`
	Regions        []string `db:"-" json:"regions"`
	Countries      []string `db:"-" json:"countries"`
	IncludedFields []string `db:"-" json:"included_fields"`

	EffectivePrice decimal.Decimal `db:"-" json:"effective_price"`
}

// ListRequest is the create/update payload for a list
type ListRequest struct {
	Name           string           `json:"name" validate:"required,max=255"`
	Description    string           `json:"description" validate:"max=5000"`
	Quantity       int              `json:"quantity" validate:"min=0"`
	Price          decimal.Decimal  `json:"price"`
	DiscountPrice  *decimal.Decimal `json:"discount_price"`
	ValidationRate *int             `json:"validation_rate" validate:"omitempty,min=0,max=100"`
	FileURL        string           `json:"file_url" validate:"omitempty,url"`
	SampleURL      string           `json:"sample_url" validate:"omitempty,url"`
	ImageURL       string           `json:"image_url" validate:"omitempty,url"`
	Featured       bool             `json:"featured"`
	Active         *bool            `json:"active"`
	Segments       StringList       `json:"segments" validate:"max=50,dive,max=100"`
	Regions        StringList       `json:"regions" validate:"max=50,dive,max=100"`
	Countries      StringList       `json:"countries" validate:"max=50,dive,max=100"`
	IncludedFields StringList       `json:"included_fields" validate:"max=50,dive,max=100"`
}

// ListSearch holds the catalogue filters for lists
type ListSearch struct {
	Segment  string
	Region   string
	Country  string
	Search   string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	Featured *bool
	// IncludeInactive is only honoured for admins
	IncludeInactive bool
}
