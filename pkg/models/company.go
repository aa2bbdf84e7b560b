package models

import "time"

// Company is one record of the marketplace dataset
type Company struct {
	ID               int       `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	TradeName        string    `db:"trade_name" json:"trade_name,omitempty"`
	TaxID            string    `db:"tax_id" json:"tax_id,omitempty"`
	Email            string    `db:"email" json:"email"`
	Phone            string    `db:"phone" json:"phone"`
	WhatsApp         string    `db:"whatsapp" json:"whatsapp,omitempty"`
	Website          string    `db:"website" json:"website,omitempty"`
	LinkedIn         string    `db:"linkedin" json:"linkedin,omitempty"`
	Instagram        string    `db:"instagram" json:"instagram,omitempty"`
	Continent        string    `db:"continent" json:"continent"`
	Country          string    `db:"country" json:"country"`
	State            string    `db:"state" json:"state,omitempty"`
	City             string    `db:"city" json:"city"`
	Address          string    `db:"address" json:"address,omitempty"`
	Sector           string    `db:"sector" json:"sector"`
	Subsector        string    `db:"subsector" json:"subsector,omitempty"`
	Size             string    `db:"size" json:"size,omitempty"`
	IsImporter       bool      `db:"is_importer" json:"is_importer"`
	IsExporter       bool      `db:"is_exporter" json:"is_exporter"`
	IsDistributor    bool      `db:"is_distributor" json:"is_distributor"`
	IsManufacturer   bool      `db:"is_manufacturer" json:"is_manufacturer"`
	IsRetailer       bool      `db:"is_retailer" json:"is_retailer"`
	IsWholesaler     bool      `db:"is_wholesaler" json:"is_wholesaler"`
	ResponsibleName  string    `db:"responsible_name" json:"responsible_name,omitempty"`
	ResponsibleTitle string    `db:"responsible_title" json:"responsible_title,omitempty"`
	Quality          int       `db:"quality" json:"quality"`
	Active           bool      `db:"active" json:"active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// CreateCompanyRequest is the admin payload for adding a record to the dataset
type CreateCompanyRequest struct {
	Name             string `json:"name" validate:"required,max=255"`
	TradeName        string `json:"trade_name" validate:"max=255"`
	TaxID            string `json:"tax_id" validate:"max=32"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone" validate:"max=32"`
	WhatsApp         string `json:"whatsapp" validate:"max=32"`
	Website          string `json:"website" validate:"omitempty,url"`
	LinkedIn         string `json:"linkedin"`
	Instagram        string `json:"instagram"`
	Continent        string `json:"continent" validate:"required"`
	Country          string `json:"country" validate:"required"`
	State            string `json:"state"`
	City             string `json:"city"`
	Address          string `json:"address"`
	Sector           string `json:"sector" validate:"required"`
	Subsector        string `json:"subsector"`
	Size             string `json:"size"`
	IsImporter       bool   `json:"is_importer"`
	IsExporter       bool   `json:"is_exporter"`
	IsDistributor    bool   `json:"is_distributor"`
	IsManufacturer   bool   `json:"is_manufacturer"`
	IsRetailer       bool   `json:"is_retailer"`
	IsWholesaler     bool   `json:"is_wholesaler"`
	ResponsibleName  string `json:"responsible_name"`
	ResponsibleTitle string `json:"responsible_title"`
	Quality          int    `json:"quality" validate:"min=0,max=100"`
}

// CountBucket is one group of a stats aggregation
type CountBucket struct {
	Value string `db:"value" json:"value"`
	Count int    `db:"count" json:"count"`
}

// BusinessTypeCounts counts active records per business-type flag
type BusinessTypeCounts struct {
	Importers     int `db:"importers" json:"importers"`
	Exporters     int `db:"exporters" json:"exporters"`
	Distributors  int `db:"distributors" json:"distributors"`
	Manufacturers int `db:"manufacturers" json:"manufacturers"`
	Retailers     int `db:"retailers" json:"retailers"`
	Wholesalers   int `db:"wholesalers" json:"wholesalers"`
}

// CompanyStats summarizes the active dataset
type CompanyStats struct {
	Total         int                `json:"total"`
	BySector      []CountBucket      `json:"by_sector"`
	ByCountry     []CountBucket      `json:"by_country"`
	ByContinent   []CountBucket      `json:"by_continent"`
	ByBrazilState []CountBucket      `json:"by_brazil_state"`
	BySize        []CountBucket      `json:"by_size"`
	BusinessTypes BusinessTypeCounts `json:"business_types"`
}

// CompanySearchResponse is a page of redacted records plus the quote for the whole filter
type CompanySearchResponse struct {
	Data            []Company      `json:"data"`
	Pagination      PaginationInfo `json:"pagination"`
	Total           int            `json:"total"`
	PricePerContact float64        `json:"price_per_contact"`
	TotalPrice      float64        `json:"total_price"`
	CreditsNeeded   int            `json:"credits_needed"`
}

// QuoteResponse is returned by count-only searches
type QuoteResponse struct {
	Total           int     `json:"total"`
	PricePerContact float64 `json:"price_per_contact"`
	TotalPrice      float64 `json:"total_price"`
	CreditsNeeded   int     `json:"credits_needed"`
}
