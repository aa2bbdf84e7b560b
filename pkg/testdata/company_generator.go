package testdata

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jmoiron/sqlx"

	"github.com/easyprospect/api/pkg/models"
)

// CompanyGeneratorConfig configures generated company records
type CompanyGeneratorConfig struct {
	Count      int
	Continent  string
	Country    string
	States     []string
	Sectors    []string
	Sizes      []string
	MinQuality int // 0-100
	MaxQuality int // 0-100
	Inactive   bool
	Seed       int64
}

// LocationData maps countries to continent and a few states
var LocationData = map[string]struct {
	Continent string
	States    []string
}{
	"Brazil":        {"South America", []string{"SP", "RJ", "MG", "PR", "RS"}},
	"Chile":         {"South America", []string{"Santiago", "Valparaíso"}},
	"Germany":       {"Europe", []string{"Bavaria", "Berlin", "Hesse"}},
	"Portugal":      {"Europe", []string{"Lisboa", "Porto"}},
	"United States": {"North America", []string{"CA", "NY", "TX"}},
	"Japan":         {"Asia", []string{"Tokyo", "Osaka"}},
}

var defaultSectors = []string{"Agribusiness", "Retail", "Logistics", "Technology", "Food & Beverage", "Textile"}

var defaultSizes = []string{"Micro", "Small", "Medium", "Large"}

// emailSeq keeps generated emails unique across calls sharing a seed
var emailSeq atomic.Int64

// GenerateCompanies builds cfg.Count fake records. The same seed gives the same records.
func GenerateCompanies(cfg CompanyGeneratorConfig) []models.Company {
	faker := gofakeit.New(cfg.Seed)

	if cfg.Country == "" {
		cfg.Country = "Brazil"
	}
	loc := LocationData[cfg.Country]
	if cfg.Continent == "" {
		cfg.Continent = loc.Continent
	}
	if len(cfg.States) == 0 {
		cfg.States = loc.States
	}
	if len(cfg.Sectors) == 0 {
		cfg.Sectors = defaultSectors
	}
	if len(cfg.Sizes) == 0 {
		cfg.Sizes = defaultSizes
	}
	if cfg.MaxQuality == 0 {
		cfg.MaxQuality = 100
	}

	now := time.Now().UTC().Truncate(time.Second)
	out := make([]models.Company, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		name := faker.Company()
		state := ""
		if len(cfg.States) > 0 {
			state = cfg.States[faker.Number(0, len(cfg.States)-1)]
		}
		slug := strings.ToLower(strings.Join(strings.Fields(faker.LetterN(6)+" "+name), ""))
		out = append(out, models.Company{
			Name:            name,
			TradeName:       name + " " + faker.CompanySuffix(),
			TaxID:           faker.Numerify("##.###.###/0001-##"),
			Email:           fmt.Sprintf("contact%d@%s", emailSeq.Add(1), faker.DomainName()),
			Phone:           faker.Phone(),
			WhatsApp:        faker.Phone(),
			Website:         "https://" + slug + ".example.com",
			Continent:       cfg.Continent,
			Country:         cfg.Country,
			State:           state,
			City:            faker.City(),
			Address:         faker.Street(),
			Sector:          cfg.Sectors[faker.Number(0, len(cfg.Sectors)-1)],
			Size:            cfg.Sizes[faker.Number(0, len(cfg.Sizes)-1)],
			IsImporter:      faker.Bool(),
			IsExporter:      faker.Bool(),
			IsDistributor:   faker.Bool(),
			IsManufacturer:  faker.Bool(),
			IsRetailer:      faker.Bool(),
			IsWholesaler:    faker.Bool(),
			ResponsibleName: faker.Name(),
			Quality:         faker.Number(cfg.MinQuality, cfg.MaxQuality),
			Active:          !cfg.Inactive,
			CreatedAt:       now,
			UpdatedAt:       now.Add(time.Duration(i) * time.Second),
		})
	}
	return out
}

const insertCompanySQL = `INSERT INTO companies (
	name, trade_name, tax_id, email, phone, whatsapp, website, linkedin, instagram,
	continent, country, state, city, address, sector, subsector, size,
	is_importer, is_exporter, is_distributor, is_manufacturer, is_retailer, is_wholesaler,
	responsible_name, responsible_title, quality, active, created_at, updated_at
) VALUES (
	:name, :trade_name, :tax_id, :email, :phone, :whatsapp, :website, :linkedin, :instagram,
	:continent, :country, :state, :city, :address, :sector, :subsector, :size,
	:is_importer, :is_exporter, :is_distributor, :is_manufacturer, :is_retailer, :is_wholesaler,
	:responsible_name, :responsible_title, :quality, :active, :created_at, :updated_at
)`

// InsertCompanies writes records straight into the companies table and
// returns their ids in insertion order.
func InsertCompanies(ctx context.Context, db *sqlx.DB, companies []models.Company) ([]int, error) {
	ids := make([]int, 0, len(companies))
	for _, c := range companies {
		res, err := db.NamedExecContext(ctx, insertCompanySQL, c)
		if err != nil {
			return nil, fmt.Errorf("failed to insert company %q: %w", c.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, int(id))
	}
	return ids, nil
}
