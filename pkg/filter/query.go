package filter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/easyprospect/api/pkg/domain"
)

var validate = validator.New()

// Query parameter names. The second name of each pair is the legacy alias
// still sent by older clients.
var (
	searchParams       = []string{"search", "busca"}
	continentParams    = []string{"continents", "continentes"}
	countryParams      = []string{"countries", "paises"}
	stateParams        = []string{"states", "estados"}
	sectorParams       = []string{"sectors", "setores"}
	sizeParams         = []string{"sizes", "portes"}
	importerParams     = []string{"is_importer", "isImportador"}
	exporterParams     = []string{"is_exporter", "isExportador"}
	distributorParams  = []string{"is_distributor", "isDistribuidor"}
	manufacturerParams = []string{"is_manufacturer", "isFabricante"}
	retailerParams     = []string{"is_retailer", "isVarejo"}
	wholesalerParams   = []string{"is_wholesaler", "isAtacado"}
)

// ParseQuery builds criteria from URL query parameters. Sets are
// comma-separated and flags are set only by the literal value "true".
func ParseQuery(q url.Values) (Criteria, error) {
	c := Criteria{
		Search:         first(q, searchParams),
		Continents:     splitList(first(q, continentParams)),
		Countries:      splitList(first(q, countryParams)),
		States:         splitList(first(q, stateParams)),
		Sectors:        splitList(first(q, sectorParams)),
		Sizes:          splitList(first(q, sizeParams)),
		IsImporter:     first(q, importerParams) == "true",
		IsExporter:     first(q, exporterParams) == "true",
		IsDistributor:  first(q, distributorParams) == "true",
		IsManufacturer: first(q, manufacturerParams) == "true",
		IsRetailer:     first(q, retailerParams) == "true",
		IsWholesaler:   first(q, wholesalerParams) == "true",
	}

	if err := Validate(c); err != nil {
		return Criteria{}, err
	}
	return c.Normalize(), nil
}

// Validate checks the size limits on c
func Validate(c Criteria) error {
	if err := validate.Struct(c); err != nil {
		return domain.NewValidationError(fmt.Sprintf("invalid filters: %v", err))
	}
	return nil
}

func first(q url.Values, names []string) string {
	for _, name := range names {
		if v := q.Get(name); v != "" {
			return v
		}
	}
	return ""
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return normalizeSet(strings.Split(raw, ","))
}
