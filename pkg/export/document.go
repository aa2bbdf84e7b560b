package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/easyprospect/api/pkg/filter"
	"github.com/easyprospect/api/pkg/models"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html.tmpl").
		Funcs(template.FuncMap{
			"dash":     dash,
			"location": location,
		}).
		ParseFS(templateFS, "templates/report.html.tmpl"),
)

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func location(city, state string) string {
	switch {
	case city != "" && state != "":
		return city + "/" + state
	case city != "":
		return city
	case state != "":
		return state
	}
	return "-"
}

type filterLine struct {
	Label string
	Value string
}

// describeFilters lists the applied filters for the report summary
func describeFilters(c filter.Criteria) []filterLine {
	c = c.Normalize()
	var lines []filterLine
	add := func(label string, values []string) {
		if len(values) > 0 {
			lines = append(lines, filterLine{label, strings.Join(values, ", ")})
		}
	}

	if c.Search != "" {
		lines = append(lines, filterLine{"Search", c.Search})
	}
	add("Continents", c.Continents)
	add("Countries", c.Countries)
	add("States", c.States)
	add("Sectors", c.Sectors)
	add("Sizes", c.Sizes)

	var types []string
	for _, t := range []struct {
		on   bool
		name string
	}{
		{c.IsImporter, "Importer"},
		{c.IsExporter, "Exporter"},
		{c.IsDistributor, "Distributor"},
		{c.IsManufacturer, "Manufacturer"},
		{c.IsRetailer, "Retailer"},
		{c.IsWholesaler, "Wholesaler"},
	} {
		if t.on {
			types = append(types, t.name)
		}
	}
	add("Business types", types)
	return lines
}

func renderDocument(r report) ([]byte, error) {
	data := struct {
		Rows        []models.Company
		Total       int
		Preview     bool
		GeneratedAt time.Time
		Filters     []filterLine
	}{
		Rows:        r.Rows,
		Total:       r.Total,
		Preview:     r.Preview,
		GeneratedAt: r.GeneratedAt,
		Filters:     describeFilters(r.Criteria),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return buf.Bytes(), nil
}
