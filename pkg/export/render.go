package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/easyprospect/api/pkg/filter"
	"github.com/easyprospect/api/pkg/models"
)

// utf8BOM makes spreadsheet applications detect UTF-8 in CSV files
const utf8BOM = "\ufeff"

var columnHeaders = []string{
	"Name", "Trade Name", "Tax ID", "Email", "Phone", "WhatsApp", "Website",
	"Country", "State", "City", "Address", "Sector", "Subsector", "Size",
	"Responsible", "Title",
	"Importer", "Exporter", "Distributor", "Manufacturer", "Retailer", "Wholesaler",
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func recordFields(c models.Company) []string {
	return []string{
		c.Name, c.TradeName, c.TaxID, c.Email, c.Phone, c.WhatsApp, c.Website,
		c.Country, c.State, c.City, c.Address, c.Sector, c.Subsector, c.Size,
		c.ResponsibleName, c.ResponsibleTitle,
		yesNo(c.IsImporter), yesNo(c.IsExporter), yesNo(c.IsDistributor),
		yesNo(c.IsManufacturer), yesNo(c.IsRetailer), yesNo(c.IsWholesaler),
	}
}

// report is everything a renderer needs
type report struct {
	Rows        []models.Company
	Total       int // matching records, before the cap
	Preview     bool
	Criteria    filter.Criteria
	GeneratedAt time.Time
}

func render(f Format, r report) ([]byte, error) {
	switch f {
	case FormatCSV:
		return renderCSV(r)
	case FormatDocument:
		return renderDocument(r)
	case FormatExcel:
		return renderExcel(r)
	case FormatJSON:
		return renderJSON(r)
	}
	return nil, fmt.Errorf("no renderer for format %q", f)
}

func renderCSV(r report) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(columnHeaders); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, c := range r.Rows {
		if err := w.Write(recordFields(c)); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderJSON(r report) ([]byte, error) {
	payload := struct {
		Total       int              `json:"total"`
		Exported    int              `json:"exported"`
		Preview     bool             `json:"preview"`
		GeneratedAt time.Time        `json:"generated_at"`
		Records     []models.Company `json:"records"`
	}{
		Total:       r.Total,
		Exported:    len(r.Rows),
		Preview:     r.Preview,
		GeneratedAt: r.GeneratedAt,
		Records:     r.Rows,
	}
	if payload.Records == nil {
		payload.Records = []models.Company{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json export: %w", err)
	}
	return data, nil
}

func renderExcel(r report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Companies"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range columnHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, c := range r.Rows {
		for colIdx, value := range recordFields(c) {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(columnHeaders))
	if err != nil {
		return nil, err
	}
	f.SetColWidth(sheetName, "A", lastCol, 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
