package export

import (
	"fmt"
	"strings"

	"github.com/easyprospect/api/pkg/domain"
)

// Format is an export file format
type Format string

const (
	FormatCSV      Format = "csv"
	FormatDocument Format = "document"
	FormatExcel    Format = "excel"
	FormatJSON     Format = "json"
)

// Row caps. Larger results are truncated without error.
const (
	PreviewCap  = 10
	FullCap     = 1000
	DocumentCap = 100

	// MaxPurchaseIDs bounds the explicit id list of one purchase
	MaxPurchaseIDs = FullCap
)

// ParseFormat accepts a format name, defaulting to CSV when empty. "pdf" and
// "xlsx" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "document", "pdf", "html":
		return FormatDocument, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "json":
		return FormatJSON, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("unsupported export format %q", s))
}

// Cap returns the maximum number of rows one export of this format carries
func (f Format) Cap(preview bool) int {
	if preview {
		return PreviewCap
	}
	if f == FormatDocument {
		return DocumentCap
	}
	return FullCap
}

// ContentType returns the MIME type of the rendered file
func (f Format) ContentType() string {
	switch f {
	case FormatDocument:
		return "text/html; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension returns the file extension without the dot
func (f Format) Extension() string {
	switch f {
	case FormatDocument:
		return "html"
	case FormatExcel:
		return "xlsx"
	case FormatJSON:
		return "json"
	default:
		return "csv"
	}
}
