package export

import (
	"fmt"
	"strings"
)

// Format names a rendered report type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat normalises a user supplied format. An empty value selects CSV.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatPDF, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Dataset defines tabular export content. Rows are keyed by header unless Keys is set,
// in which case Keys[i] names the row entry rendered under Headers[i].
type Dataset struct {
	Headers []string
	Keys    []string
	Rows    []map[string]string
}

func (d Dataset) record(row map[string]string) []string {
	keys := d.Headers
	if len(d.Keys) == len(d.Headers) {
		keys = d.Keys
	}
	record := make([]string, len(keys))
	for i, key := range keys {
		record[i] = row[key]
	}
	return record
}
