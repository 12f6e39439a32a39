package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// ContentTypeCSV is the media type served for CSV downloads.
const ContentTypeCSV = "text/csv; charset=utf-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct {
	comma rune
	bom   bool
}

// NewCSVExporter builds a CSV exporter. Spreadsheet friendly output uses a
// semicolon separator and a UTF-8 BOM so accented names survive Excel.
func NewCSVExporter(spreadsheet bool) *CSVExporter {
	if spreadsheet {
		return &CSVExporter{comma: ';', bom: true}
	}
	return &CSVExporter{comma: ','}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	if e.bom {
		buf.Write(utf8BOM)
	}
	writer := csv.NewWriter(buf)
	writer.Comma = e.comma
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = neutralise(row[header])
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// neutralise keeps free text such as member names from being evaluated as a
// formula when the file is opened in a spreadsheet.
func neutralise(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + cell
	}
	return cell
}
