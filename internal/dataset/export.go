package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// DefaultExportName is the download filename for filtered data.
const DefaultExportName = "TDR_datos_filtrados.csv"

// WriteCSV writes the table as UTF-8, comma-delimited CSV with a header row,
// columns in table order.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range t.Rows {
		if err := cw.Write(t.Record(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the WriteCSV output as bytes.
func (t *Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
