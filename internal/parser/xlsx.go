package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxReader struct{}

func (xlsxReader) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Read loads the selected sheet. Cell values are read raw so date cells
// arrive as day serials; Records.SerialDates tells the loader to expect that.
func (xlsxReader) Read(r io.Reader, opt Options) (*Records, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Records{SerialDates: true}, nil
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook.\nAvailable sheets: %s",
				opt.Sheet, strings.Join(sheets, ", "))
		}
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	// GetRows omits trailing empty rows but keeps blank ones in between.
	var header []string
	var data [][]string
	for _, row := range rows {
		if header == nil {
			if isBlank(row) {
				continue
			}
			header = row
			continue
		}
		if isBlank(row) {
			continue
		}
		data = append(data, row)
	}
	return &Records{Header: header, Rows: normalize(header, data), SerialDates: true}, nil
}

// legacyReader rejects binary spreadsheet formats with a clear message.
type legacyReader struct{}

func (legacyReader) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xls") || strings.HasSuffix(name, ".ods")
}

func (legacyReader) Read(_ io.Reader, _ Options) (*Records, error) {
	return nil, fmt.Errorf("%w: save the workbook as .xlsx or .csv", ErrUnsupported)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
