package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Records is a header row plus data rows read from a tabular file.
type Records struct {
	Name   string
	Header []string
	Rows   [][]string
	// SerialDates is set when date cells may hold spreadsheet day serials.
	SerialDates bool
}

// Options controls how raw records are read.
type Options struct {
	// Delimiter for CSV. If 0, sniffs among ',', ';', '\t'.
	Delimiter rune
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
}

// Reader reads one tabular format.
type Reader interface {
	CanParse(filename string) bool
	Read(r io.Reader, opt Options) (*Records, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(p Reader) {
	registry = append(registry, p)
}

// ReadRecords selects a reader based on filename and returns the raw records.
// Unknown extensions are read as CSV.
func ReadRecords(name string, r io.Reader, opt Options) (*Records, error) {
	var rd Reader = csvReader{}
	for _, p := range registry {
		if p.CanParse(name) {
			rd = p
			break
		}
	}
	recs, err := rd.Read(r, opt)
	if err != nil {
		return nil, err
	}
	recs.Name = filepath.Base(name)
	return recs, nil
}

// ReadFile opens path and reads its records.
func ReadFile(path string, opt Options) (*Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ReadRecords(path, bytes.NewReader(data), opt)
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
	Register(legacyReader{})
}

// ErrUnsupported indicates a format is not supported yet.
var ErrUnsupported = errors.New("unsupported table format")

// normalize pads short rows to the header width.
func normalize(header []string, rows [][]string) [][]string {
	ncol := len(header)
	for i, rec := range rows {
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rows[i] = tmp
		}
	}
	return rows
}
