// Package dataset supplies raw restaurant rows to the recommender: from a
// local CSV export or from the Hugging Face datasets server.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cuisine-engine/backend/internal/cleaning"
)

// Source loads a full batch of raw rows.
type Source interface {
	Load(ctx context.Context) ([]cleaning.RawRecord, error)
	Name() string
}

// CSVSource reads rows from a CSV file whose first line is the header.
// Empty cells are treated as missing values.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Name() string {
	return "csv"
}

func (s *CSVSource) Load(ctx context.Context) ([]cleaning.RawRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(ctx, f)
}

// ReadCSV parses CSV data into raw records keyed by header name.
func ReadCSV(ctx context.Context, r io.Reader) ([]cleaning.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := append([]string(nil), header...)

	var rows []cleaning.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}

		row := make(cleaning.RawRecord, len(columns))
		for i, value := range record {
			if i >= len(columns) || value == "" {
				continue
			}
			row[columns[i]] = value
		}
		rows = append(rows, row)
	}

	return rows, nil
}
