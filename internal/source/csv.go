// SPDX-License-Identifier: MIT
/*
Package source builds restartable port.Source values from recorded signals:
numeric CSV columns, PCM WAV channels, and frame sources that cut a scalar
signal into device frames for replay through the simulator.
*/
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"algcore/internal/port"
)

// Number is the set of sample types a recorded signal can be loaded as.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrEmptyFile      = errors.New("file has no rows")
)

// CSVColumn loads the column with header name from a CSV file whose first
// row is a header.
func CSVColumn[T Number](path, name string) (*port.SliceSource[T], error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	idx := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w: %q", path, ErrColumnNotFound, name)
	}
	return parseColumn[T](path, rows[1:], idx, 2)
}

// CSVIndex loads the column at position idx from a CSV file without a header.
func CSVIndex[T Number](path string, idx int) (*port.SliceSource[T], error) {
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w: index %d", path, ErrColumnNotFound, idx)
	}
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	return parseColumn[T](path, rows, idx, 1)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
}

// parseColumn converts column idx of rows. firstLine is the 1-based file
// line of rows[0], used in error messages.
func parseColumn[T Number](path string, rows [][]string, idx, firstLine int) (*port.SliceSource[T], error) {
	values := make([]T, 0, len(rows))
	for i, rec := range rows {
		if idx >= len(rec) {
			return nil, fmt.Errorf("%s:%d: %w: index %d", path, firstLine+i, ErrColumnNotFound, idx)
		}
		cell := strings.TrimSpace(rec[idx])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, firstLine+i, err)
		}
		values = append(values, T(v))
	}
	return port.FromSlice(values), nil
}
