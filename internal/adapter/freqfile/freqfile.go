package freqfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"harvest/internal/domain"
)

const Ext = ".csv"

// FileName returns the base name of a frequency file.
func FileName(order int, docID string) string {
	return domain.OrderName(order) + "-" + docID + Ext
}

// CombinedName returns the base name of the aggregate file for an order.
func CombinedName(order int) string {
	return FileName(order, "combined")
}

// Write writes table to dir/name as CSV rows of (gram, count). The directory
// must already exist.
func Write(dir, name string, table domain.FrequencyTable) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrOutputDirMissing, dir)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", domain.ErrOutputDirMissing, dir)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Encode(f, table); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// Encode writes table as CSV to w.
func Encode(w io.Writer, table domain.FrequencyTable) error {
	cw := csv.NewWriter(w)
	for _, f := range table {
		if err := cw.Write([]string{f.Gram.String(), strconv.Itoa(f.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read reads a frequency file written by Write.
func Read(path string) (domain.FrequencyTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses CSV rows of (gram, count).
func Decode(r io.Reader) (domain.FrequencyTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	var table domain.FrequencyTable
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		count, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("invalid count %q for %q: %w", row[1], row[0], err)
		}
		table = append(table, domain.Frequency{
			Gram:  domain.NGram(strings.Fields(row[0])),
			Count: count,
		})
	}
	return table, nil
}
