package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"harvest/internal/domain"
	"harvest/internal/port"
)

// Header is the column order of faculty CSV files.
var Header = []string{"first_name", "last_name", "university", "department", "grad_school", "grad_degree", "profile_url"}

// CSVSink writes faculty records as CSV with a header row.
type CSVSink struct {
	w      *csv.Writer
	closer io.Closer
	header bool
}

var _ port.FacultySink = (*CSVSink)(nil)

func NewCSVSink(w io.Writer) *CSVSink {
	s := &CSVSink{w: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// CreateCSV creates (or truncates) path and returns a sink writing to it.
func CreateCSV(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return NewCSVSink(f), nil
}

func (s *CSVSink) Write(ctx context.Context, records []domain.Faculty) error {
	if !s.header {
		if err := s.w.Write(Header); err != nil {
			return err
		}
		s.header = true
	}
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := []string{r.FirstName, r.LastName, r.University, r.Department, r.GradSchool, r.GradDegree, r.ProfileURL}
		if err := s.w.Write(row); err != nil {
			return err
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVSink) Close() error {
	if !s.header {
		if err := s.w.Write(Header); err != nil {
			return err
		}
		s.header = true
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// ReadCSV loads faculty records written by CSVSink.
func ReadCSV(r io.Reader) ([]domain.Faculty, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]domain.Faculty, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, domain.Faculty{
			FirstName:  row[0],
			LastName:   row[1],
			University: row[2],
			Department: row[3],
			GradSchool: row[4],
			GradDegree: row[5],
			ProfileURL: row[6],
		})
	}
	return records, nil
}
