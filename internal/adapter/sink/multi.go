package sink

import (
	"context"

	"harvest/internal/domain"
	"harvest/internal/port"
)

// Multi fans writes out to several sinks in order.
type Multi []port.FacultySink

func (m Multi) Write(ctx context.Context, records []domain.Faculty) error {
	for _, s := range m {
		if err := s.Write(ctx, records); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
