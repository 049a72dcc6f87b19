package sink

import (
	"context"

	"harvest/internal/domain"
	"harvest/internal/port"
)

// OpenFunc creates the sink that Lazy writes through.
type OpenFunc func(ctx context.Context) (port.FacultySink, error)

// Lazy opens its sink on the first Write. Until then existing output files
// are left as they are, so a run that fails early does not truncate them.
type Lazy struct {
	open OpenFunc
	sink port.FacultySink
}

var _ port.FacultySink = (*Lazy)(nil)

func NewLazy(open OpenFunc) *Lazy {
	return &Lazy{open: open}
}

func (l *Lazy) Write(ctx context.Context, records []domain.Faculty) error {
	if l.sink == nil {
		s, err := l.open(ctx)
		if err != nil {
			return err
		}
		l.sink = s
	}
	return l.sink.Write(ctx, records)
}

// Opened reports whether the sink has been created.
func (l *Lazy) Opened() bool {
	return l.sink != nil
}

// Close closes the sink if it was opened.
func (l *Lazy) Close() error {
	if l.sink == nil {
		return nil
	}
	return l.sink.Close()
}
