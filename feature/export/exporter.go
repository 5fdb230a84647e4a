package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Summary reports what an export wrote.
type Summary struct {
	// Written lists the locations of every written file.
	Written []string `json:"written"`
	// Empty lists the tables skipped for having no rows.
	Empty []string `json:"empty"`
}

// Exporter dumps NetBox tables into a sink.
type Exporter struct {
	lister  Lister
	sink    Sink
	formats []string
	logger  *zap.Logger
}

// NewExporter creates an exporter writing every table in each format.
func NewExporter(lister Lister, sink Sink, formats []string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{lister: lister, sink: sink, formats: formats, logger: logger}
}

// Run dumps the tables in order. The first fetch or write error aborts.
func (e *Exporter) Run(ctx context.Context, tables []Table) (*Summary, error) {
	summary := &Summary{}

	for _, t := range tables {
		e.logger.Debug("Fetching table", zap.String("table", t.Name), zap.String("path", t.Path))

		rows, err := Rows(ctx, e.lister, t)
		if err != nil {
			return summary, fmt.Errorf("failed to fetch %s: %w", t.Name, err)
		}
		if len(rows) == 0 {
			e.logger.Info("No data, skipping", zap.String("table", t.Name))
			summary.Empty = append(summary.Empty, t.Name)
			continue
		}

		data := NewDataTable(rows)
		for _, format := range e.formats {
			out, err := data.Render(format)
			if err != nil {
				return summary, fmt.Errorf("failed to render %s as %s: %w", t.Name, format, err)
			}

			name := t.Name + "." + format
			if err := e.sink.Write(ctx, name, out); err != nil {
				return summary, err
			}
			e.logger.Info("Wrote table",
				zap.String("table", t.Name),
				zap.String("location", e.sink.Location(name)),
				zap.Int("rows", data.Len()),
			)
			summary.Written = append(summary.Written, e.sink.Location(name))
		}
	}

	return summary, nil
}
