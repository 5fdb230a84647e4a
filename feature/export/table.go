package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	"ganeti-netbox-sync/core/utils"

	"github.com/goccy/go-yaml"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatCSV, FormatJSON, FormatYAML}

// DataTable is a list of rows renderable in every output format.
type DataTable struct {
	rows []map[string]any
}

// NewDataTable wraps rows.
func NewDataTable(rows []map[string]any) *DataTable {
	return &DataTable{rows: rows}
}

// Len returns the number of rows.
func (d *DataTable) Len() int {
	return len(d.rows)
}

// Columns returns the sorted union of the row keys.
func (d *DataTable) Columns() []string {
	set := make(map[string]struct{})
	for _, row := range d.rows {
		for k := range row {
			set[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(set))
	for k := range set {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// CSV renders a header row followed by one line per row. Missing values are
// empty, nested values are written as JSON.
func (d *DataTable) CSV() ([]byte, error) {
	cols := d.Columns()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cols); err != nil {
		return nil, err
	}
	record := make([]string, len(cols))
	for _, row := range d.rows {
		for i, col := range cols {
			record[i] = utils.ToString(row[col])
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// JSON renders the rows as a JSON array.
func (d *DataTable) JSON() ([]byte, error) {
	return json.Marshal(d.rows)
}

// YAML renders the rows as a YAML sequence.
func (d *DataTable) YAML() ([]byte, error) {
	return yaml.MarshalWithOptions(d.rows, yaml.Indent(2), yaml.IndentSequence(false))
}

// Render renders the table in format.
func (d *DataTable) Render(format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return d.CSV()
	case FormatJSON:
		return d.JSON()
	case FormatYAML:
		return d.YAML()
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// ParseFormats validates a comma separated format list.
func ParseFormats(list []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	for _, f := range list {
		switch f {
		case FormatCSV, FormatJSON, FormatYAML:
		default:
			return nil, fmt.Errorf("format must be one of csv, json, yaml: got %q", f)
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no output format given")
	}
	return out, nil
}
