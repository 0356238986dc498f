package timeseries

// RawTable is an untyped, column-ordered table as ingested from a source
// API. Bronze persists it verbatim; the normalizer turns it into a Series.
// Cell values are kept as strings until normalization so that malformed
// source data survives the bronze layer unchanged.
type RawTable struct {
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether the table declares the named column.
func (t *RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddRow appends a row, registering any new column names in declaration
// order.
func (t *RawTable) AddRow(row map[string]string) {
	for k := range row {
		if !t.HasColumn(k) {
			t.Columns = append(t.Columns, k)
		}
	}
	t.Rows = append(t.Rows, row)
}
