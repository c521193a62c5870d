package runner

import "time"

// ResultSet is one set of rows returned by a statement.
type ResultSet struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// Result is the outcome of one successful invocation. Row-returning scripts
// fill Sets; others report RowsAffected where the driver provides it.
type Result struct {
	Script       string        `json:"script" yaml:"script"`
	Checksum     string        `json:"checksum" yaml:"checksum"`
	Sets         []ResultSet   `json:"sets,omitempty" yaml:"sets,omitempty"`
	RowsAffected int64         `json:"rows_affected" yaml:"rows_affected"`
	Skipped      bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
}

// Rows returns the rows of the first result set, or nil.
func (r *Result) Rows() [][]any {
	if r == nil || len(r.Sets) == 0 {
		return nil
	}
	return r.Sets[0].Rows
}

// Columns returns the column names of the first result set, or nil.
func (r *Result) Columns() []string {
	if r == nil || len(r.Sets) == 0 {
		return nil
	}
	return r.Sets[0].Columns
}

// Records returns the first result set as column-keyed maps, in row order.
func (r *Result) Records() []map[string]any {
	cols := r.Columns()
	rows := r.Rows()
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]any, len(cols))
		for i, c := range cols {
			if i < len(row) {
				rec[c] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}
