package introspect

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Render.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Render writes cols to w. JSON output matches the indented SHOW COLUMNS
// dump operators are used to.
func Render(w io.Writer, format string, cols []Column) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cols)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cols); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		t := tablewriter.NewWriter(w)
		t.SetHeader([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
		t.SetAutoFormatHeaders(false)
		for _, c := range cols {
			def := "NULL"
			if c.Default != nil {
				def = *c.Default
			}
			t.Append([]string{c.Field, c.Type, c.Null, c.Key, def, c.Extra})
		}
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// RenderRows writes a generic result set as a table.
func RenderRows(w io.Writer, columns []string, rows [][]any) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(columns)
	t.SetAutoFormatHeaders(false)
	for _, row := range rows {
		line := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				line[i] = "NULL"
				continue
			}
			line[i] = fmt.Sprint(v)
		}
		t.Append(line)
	}
	t.Render()
}
