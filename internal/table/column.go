// Package table implements the generic searchable, sortable table view used by
// every console page.
//
// The pure parts (Filter, Formatter.Sort, Formatter.CellText) are independent
// of Bubble Tea so they can be reasoned about and tested in isolation; Model
// wraps them in an interactive component.
//
// The displayed sequence is always sort(filter(records)). Records and columns
// belong to the caller and are replaced wholesale; the table never keeps a
// private copy of a record.
package table

// Record is one row of data: an opaque mapping from field name to value.
// Values are strings, numbers, booleans, nil, or nested structures as decoded
// from JSON. Identity is positional.
type Record map[string]any

// RenderFunc produces the displayable text of a cell. It must be pure and must
// not panic for any value the column can hold.
type RenderFunc func(value any, rec Record) string

// Column describes one presented field.
type Column struct {
	Key   string // field name in Record
	Title string

	// Render overrides the default typed rendering. Its output may carry
	// terminal styling; search strips it.
	Render RenderFunc

	// SearchValue, when set, supplies the text matched by the search box
	// instead of the rendered cell.
	SearchValue RenderFunc

	Sortable bool
}

// statusTitle is the column title whose raw value is searched even when the
// column has a renderer, so that badge labels do not leak into matches.
const statusTitle = "Status"

// indexOf returns the position of the column with key, or -1.
func indexOf(cols []Column, key string) int {
	for i, c := range cols {
		if c.Key == key {
			return i
		}
	}
	return -1
}
