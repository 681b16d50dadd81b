package dataset

import "strings"

// Table is a parsed CSV upload: a header and rows of raw cells, in file order.
type Table struct {
	Name     string     `json:"name,omitempty"`
	Encoding string     `json:"encoding,omitempty"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
}

// Index returns the position of the named column or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == name {
			return i
		}
	}
	return -1
}

// Missing lists the names from cols that the table lacks, in the order given.
func (t *Table) Missing(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if t.Index(c) < 0 {
			missing = append(missing, c)
		}
	}
	return missing
}

// Has reports whether every named column is present.
func (t *Table) Has(cols ...string) bool {
	return len(t.Missing(cols...)) == 0
}

// Head returns at most n rows. n <= 0 returns every row.
func (t *Table) Head(n int) [][]string {
	if n <= 0 || n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[:n]
}

// Len is the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
