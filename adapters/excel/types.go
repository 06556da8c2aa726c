package excel

// RawRowData represents one data row as header -> trimmed cell text
type RawRowData map[string]string

// SheetData represents a header row plus data rows read from CSV or XLSX
type SheetData struct {
	Headers []string     // Column headers, trimmed, in file order
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether a header is present (exact match)
func (d *SheetData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}
