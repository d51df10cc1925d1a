package export

// SectionKind distinguishes the two block layouts a Document is made of.
type SectionKind string

const (
	// SectionKeyValue renders as a two column label/value table.
	SectionKeyValue SectionKind = "key_value"
	// SectionLineItems renders as a grid with a header row and an optional totals row.
	SectionLineItems SectionKind = "line_items"
)

// Field is a single label/value pair.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Column describes one line-item column. Width is relative to the other columns.
type Column struct {
	Header string  `json:"header"`
	Width  float64 `json:"width"`
	Align  string  `json:"align,omitempty"`
}

// Section is one block of a Document.
type Section struct {
	Heading string      `json:"heading"`
	Kind    SectionKind `json:"kind"`
	Fields  []Field     `json:"fields,omitempty"`
	Columns []Column    `json:"columns,omitempty"`
	Rows    [][]string  `json:"rows,omitempty"`
	Totals  []string    `json:"totals,omitempty"`
}

// Document is a renderer-agnostic description of a printable page.
type Document struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Sections []Section `json:"sections"`
	Footer   string    `json:"footer,omitempty"`
}

// Dataset returns the line items of s as a flat table.
func (s Section) Dataset() Dataset {
	headers := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		headers[i] = col.Header
	}
	rows := make([][]string, 0, len(s.Rows)+1)
	rows = append(rows, s.Rows...)
	if len(s.Totals) > 0 {
		rows = append(rows, s.Totals)
	}
	return Dataset{Headers: headers, Rows: rows}
}

// FindSection returns the first section with the given heading.
func (d Document) FindSection(heading string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Heading == heading {
			return s, true
		}
	}
	return Section{}, false
}
