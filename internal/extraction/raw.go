package extraction

// Raw types mirror the extraction service's native output shape. They exist
// only at the adapter boundary; everything downstream consumes the canonical
// record produced by Normalize.

type RawResult struct {
	Content   string        `json:"content"`
	Pages     []RawPage     `json:"pages"`
	Tables    []RawTable    `json:"tables,omitempty"`
	KeyValues []RawKeyValue `json:"keyValuePairs,omitempty"`
	Entities  []RawEntity   `json:"entities,omitempty"`
	Documents []RawDocument `json:"documents,omitempty"`
}

type RawPage struct {
	Number  int    `json:"pageNumber"`
	Content string `json:"content,omitempty"`
}

type RawTable struct {
	RowCount int       `json:"rowCount"`
	ColCount int       `json:"columnCount"`
	Cells    []RawCell `json:"cells"`
}

type RawCell struct {
	RowIndex int    `json:"rowIndex"`
	ColIndex int    `json:"columnIndex"`
	Content  string `json:"content"`
}

type RawKeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

type RawEntity struct {
	Category   string  `json:"category"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
}

// RawDocument carries the document-type-specific field map for invoice and
// receipt profiles. Any field may be absent.
type RawDocument struct {
	DocType string              `json:"docType"`
	Fields  map[string]RawField `json:"fields"`
}

type RawField struct {
	Text   string     `json:"text,omitempty"`
	Number *float64   `json:"number,omitempty"`
	Date   string     `json:"date,omitempty"`
	Items  []RawItem  `json:"items,omitempty"`
}

type RawItem struct {
	Fields map[string]RawField `json:"fields"`
}
