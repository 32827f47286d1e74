package extraction

import (
	"strings"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
)

// Normalize maps a raw service result into the canonical extraction record.
// Pure function: no I/O, no mutation of the input. Absent optional fields stay
// absent (nil pointers), absent collections become empty ones.
func Normalize(raw *RawResult, profile docmodel.Profile, documentId string) docmodel.CanonicalExtraction {
	canonical := docmodel.CanonicalExtraction{
		DocumentId:    documentId,
		Profile:       profile,
		Content:       raw.Content,
		Pages:         len(raw.Pages),
		Tables:        make([]docmodel.Table, 0, len(raw.Tables)),
		KeyValuePairs: make(map[string]string, len(raw.KeyValues)),
		Entities:      make([]docmodel.Entity, 0, len(raw.Entities)),
		ExtractedAt:   time.Now(),
	}

	if canonical.Content == "" && len(raw.Pages) > 0 {
		var sb strings.Builder
		for _, p := range raw.Pages {
			sb.WriteString(p.Content)
			sb.WriteString("\n")
		}
		canonical.Content = strings.TrimRight(sb.String(), "\n")
	}

	for _, t := range raw.Tables {
		table := docmodel.Table{
			RowCount: t.RowCount,
			ColCount: t.ColCount,
			Cells:    make([]docmodel.TableCell, 0, len(t.Cells)),
		}
		for _, c := range t.Cells {
			table.Cells = append(table.Cells, docmodel.TableCell{
				Row:  c.RowIndex,
				Col:  c.ColIndex,
				Text: c.Content,
			})
		}
		canonical.Tables = append(canonical.Tables, table)
	}

	for _, kv := range raw.KeyValues {
		if kv.Key == "" {
			continue
		}
		canonical.KeyValuePairs[kv.Key] = kv.Value
	}

	for _, e := range raw.Entities {
		canonical.Entities = append(canonical.Entities, docmodel.Entity{
			Category:   e.Category,
			Text:       e.Content,
			Confidence: clamp01(e.Confidence),
		})
	}

	switch profile {
	case docmodel.ProfileInvoice:
		canonical.Invoice = normalizeInvoice(raw)
	case docmodel.ProfileReceipt:
		canonical.Receipt = normalizeReceipt(raw)
	}

	return canonical
}

func normalizeInvoice(raw *RawResult) *docmodel.InvoiceRecord {
	fields := profileFields(raw, "invoice")
	record := &docmodel.InvoiceRecord{
		Number:      fieldText(fields, "InvoiceId"),
		InvoiceDate: fieldDate(fields, "InvoiceDate"),
		DueDate:     fieldDate(fields, "DueDate"),
		Vendor:      fieldText(fields, "VendorName"),
		Customer:    fieldText(fields, "CustomerName"),
		Subtotal:    fieldNumber(fields, "SubTotal"),
		Tax:         fieldNumber(fields, "TotalTax"),
		Total:       fieldNumber(fields, "InvoiceTotal"),
		Items:       lineItems(fields, "Items"),
	}
	return record
}

func normalizeReceipt(raw *RawResult) *docmodel.ReceiptRecord {
	fields := profileFields(raw, "receipt")
	record := &docmodel.ReceiptRecord{
		Merchant: fieldText(fields, "MerchantName"),
		Subtotal: fieldNumber(fields, "Subtotal"),
		Tax:      fieldNumber(fields, "TotalTax"),
		Total:    fieldNumber(fields, "Total"),
		Items:    lineItems(fields, "Items"),
	}
	if when := fieldDate(fields, "TransactionDate"); when != nil {
		if ts, err := time.Parse(time.RFC3339, *when); err == nil {
			record.TransactionAt = &ts
		} else if d, err := time.Parse("2006-01-02", *when); err == nil {
			record.TransactionAt = &d
		}
	}
	return record
}

// profileFields returns the field map of the first raw document matching the
// requested type, or nil when the service extracted none.
func profileFields(raw *RawResult, docType string) map[string]RawField {
	for _, d := range raw.Documents {
		if strings.EqualFold(d.DocType, docType) {
			return d.Fields
		}
	}
	if len(raw.Documents) == 1 {
		return raw.Documents[0].Fields
	}
	return nil
}

func lineItems(fields map[string]RawField, key string) []docmodel.LineItem {
	items := make([]docmodel.LineItem, 0)
	f, ok := fields[key]
	if !ok {
		return items
	}
	for _, it := range f.Items {
		items = append(items, docmodel.LineItem{
			Description: fieldText(it.Fields, "Description"),
			Quantity:    fieldNumber(it.Fields, "Quantity"),
			UnitPrice:   fieldNumber(it.Fields, "UnitPrice"),
			Amount:      fieldNumber(it.Fields, "Amount"),
		})
	}
	return items
}

func fieldText(fields map[string]RawField, key string) *string {
	f, ok := fields[key]
	if !ok || f.Text == "" {
		return nil
	}
	text := f.Text
	return &text
}

func fieldNumber(fields map[string]RawField, key string) *float64 {
	f, ok := fields[key]
	if !ok || f.Number == nil {
		return nil
	}
	n := *f.Number
	return &n
}

func fieldDate(fields map[string]RawField, key string) *string {
	f, ok := fields[key]
	if !ok {
		return nil
	}
	if f.Date != "" {
		d := f.Date
		return &d
	}
	if f.Text != "" {
		t := f.Text
		return &t
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
