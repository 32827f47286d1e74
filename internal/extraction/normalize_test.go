package extraction

import (
	"testing"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
)

func TestNormalize_EmptyRawResult(t *testing.T) {
	for _, profile := range []docmodel.Profile{docmodel.ProfileGeneric, docmodel.ProfileInvoice, docmodel.ProfileReceipt} {
		t.Run(string(profile), func(t *testing.T) {
			got := Normalize(&RawResult{}, profile, "doc-1")

			if got.Tables == nil {
				t.Error("Tables must be empty, not nil")
			}
			if got.Entities == nil {
				t.Error("Entities must be empty, not nil")
			}
			if got.KeyValuePairs == nil {
				t.Error("KeyValuePairs must be empty, not nil")
			}
			if got.DocumentId != "doc-1" {
				t.Errorf("DocumentId got %s", got.DocumentId)
			}
		})
	}
}

func TestNormalize_ProfileRecordsPresent(t *testing.T) {
	inv := Normalize(&RawResult{}, docmodel.ProfileInvoice, "d")
	if inv.Invoice == nil {
		t.Fatal("invoice profile should always produce an invoice record")
	}
	if inv.Invoice.Items == nil {
		t.Error("invoice items must be empty, not nil")
	}
	if inv.Invoice.Total != nil {
		t.Error("absent total must stay nil, not default to zero")
	}
	if inv.Receipt != nil {
		t.Error("invoice profile must not produce a receipt record")
	}

	gen := Normalize(&RawResult{}, docmodel.ProfileGeneric, "d")
	if gen.Invoice != nil || gen.Receipt != nil {
		t.Error("generic profile must not carry a document-type record")
	}
}

func TestNormalize_InvoiceFields(t *testing.T) {
	total := 1250.50
	qty := 2.0
	raw := &RawResult{
		Content: "INVOICE #A-17",
		Pages:   []RawPage{{Number: 1}, {Number: 2}},
		Documents: []RawDocument{{
			DocType: "invoice",
			Fields: map[string]RawField{
				"InvoiceId":    {Text: "A-17"},
				"VendorName":   {Text: "Acme Supplies"},
				"InvoiceTotal": {Number: &total},
				"Items": {Items: []RawItem{{
					Fields: map[string]RawField{
						"Description": {Text: "Widgets"},
						"Quantity":    {Number: &qty},
					},
				}}},
			},
		}},
	}

	got := Normalize(raw, docmodel.ProfileInvoice, "d")

	if got.Pages != 2 {
		t.Errorf("Pages got %d, want 2", got.Pages)
	}
	if got.Invoice.Number == nil || *got.Invoice.Number != "A-17" {
		t.Errorf("Number got %v", got.Invoice.Number)
	}
	if got.Invoice.Vendor == nil || *got.Invoice.Vendor != "Acme Supplies" {
		t.Errorf("Vendor got %v", got.Invoice.Vendor)
	}
	if got.Invoice.Total == nil || *got.Invoice.Total != total {
		t.Errorf("Total got %v", got.Invoice.Total)
	}
	// not extracted => absent, not zero
	if got.Invoice.Subtotal != nil {
		t.Errorf("Subtotal got %v, want nil", got.Invoice.Subtotal)
	}
	if len(got.Invoice.Items) != 1 {
		t.Fatalf("Items got %d, want 1", len(got.Invoice.Items))
	}
	item := got.Invoice.Items[0]
	if item.Description == nil || *item.Description != "Widgets" {
		t.Errorf("item description got %v", item.Description)
	}
	if item.Amount != nil {
		t.Errorf("absent line amount must stay nil, got %v", item.Amount)
	}
}

func TestNormalize_ContentFromPages(t *testing.T) {
	raw := &RawResult{
		Pages: []RawPage{
			{Number: 1, Content: "page one"},
			{Number: 2, Content: "page two"},
		},
	}
	got := Normalize(raw, docmodel.ProfileGeneric, "d")
	if got.Content != "page one\npage two" {
		t.Errorf("Content got %q", got.Content)
	}
	if got.Pages != 2 {
		t.Errorf("Pages got %d", got.Pages)
	}
}

func TestNormalize_TablesAndEntities(t *testing.T) {
	raw := &RawResult{
		Tables: []RawTable{{
			RowCount: 1, ColCount: 2,
			Cells: []RawCell{
				{RowIndex: 0, ColIndex: 0, Content: "a"},
				{RowIndex: 0, ColIndex: 1, Content: "b"},
			},
		}},
		KeyValues: []RawKeyValue{{Key: "PO", Value: "99"}, {Key: "", Value: "dropped"}},
		Entities:  []RawEntity{{Category: "Organization", Content: "Acme", Confidence: 1.4}},
	}

	got := Normalize(raw, docmodel.ProfileGeneric, "d")

	if len(got.Tables) != 1 || len(got.Tables[0].Cells) != 2 {
		t.Fatalf("table mapping broken: %+v", got.Tables)
	}
	if got.KeyValuePairs["PO"] != "99" {
		t.Errorf("KeyValuePairs got %v", got.KeyValuePairs)
	}
	if len(got.KeyValuePairs) != 1 {
		t.Errorf("empty keys must be dropped, got %v", got.KeyValuePairs)
	}
	if got.Entities[0].Confidence != 1.0 {
		t.Errorf("confidence must clip to [0,1], got %v", got.Entities[0].Confidence)
	}
}
