package docmodel

import (
	"fmt"
	"time"
)

type Profile string

const (
	ProfileGeneric Profile = "generic"
	ProfileInvoice Profile = "invoice"
	ProfileReceipt Profile = "receipt"
)

func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case ProfileGeneric, ProfileInvoice, ProfileReceipt:
		return Profile(s), nil
	case "":
		return ProfileGeneric, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProfile, s)
	}
}

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusAnalyzed   DocumentStatus = "analyzed"
	StatusError      DocumentStatus = "error"
)

type UploadedDocument struct {
	Id          string         `json:"id"`
	Scope       string         `json:"scope"`
	Name        string         `json:"name"`
	Location    string         `json:"location"`
	ContentType string         `json:"content_type"`
	Size        int64          `json:"size"`
	Status      DocumentStatus `json:"status"`
	UploadedAt  time.Time      `json:"uploaded_at"`
}

type TableCell struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Text string `json:"text"`
}

type Table struct {
	RowCount int         `json:"row_count"`
	ColCount int         `json:"col_count"`
	Cells    []TableCell `json:"cells"`
}

type Entity struct {
	Category   string  `json:"category"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// LineItem fields are pointers so "not extracted" stays distinguishable
// from "extracted as zero".
type LineItem struct {
	Description *string  `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
}

type InvoiceRecord struct {
	Number      *string    `json:"number,omitempty"`
	InvoiceDate *string    `json:"invoice_date,omitempty"`
	DueDate     *string    `json:"due_date,omitempty"`
	Vendor      *string    `json:"vendor,omitempty"`
	Customer    *string    `json:"customer,omitempty"`
	Subtotal    *float64   `json:"subtotal,omitempty"`
	Tax         *float64   `json:"tax,omitempty"`
	Total       *float64   `json:"total,omitempty"`
	Items       []LineItem `json:"items"`
}

type ReceiptRecord struct {
	Merchant      *string    `json:"merchant,omitempty"`
	TransactionAt *time.Time `json:"transaction_at,omitempty"`
	Subtotal      *float64   `json:"subtotal,omitempty"`
	Tax           *float64   `json:"tax,omitempty"`
	Total         *float64   `json:"total,omitempty"`
	Items         []LineItem `json:"items"`
}

// CanonicalExtraction is the schema-stable output of the normalizer.
// Collections are always present (possibly empty), never nil.
type CanonicalExtraction struct {
	DocumentId    string            `json:"document_id"`
	Profile       Profile           `json:"profile"`
	Content       string            `json:"content"`
	Pages         int               `json:"pages"`
	Tables        []Table           `json:"tables"`
	KeyValuePairs map[string]string `json:"key_value_pairs"`
	Entities      []Entity          `json:"entities"`
	Invoice       *InvoiceRecord    `json:"invoice,omitempty"`
	Receipt       *ReceiptRecord    `json:"receipt,omitempty"`
	ExtractedAt   time.Time         `json:"extracted_at"`
}

type AnalysisResult struct {
	DocumentId      string        `json:"document_id"`
	Profile         Profile       `json:"profile"`
	Summary         string        `json:"summary"`
	RedFlags        []string      `json:"red_flags"`
	Highlights      []string      `json:"highlights"`
	ConfidenceScore float64       `json:"confidence_score"`
	Duration        time.Duration `json:"duration_ns"`
	CreatedAt       time.Time     `json:"created_at"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn ordering within a scope is carried by Seq, which is
// allocated by the store. CreatedAt is informational only.
type ConversationTurn struct {
	Scope         string    `json:"scope"`
	Seq           int64     `json:"seq"`
	Role          Role      `json:"role"`
	Content       string    `json:"content"`
	ContextDocIds []string  `json:"context_doc_ids"`
	CreatedAt     time.Time `json:"created_at"`
}
