package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field defaults. Textual fields fall back to Unknown, amount fields to "0".
const (
	UnknownValue  = "Unknown"
	DefaultAmount = "0"
)

// FieldRecord is the normalized output of field extraction for one
// (document, strategy) pair. Amounts are kept as strings with a dot decimal
// separator; they are converted to fixed-point decimals only at the storage
// boundary. A FieldRecord is never mutated after creation.
type FieldRecord struct {
	Merchant      string `json:"merchant"`
	Country       string `json:"country"`
	InvoiceNumber string `json:"invoice_number"`
	Date          string `json:"date"`     // ISO-8601 or Unknown
	Currency      string `json:"currency"` // 3-letter code or Unknown
	TotalAmount   string `json:"total_amount"`
	// VATAmount is the undifferentiated VAT total reported by model-based
	// extraction, which has no rate information. Regex-based extraction
	// fills the per-rate buckets below instead.
	VATAmount string `json:"vat_amount"`

	VAT0      string `json:"vat_0"`
	VAT7      string `json:"vat_7"`
	VAT10     string `json:"vat_10"`
	VAT19     string `json:"vat_19"`
	VAT21     string `json:"vat_21"`
	OtherFees string `json:"other_fees"`
	Category  string `json:"category"`
}

// NewFieldRecord returns a record with every field set to its default.
func NewFieldRecord() FieldRecord {
	return FieldRecord{
		Merchant:      UnknownValue,
		Country:       UnknownValue,
		InvoiceNumber: UnknownValue,
		Date:          UnknownValue,
		Currency:      UnknownValue,
		TotalAmount:   DefaultAmount,
		VATAmount:     DefaultAmount,
		VAT0:          DefaultAmount,
		VAT7:          DefaultAmount,
		VAT10:         DefaultAmount,
		VAT19:         DefaultAmount,
		VAT21:         DefaultAmount,
		OtherFees:     DefaultAmount,
		Category:      UnknownValue,
	}
}

// Amount parses an amount field into a fixed-point decimal. Unparsable or
// empty values come back as zero, mirroring the extraction defaults.
func Amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Provenance identifies which document and strategy produced a record.
// It is attached by the orchestrator after extraction, never by the
// extractors themselves.
type Provenance struct {
	FileName     string    `json:"file_name"`
	StrategyName string    `json:"strategy"`
	ModelID      string    `json:"model_id"`
	UsedOCR      bool      `json:"used_ocr"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// Result pairs a FieldRecord with its provenance.
type Result struct {
	FieldRecord
	Provenance
}

// Batch is the ordered set of results from one orchestrator run:
// document enumeration order first, then strategy registry order.
type Batch []Result
