package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/receiptlab/receipt-extraction-service/internal/models"
)

// Extractor drives one model-based extraction: prompt building, provider
// invocation and response scanning.
type Extractor struct {
	provider Provider
	mode     ScanMode
	log      *slog.Logger
}

// NewExtractor creates an extractor bound to one provider.
func NewExtractor(provider Provider, mode ScanMode, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{provider: provider, mode: mode, log: logger}
}

// Input is the extraction payload: OCR text, or a raw image for
// vision-capable providers when Text is empty.
type Input struct {
	Text  string
	Image []byte
}

// Extract invokes the model and maps its JSON response onto a FieldRecord.
// Invocation errors and malformed output propagate to the caller; missing
// fields inside a well-formed response fall back to record defaults.
func (e *Extractor) Extract(ctx context.Context, in Input) (models.FieldRecord, error) {
	var prompt string
	var image []byte
	if strings.TrimSpace(in.Text) == "" && len(in.Image) > 0 {
		prompt = BuildVisionPrompt()
		image = in.Image
	} else {
		prompt = BuildTextPrompt(in.Text)
	}

	response, err := e.provider.Invoke(ctx, prompt, image)
	if err != nil {
		return models.FieldRecord{}, fmt.Errorf("model invocation failed: %w", err)
	}

	e.log.Debug("ai.extract.response",
		"provider", e.provider.Name(),
		"response_len", len(response),
	)

	doc, err := ExtractObject(stripFences(response), e.mode)
	if err != nil {
		return models.FieldRecord{}, err
	}

	if err := ValidateResponse(doc); err != nil {
		e.log.Warn("ai.extract.schema_violation",
			"provider", e.provider.Name(),
			"error", err,
		)
	}

	return mapResponse(doc)
}

// stripFences removes markdown code fences some models wrap around JSON.
func stripFences(s string) string {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// mapResponse unmarshals the extracted object into a FieldRecord. Amount and
// invoice-number fields arrive as numbers or strings depending on the model,
// so they decode as any and normalize afterwards.
func mapResponse(doc []byte) (models.FieldRecord, error) {
	var raw struct {
		Merchant      string `json:"merchant"`
		Currency      string `json:"currency"`
		TotalAmount   any    `json:"total_amount"`
		VATAmount     any    `json:"vat_amount"`
		InvoiceNumber any    `json:"invoice_number"`
		Date          string `json:"date"`
	}
	if err := json.Unmarshal(doc, &raw); err != nil {
		return models.FieldRecord{}, &MalformedOutputError{Snippet: clip(string(doc)), Err: err}
	}

	rec := models.NewFieldRecord()
	if raw.Merchant != "" {
		rec.Merchant = raw.Merchant
	}
	if raw.Currency != "" {
		rec.Currency = raw.Currency
	}
	if s := flexString(raw.TotalAmount); s != "" {
		rec.TotalAmount = s
	}
	if s := flexString(raw.VATAmount); s != "" {
		rec.VATAmount = s
	}
	if s := flexString(raw.InvoiceNumber); s != "" {
		rec.InvoiceNumber = s
	}
	if raw.Date != "" {
		rec.Date = raw.Date
	}
	return rec, nil
}

// flexString renders a JSON number or string value as a plain string.
func flexString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
