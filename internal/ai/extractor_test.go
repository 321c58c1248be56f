package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/receiptlab/receipt-extraction-service/internal/models"
)

type fakeProvider struct {
	response string
	err      error

	lastPrompt string
	lastImage  []byte
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Invoke(ctx context.Context, prompt string, image []byte) (string, error) {
	f.lastPrompt = prompt
	f.lastImage = image
	return f.response, f.err
}

func TestExtractMapsResponse(t *testing.T) {
	provider := &fakeProvider{response: `{
		"merchant": "REWE",
		"currency": "EUR",
		"total_amount": "25.90",
		"vat_amount": "4.13",
		"invoice_number": "4711",
		"date": "03.02.2021"
	}`}
	e := NewExtractor(provider, ScanBalanced, nil)

	rec, err := e.Extract(context.Background(), Input{Text: "receipt text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Merchant != "REWE" || rec.Currency != "EUR" {
		t.Errorf("merchant/currency = %q/%q", rec.Merchant, rec.Currency)
	}
	if rec.TotalAmount != "25.90" || rec.VATAmount != "4.13" {
		t.Errorf("amounts = %q/%q", rec.TotalAmount, rec.VATAmount)
	}
	if rec.InvoiceNumber != "4711" || rec.Date != "03.02.2021" {
		t.Errorf("invoice/date = %q/%q", rec.InvoiceNumber, rec.Date)
	}
}

// Models disagree on whether amounts are strings or numbers; both must map.
func TestExtractNumericFields(t *testing.T) {
	provider := &fakeProvider{
		response: `{"merchant": "Kiosk", "total_amount": 9.5, "invoice_number": 123}`,
	}
	e := NewExtractor(provider, ScanBalanced, nil)

	rec, err := e.Extract(context.Background(), Input{Text: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.TotalAmount != "9.5" {
		t.Errorf("TotalAmount = %q, want 9.5", rec.TotalAmount)
	}
	if rec.InvoiceNumber != "123" {
		t.Errorf("InvoiceNumber = %q, want 123", rec.InvoiceNumber)
	}
}

func TestExtractFencedResponse(t *testing.T) {
	provider := &fakeProvider{
		response: "```json\n{\"merchant\": \"Backshop\", \"total_amount\": \"3.20\"}\n```",
	}
	e := NewExtractor(provider, ScanBalanced, nil)

	rec, err := e.Extract(context.Background(), Input{Text: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Merchant != "Backshop" || rec.TotalAmount != "3.20" {
		t.Errorf("got %q/%q", rec.Merchant, rec.TotalAmount)
	}
}

func TestExtractMissingFieldsKeepDefaults(t *testing.T) {
	provider := &fakeProvider{response: `{"merchant": "Imbiss"}`}
	e := NewExtractor(provider, ScanBalanced, nil)

	rec, err := e.Extract(context.Background(), Input{Text: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.TotalAmount != models.DefaultAmount || rec.VATAmount != models.DefaultAmount {
		t.Errorf("amounts = %q/%q, want defaults", rec.TotalAmount, rec.VATAmount)
	}
	if rec.InvoiceNumber != models.UnknownValue || rec.Date != models.UnknownValue {
		t.Errorf("invoice/date = %q/%q, want Unknown", rec.InvoiceNumber, rec.Date)
	}
}

func TestExtractProviderErrorPropagates(t *testing.T) {
	boom := errors.New("rate limited")
	provider := &fakeProvider{err: boom}
	e := NewExtractor(provider, ScanBalanced, nil)

	_, err := e.Extract(context.Background(), Input{Text: "x"})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped provider error", err)
	}
}

func TestExtractNoObjectInResponse(t *testing.T) {
	provider := &fakeProvider{response: "I could not read this receipt, sorry."}
	e := NewExtractor(provider, ScanBalanced, nil)

	_, err := e.Extract(context.Background(), Input{Text: "x"})
	if !errors.Is(err, ErrNoJSONObject) {
		t.Errorf("err = %v, want ErrNoJSONObject", err)
	}
}

func TestExtractPromptSelection(t *testing.T) {
	provider := &fakeProvider{response: `{"merchant": "X"}`}
	e := NewExtractor(provider, ScanBalanced, nil)

	if _, err := e.Extract(context.Background(), Input{Text: "some ocr text"}); err != nil {
		t.Fatalf("text input: %v", err)
	}
	if provider.lastPrompt != BuildTextPrompt("some ocr text") {
		t.Errorf("text prompt = %q", provider.lastPrompt)
	}
	if provider.lastImage != nil {
		t.Errorf("text input must not carry an image")
	}

	img := []byte{0xFF, 0xD8, 0xFF}
	if _, err := e.Extract(context.Background(), Input{Image: img}); err != nil {
		t.Fatalf("image input: %v", err)
	}
	if provider.lastPrompt != BuildVisionPrompt() {
		t.Errorf("vision prompt = %q", provider.lastPrompt)
	}
	if len(provider.lastImage) != len(img) {
		t.Errorf("image not forwarded")
	}
}
