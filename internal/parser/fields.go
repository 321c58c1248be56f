// Package parser implements deterministic, locale-tolerant field extraction
// from raw receipt text. Every rule is independent and total: a field that
// does not match keeps its default, and Extract never fails.
package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/receiptlab/receipt-extraction-service/internal/models"
)

// The pattern battery. Labels cover the English, German, Spanish and French
// receipt layouts seen in production; VAT rates are the fixed German/Dutch
// MwSt buckets. All searches are case-insensitive and unanchored; the first
// match wins.
var (
	countryRegex = regexp.MustCompile(`(?i)(Germany|Deutschland|France)`)

	invoiceNumberRegex = regexp.MustCompile(
		`(?i)(?:invoice number|rechnungsnummer|número de factura|bestellnummer|beleg-nr\.|facture|reçu)\s*[:.]*\s*(\d+)`)

	dateRegex = regexp.MustCompile(`(?i)(?:date|datum|fecha)\s*[:.]*\s*(\d{2}[./-]\d{2}[./-]\d{4})`)

	currencyRegex = regexp.MustCompile(`(?i)(EUR|USD)`)

	totalAmountRegex = regexp.MustCompile(
		`(?i)(?:gesamtsumme|betrag|montant total|prix nets en euros|total)\s*(\d+[.,]\d{2})`)

	vat0Regex  = regexp.MustCompile(`(?i)0%\s*MwSt\s*:\s*(\d+[.,]\d{2})`)
	vat7Regex  = regexp.MustCompile(`(?i)7%\s*MwSt\s*:\s*(\d+[.,]\d{2})`)
	vat10Regex = regexp.MustCompile(`(?i)10%\s*MwSt\s*:\s*(\d+[.,]\d{2})`)
	vat19Regex = regexp.MustCompile(`(?i)19%\s*MwSt\s*:\s*(\d+[.,]\d{2})`)
	vat21Regex = regexp.MustCompile(`(?i)21%\s*MwSt\s*:\s*(\d+[.,]\d{2})`)

	otherFeesRegex = regexp.MustCompile(
		`(?i)(?:other fees|andere gebühren|otros cargos|extra)\s*[:.]*\s*(\d+[.,]\d{2})`)

	categoryRegex = regexp.MustCompile(`(?i)Fast Food|Taxes et Service Compris`)
)

// Extract runs the full battery against text and returns a fully populated
// FieldRecord. Merchant is a reserved field: no heuristic exists yet, so it
// always stays at its default.
func Extract(text string) models.FieldRecord {
	rec := models.NewFieldRecord()

	if m := countryRegex.FindString(text); m != "" {
		rec.Country = strings.TrimSpace(m)
	}
	if m := invoiceNumberRegex.FindStringSubmatch(text); m != nil {
		rec.InvoiceNumber = strings.TrimSpace(m[1])
	}
	if m := dateRegex.FindStringSubmatch(text); m != nil {
		if iso, ok := normalizeDate(m[1]); ok {
			rec.Date = iso
		}
	}
	if m := currencyRegex.FindString(text); m != "" {
		rec.Currency = strings.TrimSpace(m)
	}
	if m := totalAmountRegex.FindStringSubmatch(text); m != nil {
		rec.TotalAmount = normalizeAmount(m[1])
	}
	if m := vat0Regex.FindStringSubmatch(text); m != nil {
		rec.VAT0 = normalizeAmount(m[1])
	}
	if m := vat7Regex.FindStringSubmatch(text); m != nil {
		rec.VAT7 = normalizeAmount(m[1])
	}
	if m := vat10Regex.FindStringSubmatch(text); m != nil {
		rec.VAT10 = normalizeAmount(m[1])
	}
	if m := vat19Regex.FindStringSubmatch(text); m != nil {
		rec.VAT19 = normalizeAmount(m[1])
	}
	if m := vat21Regex.FindStringSubmatch(text); m != nil {
		rec.VAT21 = normalizeAmount(m[1])
	}
	if m := otherFeesRegex.FindStringSubmatch(text); m != nil {
		rec.OtherFees = normalizeAmount(m[1])
	}
	if categoryRegex.MatchString(text) {
		rec.Category = "Fast Food"
	}

	return rec
}

// normalizeDate converts a DD<sep>MM<sep>YYYY token (separators ".", "/",
// "-") to YYYY-MM-DD. A token whose day/month/year grammar does not hold
// (month 13, day 32, ...) reports false and the field keeps its default.
func normalizeDate(token string) (string, bool) {
	normalized := strings.NewReplacer("/", ".", "-", ".").Replace(token)
	t, err := time.Parse("02.01.2006", normalized)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// normalizeAmount replaces the comma decimal separator with a dot. The value
// stays a string; no float conversion happens here.
func normalizeAmount(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
}
