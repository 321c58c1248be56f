package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/receiptlab/receipt-extraction-service/internal/models"
)

// RecordRow is the persisted form of one extraction result. Monetary fields
// are stored as fixed-point decimals, never floats.
type RecordRow struct {
	ID            uuid.UUID       `json:"id"`
	FileName      string          `json:"file_name"`
	Strategy      string          `json:"strategy"`
	ModelID       string          `json:"model_id"`
	UsedOCR       bool            `json:"used_ocr"`
	Merchant      string          `json:"merchant"`
	Country       string          `json:"country"`
	InvoiceNumber string          `json:"invoice_number"`
	Date          string          `json:"date"`
	Currency      string          `json:"currency"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	VAT0          decimal.Decimal `json:"vat_0"`
	VAT7          decimal.Decimal `json:"vat_7"`
	VAT10         decimal.Decimal `json:"vat_10"`
	VAT19         decimal.Decimal `json:"vat_19"`
	VAT21         decimal.Decimal `json:"vat_21"`
	OtherFees     decimal.Decimal `json:"other_fees"`
	Category      string          `json:"category"`
	ProcessedAt   time.Time       `json:"processed_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SaveRecord persists one extraction result with its provenance.
func SaveRecord(ctx context.Context, res *models.Result) (uuid.UUID, error) {
	query := `
		INSERT INTO receipt_records (
			file_name, strategy, model_id, used_ocr,
			merchant, country, invoice_number, date, currency,
			total_amount, vat_amount, vat_0, vat_7, vat_10, vat_19, vat_21,
			other_fees, category, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`

	var id uuid.UUID
	err := Pool.QueryRow(ctx, query,
		res.FileName, res.StrategyName, res.ModelID, res.UsedOCR,
		res.Merchant, res.Country, res.InvoiceNumber, res.Date, res.Currency,
		models.Amount(res.TotalAmount), models.Amount(res.VATAmount),
		models.Amount(res.VAT0), models.Amount(res.VAT7), models.Amount(res.VAT10),
		models.Amount(res.VAT19), models.Amount(res.VAT21),
		models.Amount(res.OtherFees), res.Category, res.ProcessedAt,
	).Scan(&id)

	return id, err
}

// GetRecordsByModel returns persisted records for one model identifier,
// newest first.
func GetRecordsByModel(ctx context.Context, modelID string, limit int) ([]RecordRow, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, file_name, strategy, model_id, used_ocr,
		       COALESCE(merchant, ''), COALESCE(country, ''), COALESCE(invoice_number, ''),
		       COALESCE(date, ''), COALESCE(currency, ''),
		       COALESCE(total_amount, 0), COALESCE(vat_amount, 0),
		       COALESCE(vat_0, 0), COALESCE(vat_7, 0), COALESCE(vat_10, 0),
		       COALESCE(vat_19, 0), COALESCE(vat_21, 0),
		       COALESCE(other_fees, 0), COALESCE(category, ''),
		       processed_at, created_at
		FROM receipt_records
		WHERE model_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := Pool.Query(ctx, query, modelID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RecordRow
	for rows.Next() {
		var r RecordRow
		err := rows.Scan(
			&r.ID, &r.FileName, &r.Strategy, &r.ModelID, &r.UsedOCR,
			&r.Merchant, &r.Country, &r.InvoiceNumber, &r.Date, &r.Currency,
			&r.TotalAmount, &r.VATAmount,
			&r.VAT0, &r.VAT7, &r.VAT10, &r.VAT19, &r.VAT21,
			&r.OtherFees, &r.Category,
			&r.ProcessedAt, &r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
