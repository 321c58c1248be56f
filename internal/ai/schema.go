package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// receiptSchemaSrc mirrors the structure requested by SystemPrompt. Amount
// fields accept both numbers and strings because models disagree on which to
// emit; the record mapping normalizes either.
const receiptSchemaSrc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "merchant":       {"type": "string"},
    "currency":       {"type": "string", "minLength": 3, "maxLength": 3},
    "total_amount":   {"type": ["number", "string"]},
    "vat_amount":     {"type": ["number", "string", "null"]},
    "invoice_number": {"type": ["string", "number", "null"]},
    "date":           {"type": ["string", "null"]}
  },
  "required": ["merchant", "total_amount"]
}`

var receiptSchema = jsonschema.MustCompileString("receipt.schema.json", receiptSchemaSrc)

// ValidateResponse checks an extracted JSON object against the expected
// receipt shape. Violations are advisory: the caller logs them and keeps the
// record, since partially conforming output still maps onto defaults.
func ValidateResponse(doc []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode for validation: %w", err)
	}
	return receiptSchema.Validate(v)
}
