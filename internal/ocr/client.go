package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the external OCR engine over HTTP. The engine is a black
// box: it takes an image and returns a flat block list in the wire format of
// blocks.go.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates an OCR client for the given block-analysis endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Document     string   `json:"Document"` // base64 image bytes
	FeatureTypes []string `json:"FeatureTypes"`
}

type analyzeResponse struct {
	Blocks []Block `json:"Blocks"`
}

// AnalyzeDocument submits an image for structural analysis and returns the
// raw block list. Forms and tables features are always requested so that
// KEY_VALUE_SET blocks come back alongside LINE blocks.
func (c *Client) AnalyzeDocument(ctx context.Context, image []byte) ([]Block, error) {
	payload := analyzeRequest{
		Document:     base64.StdEncoding.EncodeToString(image),
		FeatureTypes: []string{"FORMS", "TABLES"},
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("ocr engine error %d: %s", resp.StatusCode, string(slurp))
	}

	var parsed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode ocr response: %w", err)
	}
	return parsed.Blocks, nil
}
