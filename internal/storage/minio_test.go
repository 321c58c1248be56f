package storage

import (
	"testing"
	"time"
)

// A batch run mirrors one result object per (document, strategy) pair, and
// every pair of one document typically lands within the same second. The keys
// must still be distinct.
func TestResultKeyDistinctPerStrategy(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	strategies := []string{"regex-ocr", "gpt-4o-vanilla", "gpt-4o-ocr", "gemini-flash-ocr", "mistral-ocr"}

	seen := make(map[string]string)
	for _, strategy := range strategies {
		key := ResultKey(now, strategy, "a.jpg")
		if prev, ok := seen[key]; ok {
			t.Errorf("ResultKey collision: %q and %q both map to %q", prev, strategy, key)
		}
		seen[key] = strategy
	}
}

func TestResultKeyFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	got := ResultKey(at, "regex-ocr", "receipt.png")
	want := "results/20260314092653_regex-ocr_receipt.png.json"
	if got != want {
		t.Errorf("ResultKey = %q, want %q", got, want)
	}
}

func TestResultKeyNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	local := time.Date(2026, 3, 14, 10, 26, 53, 0, loc)
	utc := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	if got, want := ResultKey(local, "s", "k"), ResultKey(utc, "s", "k"); got != want {
		t.Errorf("ResultKey(local) = %q, ResultKey(utc) = %q", got, want)
	}
}

func TestContentTypeExtension(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"application/octet-stream", ".bin"},
		{"", ".bin"},
	}

	for _, tc := range cases {
		if got := ContentTypeExtension(tc.contentType); got != tc.want {
			t.Errorf("ContentTypeExtension(%q) = %q, want %q", tc.contentType, got, tc.want)
		}
	}
}
