package ai

import (
	"errors"
	"testing"
)

func TestExtractObjectSimple(t *testing.T) {
	for _, mode := range []ScanMode{ScanBalanced, ScanLegacy} {
		got, err := ExtractObject(`noise {"a":1} trailing`, mode)
		if err != nil {
			t.Fatalf("mode %d: unexpected error: %v", mode, err)
		}
		if string(got) != `{"a":1}` {
			t.Errorf("mode %d: got %q", mode, got)
		}
	}
}

func TestExtractObjectAbsent(t *testing.T) {
	for _, mode := range []ScanMode{ScanBalanced, ScanLegacy} {
		_, err := ExtractObject("no braces here", mode)
		if !errors.Is(err, ErrNoJSONObject) {
			t.Errorf("mode %d: err = %v, want ErrNoJSONObject", mode, err)
		}
	}
}

func TestExtractObjectMalformed(t *testing.T) {
	for _, mode := range []ScanMode{ScanBalanced, ScanLegacy} {
		_, err := ExtractObject("{not json}", mode)
		var malformed *MalformedOutputError
		if !errors.As(err, &malformed) {
			t.Errorf("mode %d: err = %v, want MalformedOutputError", mode, err)
		}
		if errors.Is(err, ErrNoJSONObject) {
			t.Errorf("mode %d: malformed output must not read as absent", mode)
		}
	}
}

// The legacy scan cuts a nested object at the first closing brace and the
// truncated span fails to parse. The balanced scan returns the whole object.
func TestExtractObjectNested(t *testing.T) {
	input := `{"a": {"b": 1}}`

	_, err := ExtractObject(input, ScanLegacy)
	var malformed *MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Errorf("legacy: err = %v, want MalformedOutputError", err)
	}

	got, err := ExtractObject(input, ScanBalanced)
	if err != nil {
		t.Fatalf("balanced: unexpected error: %v", err)
	}
	if string(got) != input {
		t.Errorf("balanced: got %q, want %q", got, input)
	}
}

func TestExtractObjectBraceInsideString(t *testing.T) {
	input := `prefix {"merchant": "Curly {Brace} Diner", "total_amount": "9.99"} suffix`

	got, err := ExtractObject(input, ScanBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"merchant": "Curly {Brace} Diner", "total_amount": "9.99"}`
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractObjectEscapedQuoteInsideString(t *testing.T) {
	input := `{"a": "quote \" then } brace"}`

	got, err := ExtractObject(input, ScanBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

// Prose ahead of the object can quote braces the scanner cannot recognize as
// string literals. The invalid leading span must not mask the real object.
func TestExtractObjectBraceInProseBeforeObject(t *testing.T) {
	input := `fill the "{amount}" placeholder like so: {"total_amount": "9.99"}`

	got, err := ExtractObject(input, ScanBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"total_amount": "9.99"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractObjectSkipsUnclosedLeadingSpan(t *testing.T) {
	input := `{oops no close, then {"a": 1}`

	got, err := ExtractObject(input, ScanBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"a": 1}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractObjectUnclosed(t *testing.T) {
	_, err := ExtractObject(`{"a": 1`, ScanBalanced)
	var malformed *MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Errorf("err = %v, want MalformedOutputError (span found, never closed)", err)
	}
}
