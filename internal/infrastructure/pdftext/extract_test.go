package pdftext

import (
	"strings"
	"testing"
)

func TestParseContentStream(t *testing.T) {
	t.Parallel()

	stream := []byte(`BT
/F1 12 Tf
(UNITED STATES COURT OF APPEALS) Tj
T*
[(FOR THE ) -20 (FEDERAL CIRCUIT)] TJ
ET`)

	got := parseContentStream(stream)
	if !strings.Contains(got, "UNITED STATES COURT OF APPEALS") {
		t.Fatalf("missing Tj text: %q", got)
	}
	if !strings.Contains(got, "FOR THE FEDERAL CIRCUIT") {
		t.Fatalf("missing TJ text: %q", got)
	}
}

func TestDecodePDFStringEscapes(t *testing.T) {
	t.Parallel()

	if got := decodePDFString([]byte(`a\(b\)c`)); got != "a(b)c" {
		t.Fatalf("paren escapes: %q", got)
	}
	if got := decodePDFString([]byte(`tab\there`)); got != "tab\there" {
		t.Fatalf("tab escape: %q", got)
	}
	// \040 is an octal-escaped space.
	if got := decodePDFString([]byte(`a\040b`)); got != "a b" {
		t.Fatalf("octal escape: %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	if got := collapseWhitespace("  a   b\t c  "); got != "a b c" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestExtractMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := NewExtractor().Extract("does-not-exist.pdf"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
