package mail

import (
	"encoding/base64"
	"strings"
	"testing"
)

func encodePart(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestExtractBodySinglePart(t *testing.T) {
	t.Parallel()

	payload := &messagePayload{
		MimeType: "text/plain",
		Body:     bodyData{Data: encodePart("New opinions today.\nhttps://www.cafc.uscourts.gov/case/23-1446")},
	}

	body := extractBody(payload)
	if !strings.Contains(body, "https://www.cafc.uscourts.gov/case/23-1446") {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestExtractBodyPrefersPlainText(t *testing.T) {
	t.Parallel()

	payload := &messagePayload{
		MimeType: "multipart/alternative",
		Parts: []messagePayload{
			{MimeType: "text/html", Body: bodyData{Data: encodePart("<p>html version</p>")}},
			{MimeType: "text/plain", Body: bodyData{Data: encodePart("plain version")}},
		},
	}

	if body := extractBody(payload); body != "plain version" {
		t.Fatalf("expected plain part, got %q", body)
	}
}

func TestExtractBodyHTMLFallbackStripsTags(t *testing.T) {
	t.Parallel()

	payload := &messagePayload{
		MimeType: "multipart/alternative",
		Parts: []messagePayload{
			{MimeType: "text/html", Body: bodyData{Data: encodePart("<p>opinion &amp; order</p>")}},
		},
	}

	body := extractBody(payload)
	if strings.Contains(body, "<") {
		t.Fatalf("expected tags stripped, got %q", body)
	}
	if !strings.Contains(body, "opinion & order") {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestExtractBodyNestedParts(t *testing.T) {
	t.Parallel()

	payload := &messagePayload{
		MimeType: "multipart/mixed",
		Parts: []messagePayload{
			{
				MimeType: "multipart/alternative",
				Parts: []messagePayload{
					{MimeType: "text/plain", Body: bodyData{Data: encodePart("nested plain")}},
				},
			},
		},
	}

	if body := extractBody(payload); body != "nested plain" {
		t.Fatalf("expected nested plain part, got %q", body)
	}
}

func TestExtractBodyTruncatesFooter(t *testing.T) {
	t.Parallel()

	raw := "useful content\n" + footerMarker + "\nhttps://links-1.govdelivery.com/CL0/junk"
	payload := &messagePayload{
		MimeType: "text/plain",
		Body:     bodyData{Data: encodePart(raw)},
	}

	body := extractBody(payload)
	if strings.Contains(body, "govdelivery") {
		t.Fatalf("expected footer truncated, got %q", body)
	}
	if !strings.Contains(body, "useful content") {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestExtractBodyEmptyPayload(t *testing.T) {
	t.Parallel()

	if body := extractBody(nil); body != "" {
		t.Fatalf("expected empty body, got %q", body)
	}
	if body := extractBody(&messagePayload{}); body != "" {
		t.Fatalf("expected empty body, got %q", body)
	}
}
