package mail

import (
	"encoding/base64"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// footerMarker starts the boilerplate unsubscribe/navigation block in court
// notification emails; everything from it onward is dropped so the link
// extractor never sees tracking links from the footer.
const footerMarker = "To view or to search for other opinions and orders"

var tagStripper = bluemonday.StrictPolicy()

type headerField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type bodyData struct {
	Data string `json:"data"`
}

// messagePayload mirrors the Gmail API message payload tree.
type messagePayload struct {
	MimeType string           `json:"mimeType"`
	Headers  []headerField    `json:"headers"`
	Body     bodyData         `json:"body"`
	Parts    []messagePayload `json:"parts"`
}

func (p *messagePayload) header(name string) string {
	if p == nil {
		return ""
	}
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBody decodes the message body to plain text: single-part messages
// decode directly, multipart messages prefer a text/plain part and fall
// back to text/html with tags stripped. The result is truncated at the
// footer marker.
func extractBody(p *messagePayload) string {
	if p == nil {
		return ""
	}

	var body string
	switch {
	case p.Body.Data != "":
		body = decodePart(p.Body.Data)
	case len(p.Parts) > 0:
		text, htmlBody := extractFromParts(p.Parts)
		if text != "" {
			body = text
		} else if htmlBody != "" {
			body = stripTags(htmlBody)
		}
	}

	if idx := strings.Index(body, footerMarker); idx >= 0 {
		body = body[:idx]
	}

	return body
}

// extractFromParts walks the part tree and returns the first text/plain and
// text/html bodies found.
func extractFromParts(parts []messagePayload) (textBody, htmlBody string) {
	for i := range parts {
		part := &parts[i]

		if len(part.Parts) > 0 {
			nestedText, nestedHTML := extractFromParts(part.Parts)
			if nestedText != "" {
				textBody = nestedText
			}
			if nestedHTML != "" && textBody == "" {
				htmlBody = nestedHTML
			}
			continue
		}

		switch {
		case part.MimeType == "text/plain" && part.Body.Data != "":
			textBody = decodePart(part.Body.Data)
		case part.MimeType == "text/html" && part.Body.Data != "" && textBody == "":
			htmlBody = decodePart(part.Body.Data)
		}
	}
	return textBody, htmlBody
}

// decodePart handles Gmail's URL-safe base64, padded or not.
func decodePart(data string) string {
	trimmed := strings.TrimRight(data, "=")
	raw, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return ""
	}
	return string(raw)
}

func stripTags(htmlBody string) string {
	return html.UnescapeString(tagStripper.Sanitize(htmlBody))
}
