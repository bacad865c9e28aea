package mail

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"OpinionDigest/internal/domain"
	"OpinionDigest/internal/ports"
)

// DigestSender renders the per-run digest email and delivers it through the
// Gmail client.
type DigestSender struct {
	client *Client
	to     []string
	bcc    []string
	logger *slog.Logger
}

var _ ports.DigestSender = (*DigestSender)(nil)

// NewDigestSender wires recipients from configuration.
func NewDigestSender(client *Client, to, bcc []string, logger *slog.Logger) *DigestSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &DigestSender{client: client, to: to, bcc: bcc, logger: logger}
}

// SendDigest delivers one HTML digest for the run. Nothing is sent when no
// recipients are configured or no records were produced.
func (s *DigestSender) SendDigest(ctx context.Context, day time.Time, records []domain.CaseRecord) error {
	if len(s.to) == 0 {
		s.logger.Info("no digest recipients configured, skipping delivery")
		return nil
	}
	if len(records) == 0 {
		s.logger.Warn("no records to send")
		return nil
	}

	body, err := renderDigestHTML(day, domain.BuildDigest(records))
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	subject := fmt.Sprintf("Federal Circuit Opinions - %s", day.Format("January 02, 2006"))
	raw := buildMIMEMessage(s.to, s.bcc, subject, body)

	if err := s.client.send(ctx, raw); err != nil {
		return fmt.Errorf("deliver digest: %w", err)
	}

	s.logger.Info("digest sent", "recipients", strings.Join(s.to, ", "), "records", len(records))
	return nil
}

func buildMIMEMessage(to, bcc []string, subject, htmlBody string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	if len(bcc) > 0 {
		fmt.Fprintf(&b, "Bcc: %s\r\n", strings.Join(bcc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.Bytes()
}

type digestEntry struct {
	Name        string
	PDFURL      string
	StatusLabel string
	StatusColor string
	Accent      string
	Summary     template.HTML
}

type digestSection struct {
	Title   string
	Entries []digestEntry
}

type digestView struct {
	DateLabel string
	Sections  []digestSection
}

// Inline styles keep the markup Outlook-friendly.
var digestTemplate = template.Must(template.New("digest").Parse(`
<html>
<body style="font-family: Arial, sans-serif; font-size: 14px; color: #333; max-width: 800px;">
    <h1 style="color: #1a1a1a; border-bottom: 3px solid #0066cc; padding-bottom: 10px;">{{.DateLabel}} Federal Circuit Opinions</h1>
{{- range .Sections}}
    <h2 style="color: #0066cc; margin-top: 30px; border-bottom: 2px solid #ccc; padding-bottom: 5px;">{{.Title}} ({{len .Entries}})</h2>
{{- range .Entries}}
    <div style="background-color: #f5f5f5; padding: 15px; margin: 15px 0; border-left: 4px solid {{.Accent}};">
        <p style="font-size: 16px; font-weight: bold; margin: 0 0 10px 0;">
            {{- if .PDFURL}}<a href="{{.PDFURL}}" style="color: #0066cc; text-decoration: underline;">{{.Name}}</a>{{else}}{{.Name}}{{end}} <span style="color: {{.StatusColor}};">({{.StatusLabel}})</span></p>
        <div style="line-height: 1.6;">{{.Summary}}</div>
    </div>
{{- end}}
{{- end}}
</body>
</html>
`))

func renderDigestHTML(day time.Time, digest domain.Digest) (string, error) {
	view := digestView{DateLabel: day.Format("January 02, 2006")}

	if summary := append(append([]domain.CaseRecord{}, digest.Dismissals...), digest.Affirmances...); len(summary) > 0 {
		view.Sections = append(view.Sections, digestSection{
			Title:   "SUMMARY DISPOSITIONS",
			Entries: toEntries(summary, "#999999"),
		})
	}
	if len(digest.PatentPrecedential) > 0 {
		view.Sections = append(view.Sections, digestSection{
			Title:   "PATENT OPINIONS - PRECEDENTIAL",
			Entries: toEntries(digest.PatentPrecedential, "#0066cc"),
		})
	}
	if len(digest.PatentOther) > 0 {
		view.Sections = append(view.Sections, digestSection{
			Title:   "PATENT OPINIONS - NON-PRECEDENTIAL",
			Entries: toEntries(digest.PatentOther, "#999999"),
		})
	}
	if len(digest.NonPatent) > 0 {
		view.Sections = append(view.Sections, digestSection{
			Title:   "NON-PATENT OPINIONS",
			Entries: toEntries(digest.NonPatent, "#666666"),
		})
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toEntries(records []domain.CaseRecord, accent string) []digestEntry {
	entries := make([]digestEntry, 0, len(records))
	for _, rec := range records {
		label, color := "Non-Precedential", "#666666"
		if rec.Meta.IsPrecedential {
			label, color = "Precedential", "#006600"
		}
		entries = append(entries, digestEntry{
			Name:        rec.Meta.CaseName,
			PDFURL:      rec.Meta.PDFURL,
			StatusLabel: label,
			StatusColor: color,
			Accent:      accent,
			Summary:     markdownToHTML(rec.Summary),
		})
	}
	return entries
}

var (
	boldExpr   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicExpr = regexp.MustCompile(`\*(.+?)\*`)
)

// markdownToHTML converts the light markdown the model emits (**bold**,
// *italic*, newlines) into HTML. Input is escaped first.
func markdownToHTML(text string) template.HTML {
	escaped := html.EscapeString(text)
	escaped = boldExpr.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = italicExpr.ReplaceAllString(escaped, "<em>$1</em>")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped)
}
