package court

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"OpinionDigest/internal/domain"
	"OpinionDigest/internal/scanner"
)

const (
	courtDomain      = "uscourts.gov"
	opinionsDirPath  = "/opinions-orders/"
	pdfExt           = ".pdf"
	statusToken      = "Precedential"
	nonPrecedential  = "Non-Precedential"
	nonPrecedential2 = "Nonprecedential"
)

var (
	statusSuffixExpr = regexp.MustCompile(`(?i),?\s*(Precedential|Non-Precedential|Nonprecedential)\s*$`)
	docTagExpr       = regexp.MustCompile(`\s*\[(OPINION|ORDER)\]\s*`)
)

// CAFCSite scrapes Federal Circuit notification bodies and opinion landing
// pages. It is the one place that knows the court's markup.
type CAFCSite struct {
	client *http.Client
	logger *slog.Logger
}

var _ scanner.CourtSite = (*CAFCSite)(nil)

// NewCAFCSite wires an HTTP client; nil defaults to a 30s timeout.
func NewCAFCSite(client *http.Client, logger *slog.Logger) *CAFCSite {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CAFCSite{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *CAFCSite) Name() string {
	return "cafc"
}

// Resolve fetches a landing page and extracts the PDF URL, precedential
// status, and case name. A fetch failure is returned as an error; a page
// with no PDF anchor yields metadata with an empty PDFURL.
func (s *CAFCSite) Resolve(ctx context.Context, landingURL string) (domain.OpinionMetadata, error) {
	meta := domain.OpinionMetadata{LandingURL: landingURL}

	doc, err := s.fetchDocument(ctx, landingURL)
	if err != nil {
		return meta, err
	}

	meta.PDFURL = s.findPDFURL(doc, landingURL)
	if meta.PDFURL == "" {
		s.logger.Warn("no PDF link found on landing page", "url", landingURL)
	}

	meta.CaseName = extractCaseName(doc)

	pageText := doc.Text()
	if strings.Contains(pageText, statusToken) {
		if !strings.Contains(pageText, nonPrecedential) && !strings.Contains(pageText, nonPrecedential2) {
			meta.IsPrecedential = true
		}
	}

	return meta, nil
}

func (s *CAFCSite) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "OpinionDigest/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request landing page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("landing page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse landing page: %w", err)
	}

	return doc, nil
}

// findPDFURL prefers anchors inside the opinions directory; any other PDF
// anchor is a fallback and gets logged, since hitting it means the page
// layout drifted.
func (s *CAFCSite) findPDFURL(doc *goquery.Document, landingURL string) string {
	var pdfURL string

	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, opinionsDirPath) && strings.HasSuffix(href, pdfExt) {
			pdfURL = resolveRef(landingURL, href)
			return false
		}
		return true
	})

	if pdfURL == "" {
		doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if strings.HasSuffix(href, pdfExt) {
				pdfURL = resolveRef(landingURL, href)
				s.logger.Info("found PDF link via fallback anchor", "url", pdfURL)
				return false
			}
			return true
		})
	}

	return pdfURL
}

func resolveRef(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// extractCaseName takes the first h1, strips the trailing precedential
// status suffix and bracketed document-type tags, and collapses whitespace.
func extractCaseName(doc *goquery.Document) string {
	h1 := doc.Find("h1").First()
	if h1.Length() == 0 {
		return ""
	}

	name := strings.TrimSpace(h1.Text())
	name = statusSuffixExpr.ReplaceAllString(name, "")
	name = docTagExpr.ReplaceAllString(name, " ")
	return strings.Join(strings.Fields(name), " ")
}
