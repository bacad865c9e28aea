package court

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const precedentialPage = `
<html>
<body>
  <h1>23-1446: FOCUS PRODUCTS GROUP INTERNATIONAL, LLC v. KARTRI SALES CO., INC. [OPINION], Precedential</h1>
  <p>Status: Precedential</p>
  <a href="/opinions-orders/23-1446.OPINION.12-30-2024_2441523.pdf">Download opinion</a>
</body>
</html>`

const nonPrecedentialPage = `
<html>
<body>
  <h1>24-1001: ACME CORP. v. WIDGET LLC [OPINION], Non-Precedential</h1>
  <p>Status: Non-Precedential</p>
  <a href="/opinions-orders/24-1001.OPINION.pdf">Download opinion</a>
</body>
</html>`

func TestResolvePrecedentialOpinion(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(precedentialPage))
	}))
	defer server.Close()

	site := NewCAFCSite(server.Client(), nil)
	meta, err := site.Resolve(context.Background(), server.URL+"/case/23-1446")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	wantPDF := server.URL + "/opinions-orders/23-1446.OPINION.12-30-2024_2441523.pdf"
	if meta.PDFURL != wantPDF {
		t.Fatalf("unexpected pdf url: %s", meta.PDFURL)
	}
	if !meta.IsPrecedential {
		t.Fatal("expected precedential status")
	}
	if meta.CaseName != "23-1446: FOCUS PRODUCTS GROUP INTERNATIONAL, LLC v. KARTRI SALES CO., INC." {
		t.Fatalf("unexpected case name: %q", meta.CaseName)
	}
}

func TestResolveNonPrecedentialDespiteSubstring(t *testing.T) {
	t.Parallel()

	// "Non-Precedential" contains "Precedential" as a substring; the flag
	// must still resolve to false.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(nonPrecedentialPage))
	}))
	defer server.Close()

	site := NewCAFCSite(server.Client(), nil)
	meta, err := site.Resolve(context.Background(), server.URL+"/case/24-1001")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if meta.IsPrecedential {
		t.Fatal("expected non-precedential status")
	}
	if meta.CaseName != "24-1001: ACME CORP. v. WIDGET LLC" {
		t.Fatalf("unexpected case name: %q", meta.CaseName)
	}
}

func TestResolveFallbackAnchor(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	  <h1>24-2000: SOMEONE v. SOMEONE ELSE [ORDER], Precedential</h1>
	  <a href="/documents/24-2000.pdf">Order</a>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	site := NewCAFCSite(server.Client(), nil)
	meta, err := site.Resolve(context.Background(), server.URL+"/case/24-2000")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if meta.PDFURL != server.URL+"/documents/24-2000.pdf" {
		t.Fatalf("expected fallback anchor to be used, got %q", meta.PDFURL)
	}
}

func TestResolveNoPDFAnchor(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>24-3000: A v. B</h1></body></html>`))
	}))
	defer server.Close()

	site := NewCAFCSite(server.Client(), nil)
	meta, err := site.Resolve(context.Background(), server.URL+"/case/24-3000")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if meta.Resolved() {
		t.Fatalf("expected unresolved metadata, got pdf url %q", meta.PDFURL)
	}
}

func TestResolveUnreachablePage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	site := NewCAFCSite(server.Client(), nil)
	if _, err := site.Resolve(context.Background(), server.URL+"/case/missing"); err == nil {
		t.Fatal("expected error for unreachable landing page")
	}
}

func TestExtractCaseNameCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	html := "<html><body><h1>  23-1446:   X  v.  Y   [OPINION],  Precedential </h1></body></html>"
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	if got := extractCaseName(doc); got != "23-1446: X v. Y" {
		t.Fatalf("unexpected case name: %q", got)
	}
}
