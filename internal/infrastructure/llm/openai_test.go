package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"OpinionDigest/internal/config"
	"OpinionDigest/internal/domain"
)

// fakeModel returns a server that answers every chat request with content.
func fakeModel(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(t *testing.T, server *httptest.Server) *OpenAIClient {
	t.Helper()
	client, err := NewOpenAIClient(config.OpenAIConfig{
		Endpoint: server.URL,
		Model:    "gpt-4o",
		APIKey:   "test-key",
	}, nil)
	if err != nil {
		t.Fatalf("NewOpenAIClient error: %v", err)
	}
	client.httpClient = server.Client()
	return client
}

func TestExtractMetadata(t *testing.T) {
	t.Parallel()

	server := fakeModel(t, "DATE: 2024-12-30\nCASE: 23-1446")
	defer server.Close()

	client := newTestClient(t, server)
	date, caseNo, err := client.ExtractMetadata(context.Background(), "UNITED STATES COURT OF APPEALS...")
	if err != nil {
		t.Fatalf("ExtractMetadata error: %v", err)
	}
	if date != "2024-12-30" || caseNo != "23-1446" {
		t.Fatalf("unexpected metadata: %q %q", date, caseNo)
	}
}

func TestExtractMetadataUnknownFields(t *testing.T) {
	t.Parallel()

	server := fakeModel(t, "DATE: UNKNOWN\nCASE: UNKNOWN\nnoise line")
	defer server.Close()

	client := newTestClient(t, server)
	date, caseNo, err := client.ExtractMetadata(context.Background(), "text")
	if err != nil {
		t.Fatalf("ExtractMetadata error: %v", err)
	}
	if date != "" || caseNo != "" {
		t.Fatalf("expected empty metadata, got %q %q", date, caseNo)
	}
}

func TestClassifyDisposition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		response string
		want     domain.Disposition
	}{
		{"DISPOSITION: RULE36_AFFIRMANCE", domain.DispositionRule36},
		{"DISPOSITION: RULE42_DISMISSAL", domain.DispositionRule42},
		{"DISPOSITION: OPINION", domain.DispositionOpinion},
		{"something unexpected", domain.DispositionOpinion},
	}

	for _, tc := range cases {
		server := fakeModel(t, tc.response)
		client := newTestClient(t, server)

		got, err := client.ClassifyDisposition(context.Background(), "text")
		server.Close()
		if err != nil {
			t.Fatalf("ClassifyDisposition error: %v", err)
		}
		if got != tc.want {
			t.Fatalf("response %q: expected %s, got %s", tc.response, tc.want, got)
		}
	}
}

func TestClassifyParsesStructuredJSON(t *testing.T) {
	t.Parallel()

	response := `Here is the analysis:
{
  "is_dismissal": false,
  "is_patent_case": true,
  "patent_issues": ["obviousness", "claim construction", "made-up issue"],
  "panel_judges": ["Moore", "Prost", "Taranto"],
  "author_judge": "Moore",
  "case_summary": "The court affirmed.",
  "major_holdings": "1. Claims obvious."
}`
	server := fakeModel(t, response)
	defer server.Close()

	client := newTestClient(t, server)
	got, err := client.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}

	if !got.IsPatentCase {
		t.Fatal("expected patent case")
	}
	if len(got.PatentIssues) != 2 {
		t.Fatalf("expected out-of-vocabulary issue dropped, got %v", got.PatentIssues)
	}
	if got.AuthorJudge != "Moore" {
		t.Fatalf("unexpected author: %q", got.AuthorJudge)
	}
	if len(got.PanelJudges) != 3 {
		t.Fatalf("unexpected panel: %v", got.PanelJudges)
	}
}

func TestClassifyInvalidJSONReturnsDefaults(t *testing.T) {
	t.Parallel()

	server := fakeModel(t, "I cannot produce JSON today.")
	defer server.Close()

	client := newTestClient(t, server)
	got, err := client.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("expected nil error on parse failure, got %v", err)
	}

	want := domain.Classification{}
	if got.IsPatentCase != want.IsPatentCase || got.AuthorJudge != "" ||
		len(got.PanelJudges) != 0 || got.CaseSummary != "" || got.MajorHoldings != "" {
		t.Fatalf("expected all-default classification, got %+v", got)
	}
}

func TestSummarizeEmptyText(t *testing.T) {
	t.Parallel()

	server := fakeModel(t, "should not be called")
	defer server.Close()

	client := newTestClient(t, server)
	summary, err := client.Summarize(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if summary != "" {
		t.Fatalf("expected empty summary, got %q", summary)
	}
}

func TestFilterPatentIssuesCapsAtFive(t *testing.T) {
	t.Parallel()

	issues := []string{"obviousness", "anticipation", "infringement", "eligibility", "venue", "damages"}
	if got := filterPatentIssues(issues); len(got) != 5 {
		t.Fatalf("expected cap at 5, got %v", got)
	}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewOpenAIClient(config.OpenAIConfig{}, nil); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
