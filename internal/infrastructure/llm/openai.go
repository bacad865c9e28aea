package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"OpinionDigest/internal/config"
	"OpinionDigest/internal/domain"
	"OpinionDigest/internal/ports"
)

const (
	// Prefix sizes per request kind: headers live in the first page or two,
	// classification wants broader context, disposition checks are cheap.
	metadataSampleLimit    = 3000
	dispositionSampleLimit = 2000
	structuredSampleLimit  = 15000
)

const defaultSummaryPrompt = "Summarize the following text clearly and concisely for a layperson. " +
	"Include key points, dates, names, and outcomes."

const metadataPrompt = `Extract the following information from this legal document:
1. Opinion date (the date the opinion was issued/filed, not argued)
2. Case number

Return ONLY in this exact format:
DATE: YYYY-MM-DD
CASE: [case number]

If you cannot find either field, use "UNKNOWN" for that field.`

const dispositionPrompt = `You are triaging a Federal Circuit document. Decide which disposition type it is:
- RULE36_AFFIRMANCE: a Rule 36 judgment affirming without opinion (minimal content)
- RULE42_DISMISSAL: a procedural dismissal under Rule 42 (voluntary or otherwise, no substantive analysis)
- OPINION: anything else (a full opinion or order with substantive content)

Return ONLY one line in this exact format:
DISPOSITION: OPINION | RULE36_AFFIRMANCE | RULE42_DISMISSAL`

const structuredPrompt = `You are analyzing a legal case document. Please answer the following questions and return your response in valid JSON format.

Questions:
1. Is this a procedural dismissal with no substantive content? (true/false)
2. Is this a patent-related case? (true/false)
3. If it is a patent case, which patent issues does it address? Choose at most 5 from exactly this list: claim construction, obviousness, anticipation, infringement, eligibility, written description, enablement, indefiniteness, damages, inequitable conduct, venue, PTAB procedure. Return [] for a non-patent case.
4. Which judges were on the panel? Return as an array of judge last names. If it's Per Curiam, return ["Per Curiam"]. If unsigned, return ["Unsigned"].
5. Which judge authored the opinion? Return the last name of the authoring judge, or "Per Curiam" or "Unsigned" if applicable. Return null if you cannot determine.
6. Provide a 4-5 sentence summary of the case. Focus on the key facts, legal issues, and outcome.
7. What are the major holdings or rules from this case? Provide 1 to 4 (only the amount needed) concise bullet points highlighting only the most important legal principles. Format each holding on a new line like: "1. [holding text]\n2. [holding text]"

Return ONLY valid JSON in this exact format (no additional text):
{
  "is_dismissal": true or false,
  "is_patent_case": true or false,
  "patent_issues": ["issue1", "issue2"],
  "panel_judges": ["Judge1", "Judge2", "Judge3"],
  "author_judge": "Judge1" or null,
  "case_summary": "4-5 sentence summary here",
  "major_holdings": "1. [holding text]\n2. [holding text]"
}`

const maxPatentIssues = 5

// patentIssueVocabulary is the closed set of patent-issue tags; anything
// else the model invents gets dropped.
var patentIssueVocabulary = map[string]struct{}{
	"claim construction":  {},
	"obviousness":         {},
	"anticipation":        {},
	"infringement":        {},
	"eligibility":         {},
	"written description": {},
	"enablement":          {},
	"indefiniteness":      {},
	"damages":             {},
	"inequitable conduct": {},
	"venue":               {},
	"ptab procedure":      {},
}

// OpenAIClient implements the model boundary backed by OpenAI-compatible
// chat-completion APIs.
type OpenAIClient struct {
	endpoint      string
	model         string
	apiKey        string
	temperature   float64
	summaryPrompt string
	httpClient    *http.Client
	logger        *slog.Logger
}

var _ ports.Classifier = (*OpenAIClient)(nil)
var _ ports.Summarizer = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration. The summary prompt
// comes from the inline config value, then the prompt file, then a
// hardcoded fallback.
func NewOpenAIClient(cfg config.OpenAIConfig, logger *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	prompt := cfg.SummaryPrompt
	if prompt == "" && cfg.SummaryPromptFile != "" {
		raw, err := os.ReadFile(cfg.SummaryPromptFile)
		if err != nil {
			return nil, fmt.Errorf("read summary prompt %s: %w", cfg.SummaryPromptFile, err)
		}
		prompt = string(raw)
	}
	if prompt == "" {
		prompt = defaultSummaryPrompt
	}

	return &OpenAIClient{
		endpoint:      cfg.Endpoint,
		model:         cfg.Model,
		apiKey:        cfg.APIKey,
		temperature:   cfg.Temperature,
		summaryPrompt: prompt,
		httpClient:    &http.Client{Timeout: 120 * time.Second},
		logger:        logger,
	}, nil
}

// ExtractMetadata asks for the opinion date and case number from the
// document header. Unparseable lines are ignored.
func (c *OpenAIClient) ExtractMetadata(ctx context.Context, text string) (string, string, error) {
	response, err := c.chat(ctx, metadataPrompt, truncate(text, metadataSampleLimit))
	if err != nil {
		return "", "", err
	}

	var opinionDate, caseNumber string
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		switch {
		case strings.HasPrefix(line, "DATE:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "DATE:")); v != "UNKNOWN" {
				opinionDate = v
			}
		case strings.HasPrefix(line, "CASE:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "CASE:")); v != "UNKNOWN" {
				caseNumber = v
			}
		}
	}

	return opinionDate, caseNumber, nil
}

// ClassifyDisposition runs the cheap triage call that gates the full
// classification. Unknown labels default to a full opinion.
func (c *OpenAIClient) ClassifyDisposition(ctx context.Context, text string) (domain.Disposition, error) {
	response, err := c.chat(ctx, dispositionPrompt, truncate(text, dispositionSampleLimit))
	if err != nil {
		return domain.DispositionOpinion, err
	}

	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		if !strings.HasPrefix(line, "DISPOSITION:") {
			continue
		}
		switch strings.TrimSpace(strings.TrimPrefix(line, "DISPOSITION:")) {
		case "RULE36_AFFIRMANCE":
			return domain.DispositionRule36, nil
		case "RULE42_DISMISSAL":
			return domain.DispositionRule42, nil
		}
	}

	return domain.DispositionOpinion, nil
}

type structuredResponse struct {
	IsDismissal   bool     `json:"is_dismissal"`
	IsPatentCase  bool     `json:"is_patent_case"`
	PatentIssues  []string `json:"patent_issues"`
	PanelJudges   []string `json:"panel_judges"`
	AuthorJudge   *string  `json:"author_judge"`
	CaseSummary   string   `json:"case_summary"`
	MajorHoldings string   `json:"major_holdings"`
}

// Classify requests the structured fields. A response that fails to parse
// yields the all-default classification and a warning, never an error.
func (c *OpenAIClient) Classify(ctx context.Context, text string) (domain.Classification, error) {
	response, err := c.chat(ctx, structuredPrompt, truncate(text, structuredSampleLimit))
	if err != nil {
		return domain.Classification{}, err
	}

	var parsed structuredResponse
	if err := json.Unmarshal([]byte(extractJSONObject(response)), &parsed); err != nil {
		c.logger.Warn("failed to parse structured classification response",
			"error", err, "raw", truncate(response, 200))
		return domain.Classification{}, nil
	}

	result := domain.Classification{
		IsDismissal:   parsed.IsDismissal,
		IsPatentCase:  parsed.IsPatentCase,
		PatentIssues:  filterPatentIssues(parsed.PatentIssues),
		PanelJudges:   parsed.PanelJudges,
		CaseSummary:   parsed.CaseSummary,
		MajorHoldings: parsed.MajorHoldings,
	}
	if parsed.AuthorJudge != nil {
		result.AuthorJudge = *parsed.AuthorJudge
	}

	return result, nil
}

// Summarize sends the full document text with the configured prompt and
// returns the response verbatim.
func (c *OpenAIClient) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	response, err := c.chat(ctx, c.summaryPrompt, text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) chat(ctx context.Context, systemPrompt, userText string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userText},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// extractJSONObject pulls the outermost {...} from a response that may
// carry extra prose around the JSON.
func extractJSONObject(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return response[start : end+1]
	}
	return response
}

func filterPatentIssues(issues []string) []string {
	var kept []string
	for _, issue := range issues {
		if _, ok := patentIssueVocabulary[strings.ToLower(strings.TrimSpace(issue))]; !ok {
			continue
		}
		kept = append(kept, issue)
		if len(kept) == maxPatentIssues {
			break
		}
	}
	return kept
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
