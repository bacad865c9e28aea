package domain

import "time"

// NotificationMessage is one court notification email as delivered by the
// mail source. Body is already decoded to plain text and truncated at the
// boilerplate footer.
type NotificationMessage struct {
	ID       string
	Sender   string
	Subject  string
	Received time.Time
	Body     string
}

// OpinionMetadata carries the three signals scraped from a landing page.
// An empty PDFURL marks the landing page as unresolvable.
type OpinionMetadata struct {
	LandingURL     string
	PDFURL         string
	IsPrecedential bool
	CaseName       string
}

// Resolved reports whether the landing page yielded a usable PDF target.
func (m OpinionMetadata) Resolved() bool {
	return m.PDFURL != ""
}

// DownloadedDocument references a PDF persisted on disk together with the
// URL it was fetched from. Immutable after write; refetching the same URL
// overwrites the same path.
type DownloadedDocument struct {
	URL  string
	Path string
}

// Disposition is the terminal-disposition category assigned before full
// classification. Rule 36 affirmances and Rule 42(b) dismissals carry no
// substantive content and skip the expensive classification call.
type Disposition string

const (
	DispositionOpinion Disposition = "opinion"
	DispositionRule36  Disposition = "rule36_affirmance"
	DispositionRule42  Disposition = "rule42_dismissal"
)

// Terminal reports whether the disposition short-circuits classification.
func (d Disposition) Terminal() bool {
	return d == DispositionRule36 || d == DispositionRule42
}

// Classification holds the structured fields extracted by the model.
// A response that fails to parse yields the zero value, never an error.
type Classification struct {
	IsDismissal   bool
	IsPatentCase  bool
	PatentIssues  []string
	PanelJudges   []string
	AuthorJudge   string
	CaseSummary   string
	MajorHoldings string
}

// CaseRecord is the terminal aggregate for one opinion: scraped metadata
// merged with model-derived classification and the persisted summary.
type CaseRecord struct {
	Meta           OpinionMetadata
	Document       DownloadedDocument
	OpinionDate    string // YYYY-MM-DD, empty when the model could not find it
	CaseNumber     string
	Disposition    Disposition
	Classification Classification
	Summary        string
	ArtifactPath   string
}

// SummaryDisposition reports whether the record belongs in the summary
// dispositions digest bucket rather than the patent/non-patent tree.
func (r CaseRecord) SummaryDisposition() bool {
	return r.Disposition.Terminal() || r.Classification.IsDismissal
}
