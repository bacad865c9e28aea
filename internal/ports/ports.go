package ports

import (
	"context"
	"time"

	"OpinionDigest/internal/domain"
)

// MailSource queries the notification mailbox by sender and calendar date.
type MailSource interface {
	Search(ctx context.Context, sender string, day time.Time) ([]domain.NotificationMessage, error)
}

// DocumentFetcher downloads a resolved PDF URL into the target directory.
// A failed fetch returns an error; the caller skips the opinion.
type DocumentFetcher interface {
	Fetch(ctx context.Context, pdfURL, dir string) (domain.DownloadedDocument, error)
}

// TextExtractor turns a downloaded PDF into plain text.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// Classifier is the model boundary for metadata, disposition, and
// structured classification requests.
type Classifier interface {
	ExtractMetadata(ctx context.Context, text string) (opinionDate, caseNumber string, err error)
	ClassifyDisposition(ctx context.Context, text string) (domain.Disposition, error)
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// Summarizer generates the free-text summary persisted as the artifact body.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// DigestSender delivers the aggregated digest email for one run.
type DigestSender interface {
	SendDigest(ctx context.Context, day time.Time, records []domain.CaseRecord) error
}

// Notifier pushes a short plain-text digest to a secondary channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// CaseLedger records per-case completion for audit and resume diagnostics.
type CaseLedger interface {
	AlreadyProcessed(ctx context.Context, keys []string) (map[string]bool, error)
	SaveProcessed(ctx context.Context, record domain.CaseRecord) error
}

// Scheduler controls when pipeline runs execute in daemon mode.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
