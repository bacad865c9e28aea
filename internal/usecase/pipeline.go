package usecase

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"OpinionDigest/internal/config"
	"OpinionDigest/internal/domain"
	"OpinionDigest/internal/ports"
	"OpinionDigest/internal/scanner"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Registry   *scanner.Registry
	Sources    []config.SourceConfig
	Mail       ports.MailSource
	Fetcher    ports.DocumentFetcher
	Extractor  ports.TextExtractor
	Classifier ports.Classifier
	Summarizer ports.Summarizer
	Digest     ports.DigestSender
	Notifier   ports.Notifier
	Ledger     ports.CaseLedger
	PDFDir     string
	SummaryDir string
	Logger     *slog.Logger
}

// Pipeline drives one end-to-end check cycle: search notifications,
// extract links, resolve landing pages, fetch and summarize opinions,
// persist artifacts, and deliver the digest.
type Pipeline struct {
	registry   *scanner.Registry
	sources    []config.SourceConfig
	mail       ports.MailSource
	fetcher    ports.DocumentFetcher
	extractor  ports.TextExtractor
	classifier ports.Classifier
	summarizer ports.Summarizer
	digest     ports.DigestSender
	notifier   ports.Notifier
	ledger     ports.CaseLedger
	pdfDir     string
	summaryDir string
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry:   deps.Registry,
		sources:    deps.Sources,
		mail:       deps.Mail,
		fetcher:    deps.Fetcher,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		summarizer: deps.Summarizer,
		digest:     deps.Digest,
		notifier:   deps.Notifier,
		ledger:     deps.Ledger,
		pdfDir:     deps.PDFDir,
		summaryDir: deps.SummaryDir,
		logger:     logger,
	}
}

// ProcessDay runs one cycle for the given calendar date and returns the
// number of opinions processed. A date whose output directory already holds
// artifacts short-circuits to zero work unless force is set.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time, force bool) (int, error) {
	dateDir := filepath.Join(p.summaryDir, day.Format("2006-01-02"))

	if !force {
		if n := countArtifacts(dateDir); n > 0 {
			p.logger.Info("summaries already exist, skipping run",
				"date", day.Format("2006-01-02"), "artifacts", n)
			return 0, nil
		}
	}

	var records []domain.CaseRecord

	for _, source := range p.sources {
		site, err := p.registry.Resolve(source.Site)
		if err != nil {
			return 0, fmt.Errorf("source %s: %w", source.Name, err)
		}

		messages, err := p.mail.Search(ctx, source.Sender, day)
		if err != nil {
			p.logger.Warn("mailbox search failed, skipping source",
				"source", source.Name, "error", err)
			continue
		}

		for i, msg := range messages {
			p.logger.Info("processing message", "source", source.Name,
				"index", i+1, "total", len(messages))

			if strings.TrimSpace(msg.Body) == "" {
				p.logger.Warn("empty message body, skipping", "message", msg.ID)
				continue
			}

			links := site.ExtractLinks(msg.Body)
			if len(links) == 0 {
				p.logger.Warn("no court links found in message", "message", msg.ID)
				continue
			}
			p.logger.Info("found links in message", "message", msg.ID, "count", len(links))

			for _, link := range links {
				record, ok := p.processLink(ctx, site, link, dateDir, force)
				if !ok {
					continue
				}
				records = append(records, record)
			}
		}
	}

	if len(records) == 0 {
		p.logger.Info("no opinions processed", "date", day.Format("2006-01-02"))
		return 0, nil
	}

	if p.digest != nil {
		if err := p.digest.SendDigest(ctx, day, records); err != nil {
			// Artifacts are already on disk; delivery failure is reported only.
			p.logger.Warn("digest delivery failed", "error", err)
		}
	}

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, buildNotifierDigest(day, records)); err != nil {
			p.logger.Warn("notifier delivery failed", "error", err)
		}
	}

	return len(records), nil
}

// processLink runs the per-link pipeline. Every failure is isolated: the
// link is skipped with a warning and the batch continues.
func (p *Pipeline) processLink(ctx context.Context, site scanner.CourtSite, link, dateDir string, force bool) (domain.CaseRecord, bool) {
	p.logger.Info("processing court link", "url", link)

	meta, err := site.Resolve(ctx, link)
	if err != nil {
		p.logger.Warn("landing page unresolved", "url", link, "error", err)
		return domain.CaseRecord{}, false
	}
	if !meta.Resolved() {
		p.logger.Warn("landing page has no PDF link", "url", link)
		return domain.CaseRecord{}, false
	}

	doc, err := p.fetcher.Fetch(ctx, meta.PDFURL, p.pdfDir)
	if err != nil {
		p.logger.Warn("pdf download failed", "url", meta.PDFURL, "error", err)
		return domain.CaseRecord{}, false
	}

	text, err := p.extractor.Extract(doc.Path)
	if err != nil {
		p.logger.Warn("text extraction failed", "path", doc.Path, "error", err)
		return domain.CaseRecord{}, false
	}
	if strings.TrimSpace(text) == "" {
		p.logger.Warn("no text extracted", "path", doc.Path)
		return domain.CaseRecord{}, false
	}

	record := domain.CaseRecord{Meta: meta, Document: doc}

	record.OpinionDate, record.CaseNumber, err = p.classifier.ExtractMetadata(ctx, text)
	if err != nil {
		p.logger.Warn("metadata extraction failed, continuing without it", "error", err)
	}

	if p.ledger != nil && !force {
		key := ledgerKey(record)
		seen, err := p.ledger.AlreadyProcessed(ctx, []string{key})
		if err != nil {
			p.logger.Warn("ledger lookup failed", "error", err)
		} else if seen[key] {
			p.logger.Info("case already in ledger, skipping", "key", key)
			return domain.CaseRecord{}, false
		}
	}

	record.Disposition, err = p.classifier.ClassifyDisposition(ctx, text)
	if err != nil {
		p.logger.Warn("disposition check failed, assuming full opinion", "error", err)
		record.Disposition = domain.DispositionOpinion
	}

	// Terminal dispositions carry no substantive content; skip the
	// expensive classification call and leave the fields empty.
	if !record.Disposition.Terminal() {
		record.Classification, err = p.classifier.Classify(ctx, text)
		if err != nil {
			p.logger.Warn("classification failed, using defaults", "error", err)
			record.Classification = domain.Classification{}
		}
	}

	record.Summary, err = p.summarizer.Summarize(ctx, text)
	if err != nil {
		p.logger.Warn("summarization failed, skipping opinion", "url", link, "error", err)
		return domain.CaseRecord{}, false
	}

	path, err := writeArtifact(dateDir, record)
	if err != nil {
		p.logger.Warn("artifact write failed", "error", err)
		return domain.CaseRecord{}, false
	}
	record.ArtifactPath = path
	p.logger.Info("wrote summary", "path", path)

	if p.ledger != nil {
		if err := p.ledger.SaveProcessed(ctx, record); err != nil {
			p.logger.Warn("ledger save failed", "error", err)
		}
	}

	return record, true
}

// countArtifacts reports the number of summary files under dir, walking
// the precedential/non-precedential subdirectories.
func countArtifacts(dir string) int {
	count := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".txt") {
			count++
		}
		return nil
	})
	return count
}

func ledgerKey(record domain.CaseRecord) string {
	if record.CaseNumber != "" {
		return record.OpinionDate + "/" + record.CaseNumber
	}
	return record.Document.URL
}

// buildNotifierDigest renders the short secondary-channel digest.
func buildNotifierDigest(day time.Time, records []domain.CaseRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Federal Circuit Opinions %s\n", day.Format("2006-01-02"))
	for _, rec := range records {
		status := "Non-Precedential"
		if rec.Meta.IsPrecedential {
			status = "Precedential"
		}
		name := rec.Meta.CaseName
		if name == "" {
			name = rec.CaseNumber
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", name, status)
	}
	return sb.String()
}
