package court

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"OpinionDigest/internal/domain"
	"OpinionDigest/internal/ports"
)

// Fetcher downloads opinion PDFs into a cache directory. The filename is
// derived from the URL's final path segment, so refetching the same URL
// overwrites the same file.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.DocumentFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; nil defaults to a 60s timeout.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch downloads pdfURL into dir and returns the local document reference.
func (f *Fetcher) Fetch(ctx context.Context, pdfURL, dir string) (domain.DownloadedDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return domain.DownloadedDocument{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "OpinionDigest/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.DownloadedDocument{}, fmt.Errorf("download pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.DownloadedDocument{}, fmt.Errorf("pdf download returned %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.DownloadedDocument{}, fmt.Errorf("read pdf body: %w", err)
	}

	parsed, err := url.Parse(pdfURL)
	if err != nil {
		return domain.DownloadedDocument{}, fmt.Errorf("parse pdf url: %w", err)
	}
	filename := path.Base(parsed.Path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.DownloadedDocument{}, fmt.Errorf("create pdf dir: %w", err)
	}

	target := filepath.Join(dir, filename)
	if err := os.WriteFile(target, payload, 0o644); err != nil {
		return domain.DownloadedDocument{}, fmt.Errorf("write pdf: %w", err)
	}

	f.logger.Info("downloaded PDF", "url", pdfURL, "path", target)
	return domain.DownloadedDocument{URL: pdfURL, Path: target}, nil
}
