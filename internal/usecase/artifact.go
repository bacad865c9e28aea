package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"OpinionDigest/internal/domain"
)

// writeArtifact persists one record as a UTF-8 text file under the
// per-date directory, split into precedential/non-precedential
// subdirectories, and returns the written path.
func writeArtifact(dateDir string, record domain.CaseRecord) (string, error) {
	subdir := "non-precedential"
	if record.Meta.IsPrecedential {
		subdir = "precedential"
	}

	dir := filepath.Join(dateDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create summary dir: %w", err)
	}

	path := filepath.Join(dir, artifactFilename(record))
	if err := os.WriteFile(path, []byte(renderArtifact(record)), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	return path, nil
}

// artifactFilename derives the output name from (opinion date, case number)
// when both are known, else from the source PDF's base name.
func artifactFilename(record domain.CaseRecord) string {
	if record.OpinionDate != "" && record.CaseNumber != "" {
		return strings.ReplaceAll(record.OpinionDate, "-", ".") + "_" + record.CaseNumber + ".txt"
	}

	base := filepath.Base(record.Document.Path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "-summary.txt"
}

func renderArtifact(record domain.CaseRecord) string {
	var sb strings.Builder

	if record.Meta.CaseName != "" {
		fmt.Fprintf(&sb, "Case: %s\n", record.Meta.CaseName)
	}
	if record.CaseNumber != "" {
		fmt.Fprintf(&sb, "Case Number: %s\n", record.CaseNumber)
	}
	if record.OpinionDate != "" {
		fmt.Fprintf(&sb, "Opinion Date: %s\n", record.OpinionDate)
	}

	status := "Non-Precedential"
	if record.Meta.IsPrecedential {
		status = "Precedential"
	}
	fmt.Fprintf(&sb, "Status: %s\n", status)
	fmt.Fprintf(&sb, "Disposition: %s\n", record.Disposition)

	cls := record.Classification
	if len(cls.PanelJudges) > 0 {
		fmt.Fprintf(&sb, "Panel: %s\n", strings.Join(cls.PanelJudges, ", "))
	}
	if cls.AuthorJudge != "" {
		fmt.Fprintf(&sb, "Author: %s\n", cls.AuthorJudge)
	}
	if len(cls.PatentIssues) > 0 {
		fmt.Fprintf(&sb, "Patent Issues: %s\n", strings.Join(cls.PatentIssues, ", "))
	}

	if cls.MajorHoldings != "" {
		fmt.Fprintf(&sb, "\nHoldings:\n%s\n", cls.MajorHoldings)
	}

	fmt.Fprintf(&sb, "\n%s\n", record.Summary)
	return sb.String()
}
