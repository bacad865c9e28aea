package usecase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"OpinionDigest/internal/domain"
)

func TestArtifactFilename(t *testing.T) {
	t.Parallel()

	withMetadata := domain.CaseRecord{OpinionDate: "2024-12-30", CaseNumber: "23-1446"}
	if got := artifactFilename(withMetadata); got != "2024.12.30_23-1446.txt" {
		t.Fatalf("unexpected filename %q", got)
	}

	fallback := domain.CaseRecord{
		Document: domain.DownloadedDocument{Path: "/tmp/pdfs/23-1446.OPINION.pdf"},
	}
	if got := artifactFilename(fallback); got != "23-1446.OPINION-summary.txt" {
		t.Fatalf("unexpected fallback filename %q", got)
	}
}

func TestWriteArtifactLayout(t *testing.T) {
	t.Parallel()

	dateDir := filepath.Join(t.TempDir(), "2024-12-30")
	record := domain.CaseRecord{
		Meta: domain.OpinionMetadata{
			CaseName:       "23-1446: A v. B",
			IsPrecedential: true,
		},
		OpinionDate: "2024-12-30",
		CaseNumber:  "23-1446",
		Disposition: domain.DispositionOpinion,
		Classification: domain.Classification{
			IsPatentCase:  true,
			PatentIssues:  []string{"obviousness", "claim construction"},
			PanelJudges:   []string{"Moore", "Prost", "Taranto"},
			AuthorJudge:   "Moore",
			MajorHoldings: "Claim 1 is obvious over the prior art.",
		},
		Summary: "**Bottom line**: affirmed.",
	}

	path, err := writeArtifact(dateDir, record)
	if err != nil {
		t.Fatalf("writeArtifact error: %v", err)
	}

	want := filepath.Join(dateDir, "precedential", "2024.12.30_23-1446.txt")
	if path != want {
		t.Fatalf("artifact path = %q, want %q", path, want)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	content := string(raw)

	for _, fragment := range []string{
		"Case: 23-1446: A v. B",
		"Status: Precedential",
		"Disposition: opinion",
		"Panel: Moore, Prost, Taranto",
		"Patent Issues: obviousness, claim construction",
		"Holdings:\nClaim 1 is obvious over the prior art.",
		"**Bottom line**: affirmed.",
	} {
		if !strings.Contains(content, fragment) {
			t.Errorf("artifact missing %q\n%s", fragment, content)
		}
	}
}

func TestWriteArtifactNonPrecedential(t *testing.T) {
	t.Parallel()

	dateDir := filepath.Join(t.TempDir(), "2024-12-30")
	record := domain.CaseRecord{
		OpinionDate: "2024-12-30",
		CaseNumber:  "24-2000",
		Disposition: domain.DispositionRule36,
		Summary:     "Affirmed without opinion.",
	}

	path, err := writeArtifact(dateDir, record)
	if err != nil {
		t.Fatalf("writeArtifact error: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "non-precedential" {
		t.Fatalf("expected non-precedential subdirectory, got %q", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.Contains(string(raw), "Status: Non-Precedential") {
		t.Fatalf("missing status line:\n%s", raw)
	}
}
