package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	jsonwriter "github.com/codeforesight/foresight/internal/adapter/output/json"
	"github.com/codeforesight/foresight/internal/usecase/scan"
)

type clock func() string

// Writer renders scan reports into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a Markdown artifact to disk.
func (w *Writer) Write(ctx context.Context, artifact scan.ReportArtifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.md", jsonwriter.Sanitise(artifact.Input), w.now())
	path := filepath.Join(artifact.OutputDir, filename)

	content := buildContent(artifact)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

func buildContent(artifact scan.ReportArtifact) string {
	var builder strings.Builder
	caser := cases.Title(language.English)
	report := artifact.Report

	builder.WriteString("# Security Scan Report\n\n")
	builder.WriteString(fmt.Sprintf("- Input: %s\n\n", report.Input))

	if report.Stage1 != nil {
		builder.WriteString("## Stage 1: Known Patterns\n\n")
		if len(report.Stage1.Findings) == 0 {
			builder.WriteString("No findings reported.\n\n")
		} else {
			for _, finding := range report.Stage1.Findings {
				builder.WriteString(fmt.Sprintf("### %s (%s)\n", finding.Name, caser.String(finding.Severity)))
				builder.WriteString(fmt.Sprintf("- Rule: %s (%s)\n", finding.RuleID, finding.CWE))
				builder.WriteString(fmt.Sprintf("- File: %s:%d\n", finding.File, finding.Line))
				if finding.Snippet != "" {
					builder.WriteString(fmt.Sprintf("- Snippet: `%s`\n", finding.Snippet))
				}
				builder.WriteString(fmt.Sprintf("- Fix: %s\n", finding.Fix))
				builder.WriteString("\n")
			}
			if len(report.Stage1.Summary.TopCWE) > 0 {
				builder.WriteString("Top CWEs:\n\n")
				for _, entry := range report.Stage1.Summary.TopCWE {
					builder.WriteString(fmt.Sprintf("- %s: %d\n", entry.CWE, entry.Count))
				}
				builder.WriteString("\n")
			}
		}
	}

	if report.Stage2 != nil {
		builder.WriteString("## Stage 2: Logic Flaws\n\n")
		if len(report.Stage2.Findings) == 0 {
			builder.WriteString("No findings reported.\n\n")
		} else {
			for _, finding := range report.Stage2.Findings {
				builder.WriteString(fmt.Sprintf("### %s (%s)\n", finding.Issue, caser.String(finding.Severity)))
				builder.WriteString(fmt.Sprintf("- Line: %d\n", finding.Line))
				if finding.Rationale != "" {
					builder.WriteString(fmt.Sprintf("- Rationale: %s\n", finding.Rationale))
				}
				builder.WriteString(fmt.Sprintf("- Fix: %s\n", finding.Fix))
				builder.WriteString("\n")
			}
		}
	}

	if report.Stage3 != nil {
		builder.WriteString("## Stage 3: Future Risk\n\n")
		builder.WriteString(fmt.Sprintf("- Score: %.2f\n", report.Stage3.Score))
		builder.WriteString(fmt.Sprintf("- Timeline: %s\n", report.Stage3.Timeline))
		builder.WriteString(fmt.Sprintf("- Rationale: %s\n\n", report.Stage3.Rationale))

		if len(report.Stage3.LikelyCWE) > 0 {
			builder.WriteString("Likely weakness classes:\n\n")
			for _, likely := range report.Stage3.LikelyCWE {
				builder.WriteString(fmt.Sprintf("- %s %s: %s\n", likely.CWE, likely.Name, likely.Description))
			}
			builder.WriteString("\n")
		}
	}

	return builder.String()
}
