package sarif

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	jsonwriter "github.com/codeforesight/foresight/internal/adapter/output/json"
	"github.com/codeforesight/foresight/internal/domain"
	"github.com/codeforesight/foresight/internal/usecase/scan"
	"github.com/codeforesight/foresight/internal/version"
)

// Writer implements the scan.SARIFWriter interface.
type Writer struct {
	now func() string
}

// NewWriter creates a new SARIF writer.
func NewWriter(now func() string) *Writer {
	return &Writer{now: now}
}

// Write persists a scan report to disk as a SARIF 2.1.0 file.
func (w *Writer) Write(ctx context.Context, artifact scan.ReportArtifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(artifact.OutputDir, fmt.Sprintf("%s_%s.sarif", jsonwriter.Sanitise(artifact.Input), w.now()))

	sarifDoc := convertToSARIF(artifact)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create sarif file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(sarifDoc); err != nil {
		return "", fmt.Errorf("encode report to sarif: %w", err)
	}

	return path, nil
}

// logicRuleID tags stage 2 heuristic findings, which carry no rule of
// their own.
const logicRuleID = "S2-LOGIC"

// convertToSARIF converts a domain.Report to SARIF format.
// Stage 1 and stage 2 findings become results; the stage 3 forecast has
// no source location and is carried as run properties instead.
func convertToSARIF(artifact scan.ReportArtifact) map[string]interface{} {
	findings := artifact.Report.ActionableFindings()

	results := make([]map[string]interface{}, 0, len(findings))
	seenRules := make(map[string]bool)
	rules := make([]map[string]interface{}, 0)

	for _, finding := range findings {
		messageText := finding.Name
		if messageText == "" {
			messageText = "No description provided"
		}

		ruleID := finding.RuleID
		if ruleID == "" {
			ruleID = "foresight"
		}

		if !seenRules[ruleID] {
			seenRules[ruleID] = true
			rule := map[string]interface{}{
				"id":               ruleID,
				"shortDescription": map[string]interface{}{"text": messageText},
			}
			if finding.CWE != "" {
				rule["properties"] = map[string]interface{}{"cwe": finding.CWE}
			}
			rules = append(rules, rule)
		}

		result := map[string]interface{}{
			"ruleId": ruleID,
			"level":  convertSeverity(finding.Severity),
			"message": map[string]interface{}{
				"text": messageText,
			},
		}

		if finding.File != "" {
			physicalLocation := map[string]interface{}{
				"artifactLocation": map[string]interface{}{
					"uri": finding.File,
				},
			}

			// Don't fabricate line 1 for findings without a location.
			if finding.Line >= 1 {
				physicalLocation["region"] = map[string]interface{}{
					"startLine": finding.Line,
					"endLine":   finding.Line,
				}
			}

			result["locations"] = []map[string]interface{}{
				{"physicalLocation": physicalLocation},
			}
		}

		properties := map[string]interface{}{}
		if finding.Fix != "" {
			properties["fix"] = finding.Fix
		}
		if finding.Snippet != "" {
			properties["snippet"] = finding.Snippet
		}
		if len(properties) > 0 {
			result["properties"] = properties
		}

		results = append(results, result)
	}

	if artifact.Report.Stage2 != nil && len(artifact.Report.Stage2.Findings) > 0 {
		if !seenRules[logicRuleID] {
			seenRules[logicRuleID] = true
			rules = append(rules, map[string]interface{}{
				"id":               logicRuleID,
				"shortDescription": map[string]interface{}{"text": "Business-logic flaw"},
			})
		}
		for _, finding := range artifact.Report.Stage2.Findings {
			result := map[string]interface{}{
				"ruleId": logicRuleID,
				"level":  convertSeverity(finding.Severity),
				"message": map[string]interface{}{
					"text": finding.Issue,
				},
			}

			physicalLocation := map[string]interface{}{
				"artifactLocation": map[string]interface{}{
					"uri": artifact.Input,
				},
			}
			if finding.Line >= 1 {
				physicalLocation["region"] = map[string]interface{}{
					"startLine": finding.Line,
					"endLine":   finding.Line,
				}
			}
			result["locations"] = []map[string]interface{}{
				{"physicalLocation": physicalLocation},
			}

			properties := map[string]interface{}{}
			if finding.Fix != "" {
				properties["fix"] = finding.Fix
			}
			if finding.Rationale != "" {
				properties["rationale"] = finding.Rationale
			}
			if len(properties) > 0 {
				result["properties"] = properties
			}

			results = append(results, result)
		}
	}

	return map[string]interface{}{
		"version": "2.1.0",
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"runs": []map[string]interface{}{
			{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":           "foresight",
						"informationUri": "https://github.com/codeforesight/foresight",
						"version":        version.Value(),
						"rules":          rules,
					},
				},
				"results":    results,
				"properties": buildProperties(artifact.Report),
			},
		},
	}
}

// buildProperties carries the non-locatable parts of the report.
func buildProperties(report domain.Report) map[string]interface{} {
	properties := map[string]interface{}{
		"input": report.Input,
	}

	if report.Stage1 != nil {
		properties["stage1FindingCount"] = report.Stage1.Count
	}
	if report.Stage2 != nil {
		properties["stage2Status"] = report.Stage2.Status
	}
	if report.Stage3 != nil {
		properties["riskScore"] = report.Stage3.Score
		properties["riskTimeline"] = report.Stage3.Timeline
	}

	return properties
}

// convertSeverity maps finding severities to SARIF levels.
func convertSeverity(severity string) string {
	switch severity {
	case domain.SeverityHigh:
		return "error"
	case domain.SeverityMedium:
		return "warning"
	case domain.SeverityLow:
		return "note"
	default:
		return "warning"
	}
}
