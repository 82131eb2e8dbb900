// Package scan implements the staged analysis pipeline: a known-pattern
// rule scan, business-logic heuristics, and a future-risk forecast.
package scan

import (
	"sort"
	"strings"

	"github.com/codeforesight/foresight/internal/domain"
	"github.com/codeforesight/foresight/internal/rules"
)

// Scanner applies the stage 1 rule catalog to source text.
type Scanner struct {
	catalog []rules.Rule
}

// NewScanner constructs a scanner over the default rule catalog.
func NewScanner() *Scanner {
	return &Scanner{catalog: rules.Stage1()}
}

// Scan runs every rule against code, capping matches per rule and
// aggregating a top-CWE summary. file is recorded on each finding and
// used for language detection.
func (s *Scanner) Scan(code, file string) domain.Stage1Result {
	lines := strings.Split(code, "\n")
	findings := make([]domain.Finding, 0)

	for _, rule := range s.catalog {
		hits := 0
		for _, loc := range rule.Pattern.FindAllStringIndex(code, -1) {
			line := lineFromOffset(code, loc[0])
			snippet := ""
			if line-1 < len(lines) {
				snippet = strings.TrimSpace(lines[line-1])
			}
			findings = append(findings, domain.NewFinding(domain.FindingInput{
				RuleID:   rule.ID,
				CWE:      rule.CWE,
				Name:     rule.Name,
				Severity: rule.Severity,
				File:     file,
				Line:     line,
				Snippet:  snippet,
				Fix:      rule.Fix,
			}))
			hits++
			if hits >= rules.MaxMatchesPerRule {
				break
			}
		}
	}

	return domain.Stage1Result{
		Findings: findings,
		Count:    len(findings),
		Summary: domain.Stage1Summary{
			TopCWE:        topCWE(findings, 3),
			TotalFindings: len(findings),
		},
	}
}

func lineFromOffset(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

// topCWE ranks CWE identifiers by occurrence, ties broken alphabetically
// for deterministic reports.
func topCWE(findings []domain.Finding, limit int) []domain.CWECount {
	counts := make(map[string]int)
	for _, f := range findings {
		cwe := f.CWE
		if cwe == "" {
			cwe = "UNKNOWN"
		}
		counts[cwe]++
	}

	ranked := make([]domain.CWECount, 0, len(counts))
	for cwe, count := range counts {
		ranked = append(ranked, domain.CWECount{CWE: cwe, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].CWE < ranked[j].CWE
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
