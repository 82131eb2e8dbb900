package scan

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/codeforesight/foresight/internal/domain"
)

// maxRiskScore caps the forecast; the model never claims certainty.
const maxRiskScore = 0.95

// cweRecord is a built-in reference entry for a weakness class.
type cweRecord struct {
	name        string
	description string
	trend       int // relative recent-prevalence weight
}

// cweCatalog is the built-in CWE reference table: the classes the rule
// catalog can emit plus the perennially common classes used for the
// likely-vulnerability list.
var cweCatalog = map[string]cweRecord{
	"CWE-22":  {"Path Traversal", "Improper limitation of a pathname to a restricted directory.", 6},
	"CWE-78":  {"OS Command Injection", "Improper neutralization of special elements used in an OS command.", 8},
	"CWE-79":  {"Cross-site Scripting", "Improper neutralization of input during web page generation.", 10},
	"CWE-89":  {"SQL Injection", "Improper neutralization of special elements used in an SQL command.", 9},
	"CWE-95":  {"Eval Injection", "Improper neutralization of directives in dynamically evaluated code.", 4},
	"CWE-120": {"Classic Buffer Overflow", "Buffer copy without checking size of input.", 7},
	"CWE-416": {"Use After Free", "Referencing memory after it has been freed.", 5},
	"CWE-476": {"NULL Pointer Dereference", "Dereference of a pointer expected to be valid.", 5},
	"CWE-502": {"Unsafe Deserialization", "Deserialization of untrusted data.", 6},
	"CWE-787": {"Out-of-bounds Write", "Writing past the end or before the beginning of a buffer.", 10},
	"CWE-798": {"Hardcoded Credentials", "Use of hard-coded credentials for authentication.", 6},
}

// Forecast runs the stage 3 future-risk estimate from the earlier stages'
// output. The score grows with finding density and is clamped to
// [0, maxRiskScore]; the likely-CWE list excludes classes already observed
// in the input.
func Forecast(stage1 []domain.Finding, stage2 []domain.LogicFinding) domain.Stage3Result {
	observed := observedCWEs(stage1)

	density := len(stage1) + len(stage2)
	score := math.Min(maxRiskScore, 0.1*float64(density))
	score = math.Round(score*100) / 100

	timeline := "unknown"
	switch {
	case score >= 0.5:
		timeline = "near-term"
	case density > 0:
		timeline = "mid-term"
	}

	factors := make([]string, 0, 4)
	if len(stage1) > 0 {
		factors = append(factors, fmt.Sprintf("Stage 1 findings: %d", len(stage1)))
	}
	if len(stage2) > 0 {
		factors = append(factors, fmt.Sprintf("Stage 2 logic findings: %d", len(stage2)))
	}
	if len(observed) > 0 {
		factors = append(factors, "Excluded CWEs already detected in input")
	}
	factors = append(factors, "Trend weights from built-in CWE reference table")

	return domain.Stage3Result{
		Score:     score,
		Timeline:  timeline,
		Rationale: "Forecast combines finding density with weakness-class trend weights to estimate near-term vulnerability likelihood.",
		Factors:   factors,
		LikelyCWE: likelyCWEs(observed),
	}
}

func observedCWEs(findings []domain.Finding) map[string]bool {
	observed := make(map[string]bool)
	for _, f := range findings {
		if f.CWE != "" {
			observed[f.CWE] = true
		}
	}
	return observed
}

// likelyCWEs ranks unobserved catalog entries by trend weight, ties broken
// by identifier for deterministic output.
func likelyCWEs(observed map[string]bool) []domain.LikelyCWE {
	likely := make([]domain.LikelyCWE, 0, len(cweCatalog))
	for id, record := range cweCatalog {
		if observed[id] {
			continue
		}
		likely = append(likely, domain.LikelyCWE{
			CWE:         id,
			Name:        record.name,
			Description: record.description,
			Relevance:   record.trend,
			Reference:   referenceURL(id),
		})
	}
	sort.Slice(likely, func(i, j int) bool {
		if likely[i].Relevance != likely[j].Relevance {
			return likely[i].Relevance > likely[j].Relevance
		}
		return likely[i].CWE < likely[j].CWE
	})
	if len(likely) > 5 {
		likely = likely[:5]
	}
	return likely
}

func referenceURL(cwe string) string {
	if !strings.HasPrefix(cwe, "CWE-") {
		return ""
	}
	return fmt.Sprintf("https://cwe.mitre.org/data/definitions/%s.html", strings.TrimPrefix(cwe, "CWE-"))
}
