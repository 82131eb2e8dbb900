package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Severity levels reported by all stages.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Finding represents a single issue detected by the rule scan.
type Finding struct {
	ID       string `json:"id"`
	RuleID   string `json:"ruleId"`
	CWE      string `json:"cweId"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Snippet  string `json:"snippet"`
	Fix      string `json:"fix"`
}

// FindingInput captures the information required to create a Finding.
type FindingInput struct {
	RuleID   string
	CWE      string
	Name     string
	Severity string
	File     string
	Line     int
	Snippet  string
	Fix      string
}

// NewFinding constructs a Finding with a deterministic ID.
func NewFinding(input FindingInput) Finding {
	return Finding{
		ID:       hashFinding(input),
		RuleID:   input.RuleID,
		CWE:      input.CWE,
		Name:     input.Name,
		Severity: input.Severity,
		File:     input.File,
		Line:     input.Line,
		Snippet:  input.Snippet,
		Fix:      input.Fix,
	}
}

func hashFinding(input FindingInput) string {
	payload := fmt.Sprintf("%s|%s|%s|%s|%d|%s",
		input.RuleID,
		input.CWE,
		input.File,
		input.Severity,
		input.Line,
		input.Snippet,
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// LogicFinding is a business-logic issue detected by the heuristics stage.
// Unlike rule findings it carries a free-form rationale instead of a CWE.
type LogicFinding struct {
	Issue     string `json:"issue"`
	Severity  string `json:"severity"`
	Line      int    `json:"line"`
	Snippet   string `json:"snippet"`
	Fix       string `json:"fix"`
	Rationale string `json:"rationale"`
}
