package domain

// CWECount pairs a CWE identifier with its occurrence count.
type CWECount struct {
	CWE   string `json:"cweId"`
	Count int    `json:"count"`
}

// Stage1Result holds the known-pattern scan output.
type Stage1Result struct {
	Findings []Finding     `json:"findings"`
	Count    int           `json:"count"`
	Summary  Stage1Summary `json:"summary"`
}

// Stage1Summary aggregates the scan findings.
type Stage1Summary struct {
	TopCWE        []CWECount `json:"topCwe"`
	TotalFindings int        `json:"totalFindings"`
}

// Stage2Result holds the business-logic heuristics output.
type Stage2Result struct {
	Status   string         `json:"status"`
	Findings []LogicFinding `json:"findings"`
}

// LikelyCWE describes a weakness class the forecast considers probable but
// not yet observed in the input.
type LikelyCWE struct {
	CWE         string `json:"cweId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Relevance   int    `json:"relevanceScore"`
	Reference   string `json:"reference"`
}

// Stage3Result holds the future-risk forecast.
type Stage3Result struct {
	Score     float64     `json:"score"`
	Timeline  string      `json:"timeline"`
	Rationale string      `json:"rationale"`
	Factors   []string    `json:"factors"`
	LikelyCWE []LikelyCWE `json:"likelyVulnerabilities"`
}

// Report is the full pipeline output for one input.
type Report struct {
	Input  string        `json:"input"`
	Stage1 *Stage1Result `json:"stage1Known,omitempty"`
	Stage2 *Stage2Result `json:"stage2Unknown,omitempty"`
	Stage3 *Stage3Result `json:"stage3Future,omitempty"`
}

// ActionableFindings returns the stage 1 findings, excluding none: every
// rule finding is actionable for gating purposes.
func (r Report) ActionableFindings() []Finding {
	if r.Stage1 == nil {
		return nil
	}
	return r.Stage1.Findings
}
