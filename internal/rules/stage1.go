// Package rules holds the known-pattern rule catalog applied by the
// stage 1 scan.
package rules

import "regexp"

// Rule pairs a compiled detection pattern with its CWE classification and
// remediation hint.
type Rule struct {
	ID       string
	CWE      string
	Name     string
	Severity string
	Pattern  *regexp.Regexp
	Fix      string
}

// MaxMatchesPerRule caps how many findings a single rule may emit for one
// input, keeping reports readable on files that trip a pattern repeatedly.
const MaxMatchesPerRule = 3

// Stage1 returns the known-pattern catalog. The slice is freshly built per
// call so callers may not mutate shared state.
func Stage1() []Rule {
	return []Rule{
		{
			ID:       "S1-EXEC-EVAL",
			CWE:      "CWE-95",
			Name:     "Dynamic code execution",
			Severity: "high",
			Pattern:  regexp.MustCompile(`(?i)\b(eval|exec)\s*\(`),
			Fix:      "Avoid eval/exec; use safe parsing or a restricted sandbox.",
		},
		{
			ID:       "S1-CMD-INJECT",
			CWE:      "CWE-78",
			Name:     "OS command injection",
			Severity: "high",
			Pattern:  regexp.MustCompile(`(?i)\b(os\.system|subprocess\.(popen|run|call))\s*\(`),
			Fix:      "Use parameterized APIs and validate/escape user input.",
		},
		{
			ID:       "S1-SHELL-TRUE",
			CWE:      "CWE-78",
			Name:     "Subprocess shell usage",
			Severity: "medium",
			Pattern:  regexp.MustCompile(`(?i)shell\s*=\s*True`),
			Fix:      "Avoid shell=True; pass args as a list and validate input.",
		},
		{
			ID:       "S1-SQL-CONCAT",
			CWE:      "CWE-89",
			Name:     "Potential SQL injection",
			Severity: "high",
			Pattern:  regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE).*(\+|%s|format\(|f")`),
			Fix:      "Use parameterized queries and input validation.",
		},
		{
			ID:       "S1-DESERIALIZE",
			CWE:      "CWE-502",
			Name:     "Unsafe deserialization",
			Severity: "high",
			Pattern:  regexp.MustCompile(`(?i)\b(pickle\.loads|yaml\.load)\s*\(`),
			Fix:      "Avoid deserializing untrusted data; use safe loaders.",
		},
		{
			ID:       "S1-XSS-HTML",
			CWE:      "CWE-79",
			Name:     "Direct HTML injection",
			Severity: "medium",
			Pattern:  regexp.MustCompile(`(?i)(innerHTML\s*=|dangerouslySetInnerHTML)`),
			Fix:      "Escape/encode output and avoid raw HTML injection.",
		},
		{
			ID:       "S1-PATH-TRAVERSAL",
			CWE:      "CWE-22",
			Name:     "Path traversal pattern",
			Severity: "medium",
			Pattern:  regexp.MustCompile(`\.\./`),
			Fix:      "Normalize paths and enforce allowlists.",
		},
		{
			ID:       "S1-HARDCODED-CREDS",
			CWE:      "CWE-798",
			Name:     "Hardcoded credentials",
			Severity: "medium",
			Pattern:  regexp.MustCompile(`(?i)(password|secret|api_key)\s*=\s*["'][^"']+["']`),
			Fix:      "Move secrets to environment variables or a secrets manager.",
		},
		{
			ID:       "S1-UNSAFE-C-FN",
			CWE:      "CWE-120",
			Name:     "Potential unsafe C memory operation",
			Severity: "high",
			Pattern:  regexp.MustCompile(`(?i)\b(strcpy|strcat|sprintf|gets|memcpy)\s*\(`),
			Fix:      "Use bounded copies and validate buffer sizes.",
		},
	}
}
