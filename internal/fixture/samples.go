// Package fixture ships the seeded demo pair the scanner is demonstrated
// against: a C program with classic vulnerability patterns and a variant
// with the memory-safety issues patched, plus a runnable Go rendition of
// the fixed program built on the bounded copy primitive.
package fixture

import _ "embed"

//go:embed testdata/demo_vuln.c
var vulnerable string

//go:embed testdata/demo_vuln_stage1_fixed.c
var stage1Fixed string

// Vulnerable returns the seeded demo source: unbounded copies, SQL and
// HTML string interpolation, a hardcoded password, a post-checkout coupon
// flaw, and an ungated admin report.
func Vulnerable() string {
	return vulnerable
}

// Stage1Fixed returns the same program with the memory-safety and
// injection issues patched. The business-logic flaws are intentionally
// left in place for the heuristics stage to find.
func Stage1Fixed() string {
	return stage1Fixed
}

// VulnerableName and Stage1FixedName are the canonical file names used
// when the fixtures are scanned, keeping language detection on the C path.
const (
	VulnerableName  = "demo_vuln.c"
	Stage1FixedName = "demo_vuln_stage1_fixed.c"
)
