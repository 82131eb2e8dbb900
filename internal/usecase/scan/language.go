package scan

import (
	"path/filepath"
	"strings"
)

// Language labels used by the scanner.
const (
	LanguageC     = "c"
	LanguageOther = "other"
)

var cExtensions = map[string]bool{
	".c":   true,
	".h":   true,
	".cpp": true,
	".cc":  true,
	".cxx": true,
	".hpp": true,
}

// DetectLanguage classifies an input as C or other, first by extension,
// then by content markers when the extension is inconclusive.
func DetectLanguage(path, code string) string {
	if cExtensions[strings.ToLower(filepath.Ext(path))] {
		return LanguageC
	}
	if strings.Contains(code, "#include") || strings.Contains(code, "printf(") || strings.Contains(code, "malloc(") {
		return LanguageC
	}
	return LanguageOther
}
