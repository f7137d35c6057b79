// Package naming extracts the audited entity's name from free text,
// spreadsheet cells and file names, and picks one by source priority.
package naming

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	preparedByMarker   = "编制单位"
	shareholdersMarker = "全体股东"
)

var (
	preparedByPattern   = regexp.MustCompile(`编制单位[：:]\s*(.+)`)
	shareholdersPattern = regexp.MustCompile(`(.+?(?:公司|企业|集团))\s*全体股东`)
	fallbackStrip       = regexp.MustCompile(`(全体股东|：|:|\s*$)`)
	ordinalPrefix       = regexp.MustCompile(`^[\d、.\s]+`)
	entitySuffix        = regexp.MustCompile(`(.+?(?:公司|企业|集团))`)

	entityTokens = []string{"公司", "企业", "集团", "有限"}
)

// Rule extracts a name from one piece of text, "" when it does not apply.
type Rule struct {
	Name    string
	Extract func(text string) string
}

// TextRules are tried in order; the first non-empty result wins.
var TextRules = []Rule{
	{Name: "prepared_by", Extract: extractPreparedBy},
	{Name: "shareholders", Extract: extractShareholders},
	{Name: "entity_fallback", Extract: extractFallback},
}

// extractPreparedBy handles "编制单位：xxx公司".
func extractPreparedBy(text string) string {
	if !strings.Contains(text, preparedByMarker) {
		return ""
	}
	if m := preparedByPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractShareholders handles "xxx有限公司全体股东：" in audit report openings.
func extractShareholders(text string) string {
	if !strings.Contains(text, shareholdersMarker) {
		return ""
	}
	if m := shareholdersPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractFallback accepts text that already looks like an entity name.
func extractFallback(text string) string {
	if strings.Contains(text, preparedByMarker) || !containsEntityToken(text) {
		return ""
	}
	return strings.TrimSpace(fallbackStrip.ReplaceAllString(text, ""))
}

func containsEntityToken(text string) bool {
	for _, tok := range entityTokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

// ExtractFromText applies TextRules to a single piece of text.
func ExtractFromText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for _, r := range TextRules {
		if name := r.Extract(text); name != "" {
			return name
		}
	}
	return ""
}

// ExtractFromLines applies the rules rule-major: every line is tried with the
// first rule before any line is tried with the next, so a marked line deep in
// a document beats an unmarked title line.
func ExtractFromLines(lines []string) string {
	for _, r := range TextRules {
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if name := r.Extract(line); name != "" {
				return name
			}
		}
	}
	return ""
}

// ExtractFromFilename handles "4、xxx有限公司2023审计报告1.pdf" and directory
// names like "2、xxx有限公司".
func ExtractFromFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return ""
	}
	if ext := filepath.Ext(name); isFileExtension(ext) {
		name = strings.TrimSuffix(name, ext)
	}
	name = ordinalPrefix.ReplaceAllString(name, "")
	if m := entitySuffix.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// isFileExtension rejects "extensions" that are really part of a name.
func isFileExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// SafeFileName normalizes full-width parentheses for output file names.
func SafeFileName(name string) string {
	r := strings.NewReplacer("（", "(", "）", ")", "/", "_", "\\", "_")
	return r.Replace(name)
}
