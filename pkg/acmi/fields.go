package acmi

import "strings"

// SplitFields splits line on commas that are not preceded by a backslash.
// Escape characters are left in place; text values unescape themselves.
func SplitFields(line string) []string {
	var fields []string
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] == ',' && (i == 0 || line[i-1] != '\\') {
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}
	return append(fields, line[start:])
}

// splitFirst splits line at its first unescaped comma.
func splitFirst(line string) (head, rest string, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] == ',' && (i == 0 || line[i-1] != '\\') {
			return line[:i], line[i+1:], true
		}
	}
	return line, "", false
}

var (
	textEscaper   = strings.NewReplacer(",", `\,`)
	textUnescaper = strings.NewReplacer(`\,`, ",")
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func unescapeText(s string) string {
	return textUnescaper.Replace(s)
}
