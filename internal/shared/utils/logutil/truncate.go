package logutil

import "unicode/utf8"

// TruncateForLog shortens s to at most maxLen bytes without splitting a
// UTF-8 sequence, appending "..." when anything was cut.
func TruncateForLog(s string, maxLen int) string {
	if maxLen <= 0 {
		return "..."
	}
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
