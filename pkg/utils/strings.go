package utils

// Truncate hard-cuts a string to at most max runes. Previews stored in the
// database and quoted in reports use this; no ellipsis is added so stored
// prefixes compare stably across ingests.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// TruncateEnd shortens a string for display by keeping the beginning
// and adding ellipsis at the end if it exceeds maxLen
func TruncateEnd(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// TruncateWithEllipsis shortens a string for display by keeping the end
// and adding ellipsis at the beginning if it exceeds maxLen
func TruncateWithEllipsis(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen+3:]
}
