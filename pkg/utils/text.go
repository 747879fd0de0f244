package utils

// Truncate returns s truncated to maxLen bytes, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// PreviewLines returns up to n lines from the start and end of the given lines,
// with "..." between when the middle is elided.
func PreviewLines(lines []string, n int) []string {
	if n <= 0 || len(lines) <= 2*n {
		return lines
	}
	out := make([]string, 0, 2*n+1)
	out = append(out, lines[:n]...)
	out = append(out, "...")
	out = append(out, lines[len(lines)-n:]...)
	return out
}
