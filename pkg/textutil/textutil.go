package textutil

import (
	"regexp"
	"strings"
)

var (
	wsCollapseRe      = regexp.MustCompile(`\s+`)
	fileTokenRe       = regexp.MustCompile(`(?i)\b[\w\-/]+\.(md|pdf|txt|docx)\b`)
	bracketedSourceRe = regexp.MustCompile(`(?i)\s*[(\[]\s*(source|file|doc|kb)[:=].*?[)\]]`)
	headerLineRe      = regexp.MustCompile(`(?m)^\s*\[[^\]]+\]\s*`)
	sourceLineRe      = regexp.MustCompile(`(?im)^\s*(source|file|doc|kb)\s*[:=].*$`)
)

// NormalizeWS collapses whitespace runs to single spaces and trims.
func NormalizeWS(text string) string {
	return strings.TrimSpace(wsCollapseRe.ReplaceAllString(text, " "))
}

// StripSourceTokens removes context headers like `[snippet · #2]`, bare file
// name tokens and inline "source:" notes from model output so user-facing
// text stays clean.
func StripSourceTokens(text string) string {
	if text == "" {
		return text
	}
	t := headerLineRe.ReplaceAllString(text, "")
	t = fileTokenRe.ReplaceAllString(t, "")
	t = bracketedSourceRe.ReplaceAllString(t, "")
	t = sourceLineRe.ReplaceAllString(t, "")
	return NormalizeWS(t)
}

// Truncate cuts text to maxChars runes, appending an ellipsis when it had to cut.
func Truncate(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	if maxChars <= 1 {
		return "…"
	}
	return strings.TrimRight(string(runes[:maxChars-1]), " ") + "…"
}
