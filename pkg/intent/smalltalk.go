package intent

import (
	"regexp"
	"strings"
)

var smalltalkReplies = []struct {
	re    *regexp.Regexp
	reply string
}{
	{regexp.MustCompile(`\bhow\s+are\s+you\b`), "I'm doing well, thanks for asking! How can I help today?"},
	{regexp.MustCompile(`\bgood\s*morning\b`), "Good morning! How can I help today?"},
	{regexp.MustCompile(`\bgood\s*afternoon\b`), "Good afternoon! What can I do for you?"},
	{regexp.MustCompile(`\bgood\s*evening\b`), "Good evening! How can I help?"},
	{regexp.MustCompile(`\b(hi|hello|hey|hiya|yo)\b`), "Hi! How can I help today?"},
	{regexp.MustCompile(`\b(thanks|thank\s*you)\b`), "You're welcome! What can I help you with?"},
}

// SmalltalkReply picks a canned reply for a smalltalk message. Callers are
// expected to have classified the message first; unmatched sub-patterns get
// the generic fallback.
func SmalltalkReply(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, sr := range smalltalkReplies {
		if sr.re.MatchString(t) {
			return sr.reply
		}
	}
	return "Hello! How can I help today?"
}
