// Package lead harvests contact/qualification fields from raw message text
// and gates when the assistant may ask a qualifying question.
package lead

import (
	"regexp"
	"strings"
	"unicode"

	"ai-assistant-be/pkg/session"
	"ai-assistant-be/pkg/textutil"
)

// Extraction runs over the raw text, not the normalized lowercase form:
// case carries signal for name and company capture.
var (
	emailRe = regexp.MustCompile(`(?i)[A-Z0-9._%+\-]+@[A-Z0-9.\-]+\.[A-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-()]{6,}\d`)

	namePhraseRe    = regexp.MustCompile(`(?i)\b(?:my name is|my name's|i am|i'm|this is)\s+(.{1,60})`)
	nameTokenRe     = regexp.MustCompile(`^([A-Za-z][A-Za-z'\-]+(?:\s+[A-Za-z][A-Za-z'\-]+)?)`)
	companyPhraseRe = regexp.MustCompile(`(?i)\b(?:i work (?:at|for)|we work (?:at|for)|we are from|calling from|on behalf of|representing|(?:my|our) company is(?: called)?)\s+(.{1,60})`)
	companyTokenRe  = regexp.MustCompile(`^([A-Z][A-Za-z0-9&.\-]*(?:\s+(?:of|and|&|[A-Z][A-Za-z0-9&.\-]*)){0,3})`)
	timeRe          = regexp.MustCompile(`(?i)\b((?:next week|next month|tomorrow|today|tonight|monday|tuesday|wednesday|thursday|friday|saturday|sunday)(?:\s+(?:morning|afternoon|evening))?(?:\s+(?:at\s+)?\d{1,2}(?::\d{2})?\s*(?:am|pm)?)?|\d{1,2}(?::\d{2})?\s*(?:am|pm)|(?:in the\s+)?(?:morning|afternoon|evening)s?)\b`)
)

// Words that follow an intro phrase but are never a name: "I'm interested
// in pricing" must not harvest a name.
var nameStopwords = map[string]bool{
	"interested": true, "looking": true, "trying": true, "wondering": true,
	"just": true, "not": true, "sure": true, "ready": true, "happy": true,
	"going": true, "calling": true, "asking": true, "curious": true,
	"here": true, "new": true, "an": true, "a": true, "the": true,
	"so": true, "very": true, "really": true, "still": true, "also": true,
}

// Extract applies the five independent field extractors to one message and
// returns whatever it found; empty fields mean "nothing harvested".
// Deliberately precision-biased: no match beats a wrong match.
func Extract(text string) session.LeadSlots {
	return session.LeadSlots{
		Name:          harvestName(text),
		Company:       harvestCompany(text),
		Email:         harvestEmail(text),
		Phone:         harvestPhone(text),
		PreferredTime: harvestPreferredTime(text),
	}
}

func harvestEmail(text string) string {
	return strings.ToLower(emailRe.FindString(text))
}

func harvestPhone(text string) string {
	m := phoneRe.FindString(text)
	if m == "" {
		return ""
	}
	// require at least 7 digits so prices and years don't pass as numbers
	digits := 0
	for _, r := range m {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 7 {
		return ""
	}
	return textutil.NormalizeWS(m)
}

func harvestName(text string) string {
	m := namePhraseRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	tok := nameTokenRe.FindStringSubmatch(strings.TrimSpace(m[1]))
	if tok == nil {
		return ""
	}
	first := strings.ToLower(strings.Fields(tok[1])[0])
	if nameStopwords[first] {
		return ""
	}
	return titleCase(tok[1])
}

func harvestCompany(text string) string {
	m := companyPhraseRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	tok := companyTokenRe.FindStringSubmatch(strings.TrimSpace(m[1]))
	if tok == nil {
		return ""
	}
	return strings.TrimRight(tok[1], ".")
}

func harvestPreferredTime(text string) string {
	m := timeRe.FindString(text)
	if m == "" {
		return ""
	}
	return textutil.NormalizeWS(m)
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		r := []rune(strings.ToLower(f))
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}
