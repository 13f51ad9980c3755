// Package intent routes a raw user message to a coarse intent without any
// retrieval or model calls. Classification is a pure function over an
// ordered rule table: the first matching rule wins, so the table order IS
// the precedence documented on each rule.
package intent

import (
	"regexp"

	"ai-assistant-be/pkg/textutil"

	"strings"
)

// Kind is the coarse classification of a user message.
type Kind string

const (
	KindSmalltalk Kind = "smalltalk"
	KindInfo      Kind = "info"
	KindContact   Kind = "contact"
	KindLead      Kind = "lead"
	KindOther     Kind = "other"
)

// Topic narrows an intent. Empty means no topic.
type Topic string

const (
	TopicNone     Topic = ""
	TopicServices Topic = "services"
	TopicPricing  Topic = "pricing"
	TopicEmail    Topic = "email"
	TopicPhone    Topic = "phone"
	TopicAddress  Topic = "address"
	TopicURL      Topic = "url"
)

// Result pairs the matched kind with its optional topic.
type Result struct {
	Kind  Kind
	Topic Topic
}

var (
	emailRe = regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	phoneRe = regexp.MustCompile(`\b(?:\+?\d[\s\-()]*){7,}\d\b`)

	// Smalltalk must match the whole message, not a substring: "hi, what
	// do you charge" is not smalltalk.
	smalltalkRes = compileAll(
		`^(hi|hello|hey|hiya|yo)\s*[!.]?$`,
		`^good\s*(morning|afternoon|evening)\s*[!.]?$`,
		`^(how\s+are\s+you|how's\s+it\s+going)\s*\??$`,
		`^(thanks|thank\s*you)\s*[!.]?$`,
		`^(ok|okay|cool|great|nice)\s*[!.]?$`,
	)

	servicesRes = compileAll(
		`\bservices?\b`, `\bwhat\s+do\s+you\s+do\b`, `\bwhat\s+does\s+corvox\b`,
		`\bcapabilit(y|ies)\b`, `\bsolutions?\b`, `\boffer(s|ings)?\b`,
		`\bproducts?\b`, `\buse\s*cases?\b`, `\bwhat\s+you\s+offer\b`,
	)

	pricingRes = compileAll(
		`\bprice(s|ing)?\b`, `\bcosts?\b`, `\brates?\b`, `\bfees?\b`,
		`\bplans?\b`, `\bhow\s+much\b`, `\bquote\b`, `\bestimate\b`,
		`\bper\s*month\b`, `\bsubscription\b`, `\bbudget\b`,
	)

	leadRes = compileAll(
		`\b(book|schedule|arrange)\s+(a\s*)?call\b`,
		`\bcall\s*back\b`, `\bcallback\b`, `\bdemo\b`,
		`\b(get|next)\s+started\b`, `\bsign\s*up\b`, `\bconsultation\b`,
		`\b(contact|reach)\s*me\b`, `\bhave\s+someone\s+call\b`,
	)

	// Contact focus checked in fixed priority order: email, phone,
	// address, url.
	contactFocus = []struct {
		topic Topic
		re    *regexp.Regexp
	}{
		{TopicEmail, regexp.MustCompile(`\be[-\s]?mail\b`)},
		{TopicPhone, regexp.MustCompile(`\b(phone|number|call)\b`)},
		{TopicAddress, regexp.MustCompile(`\b(address|hq|head\s*office|location|office|where\s+(are\s+you\s+)?(based|located))\b`)},
		{TopicURL, regexp.MustCompile(`\b(website|site|url)\b`)},
	}
)

// rule is one row of the classification table. match runs over the
// normalized message; result derives the outcome from the same text.
type rule struct {
	name   string
	match  func(q string) bool
	result func(q string) Result
}

// rules in evaluation order. Contact-detail disclosure outranks every
// keyword rule: a volunteered email or phone number is an unambiguous lead
// signal that must not be masked by a coincidental keyword elsewhere in the
// message.
var rules = []rule{
	{
		name:   "contact-detail",
		match:  func(q string) bool { return emailRe.MatchString(q) || phoneRe.MatchString(q) },
		result: fixed(KindLead, TopicNone),
	},
	{
		name:   "smalltalk",
		match:  matchAny(smalltalkRes),
		result: fixed(KindSmalltalk, TopicNone),
	},
	{
		name:   "services",
		match:  matchAny(servicesRes),
		result: fixed(KindInfo, TopicServices),
	},
	{
		name:   "pricing",
		match:  matchAny(pricingRes),
		result: fixed(KindInfo, TopicPricing),
	},
	{
		name:  "contact-focus",
		match: func(q string) bool { _, ok := contactTopic(q); return ok },
		result: func(q string) Result {
			t, _ := contactTopic(q)
			return Result{Kind: KindContact, Topic: t}
		},
	},
	{
		name:   "lead-vocabulary",
		match:  matchAny(leadRes),
		result: fixed(KindLead, TopicNone),
	},
}

// Classify maps a raw user message to (kind, topic). Pure and stateless.
func Classify(text string) (Kind, Topic) {
	q := strings.ToLower(textutil.NormalizeWS(text))
	for _, r := range rules {
		if r.match(q) {
			res := r.result(q)
			return res.Kind, res.Topic
		}
	}
	return KindOther, TopicNone
}

func contactTopic(q string) (Topic, bool) {
	for _, cf := range contactFocus {
		if cf.re.MatchString(q) {
			return cf.topic, true
		}
	}
	return TopicNone, false
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func matchAny(res []*regexp.Regexp) func(string) bool {
	return func(q string) bool {
		for _, re := range res {
			if re.MatchString(q) {
				return true
			}
		}
		return false
	}
}

func fixed(k Kind, t Topic) func(string) Result {
	return func(string) Result { return Result{Kind: k, Topic: t} }
}
