package intent

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantKind  Kind
		wantTopic Topic
	}{
		{
			name:      "greeting only",
			text:      "Hello!",
			wantKind:  KindSmalltalk,
			wantTopic: TopicNone,
		},
		{
			name:      "greeting with question is not smalltalk",
			text:      "hi, how much do you charge",
			wantKind:  KindInfo,
			wantTopic: TopicPricing,
		},
		{
			name:      "services question",
			text:      "What services do you offer?",
			wantKind:  KindInfo,
			wantTopic: TopicServices,
		},
		{
			name:      "pricing question",
			text:      "how much does a pilot cost",
			wantKind:  KindInfo,
			wantTopic: TopicPricing,
		},
		{
			name:      "email address request",
			text:      "What's your email?",
			wantKind:  KindContact,
			wantTopic: TopicEmail,
		},
		{
			name:      "phone request",
			text:      "can I get your phone number",
			wantKind:  KindContact,
			wantTopic: TopicPhone,
		},
		{
			name:      "office location request",
			text:      "where are you based",
			wantKind:  KindContact,
			wantTopic: TopicAddress,
		},
		{
			name:      "website request",
			text:      "do you have a website",
			wantKind:  KindContact,
			wantTopic: TopicURL,
		},
		{
			name:      "email focus beats phone focus",
			text:      "what is your email and phone number",
			wantKind:  KindContact,
			wantTopic: TopicEmail,
		},
		{
			name:      "booking a call",
			text:      "I'd like to book a call",
			wantKind:  KindLead,
			wantTopic: TopicNone,
		},
		{
			name:      "demo request",
			text:      "can we arrange a demo next week",
			wantKind:  KindLead,
			wantTopic: TopicNone,
		},
		{
			name:      "volunteered email outranks pricing keywords",
			text:      "email me at anna@example.com about pricing",
			wantKind:  KindLead,
			wantTopic: TopicNone,
		},
		{
			name:      "volunteered phone outranks everything",
			text:      "my number is +44 7700 900123, what services do you do",
			wantKind:  KindLead,
			wantTopic: TopicNone,
		},
		{
			name:      "no rule matches",
			text:      "the weather is terrible today",
			wantKind:  KindOther,
			wantTopic: TopicNone,
		},
		{
			name:      "empty message",
			text:      "",
			wantKind:  KindOther,
			wantTopic: TopicNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, topic := Classify(tt.text)

			if kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", kind, tt.wantKind)
			}
			if topic != tt.wantTopic {
				t.Errorf("Topic = %q, want %q", topic, tt.wantTopic)
			}
		})
	}
}

func TestSmalltalkReply(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"how are you?", "I'm doing well, thanks for asking! How can I help today?"},
		{"Good morning", "Good morning! How can I help today?"},
		{"hello", "Hi! How can I help today?"},
		{"thanks!", "You're welcome! What can I help you with?"},
		{"ok", "Hello! How can I help today?"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := SmalltalkReply(tt.text); got != tt.want {
				t.Errorf("SmalltalkReply(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
