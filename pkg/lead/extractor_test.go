package lead

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantName string
		wantCo   string
		wantMail string
		wantTel  string
		wantTime string
	}{
		{
			name:     "name intro",
			text:     "Hi, my name is Anna Smith and I have a question",
			wantName: "Anna Smith",
		},
		{
			name:     "short intro",
			text:     "I'm Dave",
			wantName: "Dave",
		},
		{
			name: "interest phrase is not a name",
			text: "I'm interested in your pricing",
		},
		{
			name: "looking phrase is not a name",
			text: "I am looking for a chatbot",
		},
		{
			name:   "company from work-at phrase",
			text:   "I work at Acme Corp as an ops lead",
			wantCo: "Acme Corp",
		},
		{
			name:   "company from calling-from phrase",
			text:   "calling from Northwind Traders about the demo",
			wantCo: "Northwind Traders",
		},
		{
			name:     "email lowercased",
			text:     "reach me on Anna.Smith@Example.COM please",
			wantMail: "anna.smith@example.com",
		},
		{
			name:    "phone with spaces and plus",
			text:    "call me back on +44 7700 900123",
			wantTel: "+44 7700 900123",
		},
		{
			name: "price is not a phone number",
			text: "is it about 2500 per month?",
		},
		{
			name:     "preferred time weekday",
			text:     "tuesday afternoon works for me",
			wantTime: "tuesday afternoon",
		},
		{
			name:     "multiple fields in one message",
			text:     "My name is Ben, I work at Globex, email ben@globex.io, call tomorrow morning",
			wantName: "Ben",
			wantCo:   "Globex",
			wantMail: "ben@globex.io",
			wantTime: "tomorrow morning",
		},
		{
			name: "nothing to harvest",
			text: "what services do you provide?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)

			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Company != tt.wantCo {
				t.Errorf("Company = %q, want %q", got.Company, tt.wantCo)
			}
			if got.Email != tt.wantMail {
				t.Errorf("Email = %q, want %q", got.Email, tt.wantMail)
			}
			if got.Phone != tt.wantTel {
				t.Errorf("Phone = %q, want %q", got.Phone, tt.wantTel)
			}
			if got.PreferredTime != tt.wantTime {
				t.Errorf("PreferredTime = %q, want %q", got.PreferredTime, tt.wantTime)
			}
		})
	}
}
