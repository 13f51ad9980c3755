package dto

type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
	Message   string `json:"message" validate:"required"`
	K         int    `json:"k,omitempty" validate:"omitempty,min=1,max=20"`
	Debug     bool   `json:"debug,omitempty"`
	Citations bool   `json:"citations,omitempty"`
}

type ChatResponse struct {
	SessionID string         `json:"session_id"`
	Answer    string         `json:"answer"`
	Intent    string         `json:"intent"`
	Topic     string         `json:"topic,omitempty"`
	TurnCount int            `json:"turn_count"`
	Lead      *LeadStateDTO  `json:"lead,omitempty"`
	Citations []CitationDTO  `json:"citations,omitempty"`
	Debug     *ChatDebugDTO  `json:"debug,omitempty"`
}

// LeadStateDTO mirrors the slots captured so far. Empty slots are omitted.
type LeadStateDTO struct {
	Name          string `json:"name,omitempty"`
	Company       string `json:"company,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
	Complete      bool   `json:"complete"`
}

type CitationDTO struct {
	Title   string  `json:"title"`
	ChunkNo int     `json:"chunk_no"`
	Score   float64 `json:"score"`
}

type ChatDebugDTO struct {
	RewrittenQuery string            `json:"rewritten_query,omitempty"`
	TopSimilarity  float64           `json:"top_similarity"`
	LowConfidence  bool              `json:"low_confidence"`
	Used           []UsedSnippetDTO  `json:"used,omitempty"`
}

type UsedSnippetDTO struct {
	Title   string  `json:"title"`
	ChunkNo int     `json:"chunk_no"`
	Score   float64 `json:"score"`
}

type SearchResultDTO struct {
	DocumentID int64   `json:"document_id"`
	ChunkID    int64   `json:"chunk_id"`
	ChunkNo    int     `json:"chunk_no"`
	Title      string  `json:"title"`
	SourceURI  string  `json:"source_uri,omitempty"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

type SearchResponse struct {
	Query   string            `json:"query"`
	Results []SearchResultDTO `json:"results"`
}

// LeadCapturedMessage is the payload carried on the internal bus when a
// conversation completes its lead slots.
type LeadCapturedMessage struct {
	LeadID        string `json:"lead_id"`
	SessionID     string `json:"session_id"`
	Name          string `json:"name"`
	Company       string `json:"company"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PreferredTime string `json:"preferred_time"`
	Summary       string `json:"summary"`
}
