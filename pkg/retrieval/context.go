package retrieval

import (
	"fmt"
	"strings"
)

// DefaultMaxContextChars caps the assembled model context.
const DefaultMaxContextChars = 3000

// UsedSnippet records which hit contributed to the assembled context.
type UsedSnippet struct {
	Title   string  `json:"title,omitempty"`
	ChunkNo int     `json:"chunk_no"`
	Score   float64 `json:"score"`
}

// MakeContext builds one context string from hits, keeping score order. A
// block that would push the total past maxChars stops assembly, except that
// the first non-empty block always goes in.
func MakeContext(hits []Hit, maxChars int) (string, []UsedSnippet) {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}

	var (
		pieces []string
		used   []UsedSnippet
		total  int
	)
	for _, h := range hits {
		content := strings.TrimSpace(h.Content)
		if content == "" {
			continue
		}
		title := strings.TrimSpace(h.Title)
		if title == "" {
			title = "snippet"
		}
		// compact header helps the model; it never reaches the user
		block := fmt.Sprintf("[%s · #%d]\n%s\n", title, h.ChunkNo, content)
		if total+len(block) > maxChars && len(pieces) > 0 {
			break
		}
		pieces = append(pieces, block)
		used = append(used, UsedSnippet{Title: strings.TrimSpace(h.Title), ChunkNo: h.ChunkNo, Score: h.Score})
		total += len(block)
	}
	return strings.TrimSpace(strings.Join(pieces, "\n---\n")), used
}

// TopSimilarity returns the highest blended score, or 0 when hits is empty.
func TopSimilarity(hits []Hit) float64 {
	top := 0.0
	for _, h := range hits {
		if h.Score > top {
			top = h.Score
		}
	}
	return top
}
