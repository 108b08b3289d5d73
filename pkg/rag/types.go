package rag

// ScoredMatch is one ranked retrieval result.
type ScoredMatch struct {
	ID         string  `json:"id"`
	Category   string  `json:"category"` // underlying document type
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Snippet    string  `json:"snippet"`
	Similarity float64 `json:"similarity"`  // raw index similarity
	FinalScore float64 `json:"final_score"` // composite ranking score
}

// Result is the outcome of one retrieval call: the ranked matches plus
// a short natural-language summary of what was found.
type Result struct {
	Query   string        `json:"query"`
	Matches []ScoredMatch `json:"matches"`
	Summary string        `json:"summary"`
}

// Retrieval strategies chosen from classification output
const (
	strategyGlobal = "GLOBAL"
	strategySingle = "SINGLE"
	strategyMulti  = "MULTI"
)
