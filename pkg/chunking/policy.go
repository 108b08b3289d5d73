package chunking

// Splitting modes
const (
	ModeSentence  = "sentence"
	ModeCharacter = "character"
)

// Policy describes how documents of one type are chunked.
type Policy struct {
	Mode      string
	ChunkSize int // max chunk length in runes
	Overlap   int // overlap between consecutive chunks in runes
	Threshold int // documents at or below this length are stored whole
}

// Base sizes, tuned for embedding-model context limits:
// 1500 chars is roughly 375 tokens with generous headroom.
const (
	baseChunkSize = 1500
	baseOverlap   = 200
)

// typePolicies adjusts the base per document type: short record types
// shrink to 80% of the base, long-form content grows to 120%.
var typePolicies = map[string]Policy{
	"notice":     {Mode: ModeSentence, ChunkSize: baseChunkSize * 8 / 10, Overlap: baseOverlap * 8 / 10, Threshold: baseChunkSize * 8 / 10},
	"task":       {Mode: ModeSentence, ChunkSize: baseChunkSize * 8 / 10, Overlap: baseOverlap * 8 / 10, Threshold: baseChunkSize * 8 / 10},
	"attendance": {Mode: ModeCharacter, ChunkSize: baseChunkSize * 8 / 10, Overlap: baseOverlap * 8 / 10, Threshold: baseChunkSize * 8 / 10},
	"user":       {Mode: ModeCharacter, ChunkSize: baseChunkSize * 8 / 10, Overlap: baseOverlap * 8 / 10, Threshold: baseChunkSize * 8 / 10},
	"course":     {Mode: ModeSentence, ChunkSize: baseChunkSize * 12 / 10, Overlap: baseOverlap * 12 / 10, Threshold: baseChunkSize * 12 / 10},
	"material":   {Mode: ModeSentence, ChunkSize: baseChunkSize * 12 / 10, Overlap: baseOverlap * 12 / 10, Threshold: baseChunkSize * 12 / 10},
}

// PolicyFor returns the chunking policy for a document type, falling
// back to the base policy for unknown types. Overlap is capped at 30%
// of the chunk size.
func PolicyFor(docType string) Policy {
	p, ok := typePolicies[docType]
	if !ok {
		p = Policy{Mode: ModeSentence, ChunkSize: baseChunkSize, Overlap: baseOverlap, Threshold: baseChunkSize}
	}
	if maxOverlap := p.ChunkSize * 3 / 10; p.Overlap > maxOverlap {
		p.Overlap = maxOverlap
	}
	return p
}
