package rag

import (
	"math"
	"sort"
	"strings"
	"time"

	"studio-assistant-be/pkg/store"
	"studio-assistant-be/pkg/vector"
)

// typeWeights bias the final score per document type: fresh operational
// content up, noisy attendance rows down.
var typeWeights = map[string]float64{
	"notice":       1.2,
	"announcement": 1.2,
	"course":       1.15,
	"task":         1.1,
	"material":     1.05,
	"attendance":   0.9,
	"leave":        0.9,
}

const (
	keywordBonusCap = 0.1
	snippetRunes    = 80
)

// rankMatches computes the composite score for every candidate, sorts
// descending and truncates to maxResults.
//
//	final = similarity × timeDecay × typeWeight + keywordBonus, clamped to 1.0
//	timeDecay = 0.7 + 0.3 × e^(−days_since / window), when a timestamp is known
func (p *Pipeline) rankMatches(query string, docs []store.Document, maxResults int, now time.Time) []ScoredMatch {
	keywords := extractKeywords(query)

	matches := make([]ScoredMatch, 0, len(docs))
	for _, doc := range docs {
		final := doc.Score

		if ts, ok := documentTimestamp(doc); ok {
			days := now.Sub(ts).Hours() / 24
			if days < 0 {
				days = 0
			}
			final *= 0.7 + 0.3*math.Exp(-days/p.cfg.DecayWindowDays)
		}

		if w, ok := typeWeights[doc.Type]; ok {
			final *= w
		}

		bonus := keywordOverlapRatio(doc.Content, keywords) * keywordBonusCap
		final += bonus

		if final > 1.0 {
			final = 1.0
		}

		matches = append(matches, ScoredMatch{
			ID:         doc.ID,
			Category:   doc.Type,
			Title:      doc.Title,
			Content:    doc.Content,
			Snippet:    makeSnippet(doc.Content, keywords),
			Similarity: doc.Score,
			FinalScore: final,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].FinalScore != matches[j].FinalScore {
			return matches[i].FinalScore > matches[j].FinalScore
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

func documentTimestamp(doc store.Document) (time.Time, bool) {
	if doc.Metadata == nil {
		return time.Time{}, false
	}
	raw, ok := doc.Metadata[vector.MetaUpdatedAt].(string)
	if !ok {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// makeSnippet extracts a short highlight: the window around the first
// keyword hit, or the content head when nothing matches.
func makeSnippet(content string, keywords []string) string {
	runes := []rune(content)
	if len(runes) <= snippetRunes {
		return content
	}

	lower := strings.ToLower(content)
	start := 0
	for _, kw := range keywords {
		if idx := strings.Index(lower, kw); idx >= 0 {
			// byte index -> rune index
			start = len([]rune(lower[:idx]))
			break
		}
	}

	if start > snippetRunes/4 {
		start -= snippetRunes / 4
	} else {
		start = 0
	}
	end := start + snippetRunes
	if end > len(runes) {
		end = len(runes)
		start = end - snippetRunes
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(runes) {
		snippet += "…"
	}
	return snippet
}
