package rag

import (
	"strings"
	"unicode/utf8"

	"studio-assistant-be/pkg/store"
)

// minContentRunes drops fragments too short to ground an answer
const minContentRunes = 10

// overviewPhrases mark broad queries where the similarity floor is
// waived: the user wants breadth, not precision.
var overviewPhrases = []string{
	"都有什么", "都有哪些", "所有", "全部", "列出", "有多少人", "有几个",
	"what are all", "list all", "how many people", "show everything",
}

func isOverviewQuery(query string) bool {
	lower := strings.ToLower(query)
	for _, phrase := range overviewPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// qualityFilter drops weak candidates: everything shorter than 10
// runes, and, unless the query is a broad overview, everything below
// the similarity floor or without a single literal query keyword.
func (p *Pipeline) qualityFilter(query string, docs []store.Document) []store.Document {
	overview := isOverviewQuery(query)
	keywords := extractKeywords(query)

	kept := docs[:0]
	for _, doc := range docs {
		if utf8.RuneCountInString(doc.Content) < minContentRunes {
			continue
		}
		if !overview {
			if doc.Score < p.cfg.MinSimilarity {
				continue
			}
			if len(keywords) > 0 && !containsAnyKeyword(doc.Content, keywords) {
				continue
			}
		}
		kept = append(kept, doc)
	}
	return kept
}
