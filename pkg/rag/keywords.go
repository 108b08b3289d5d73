package rag

import (
	"strings"
	"unicode"
)

// Stop words dropped from keyword extraction (Chinese + English)
var stopWords = map[string]bool{
	"什么": true, "哪些": true, "怎么": true, "请问": true, "一下": true,
	"我们": true, "你们": true, "这个": true, "那个": true, "可以": true,
	"the": true, "a": true, "an": true, "is": true, "are": true, "of": true,
	"what": true, "my": true, "your": true, "i": true, "me": true, "to": true,
	"for": true, "in": true, "on": true, "do": true, "does": true,
}

// extractKeywords pulls literal keywords (length > 1) from the query.
// Latin words come from whitespace splitting; CJK runs are kept whole
// when short and decomposed into bigrams when long, since Chinese
// queries carry no spaces.
func extractKeywords(query string) []string {
	var keywords []string
	seen := make(map[string]bool)

	add := func(kw string) {
		kw = strings.ToLower(strings.Trim(kw, ".,?!;:，。？！；：\"'"))
		if len([]rune(kw)) < 2 || stopWords[kw] || seen[kw] {
			return
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	}

	var latin, cjk []rune
	flushLatin := func() {
		if len(latin) > 0 {
			add(string(latin))
			latin = latin[:0]
		}
	}
	flushCJK := func() {
		if len(cjk) == 0 {
			return
		}
		if len(cjk) <= 4 {
			add(string(cjk))
		} else {
			for i := 0; i+2 <= len(cjk); i++ {
				add(string(cjk[i : i+2]))
			}
		}
		cjk = cjk[:0]
	}

	for _, r := range query {
		switch {
		case unicode.Is(unicode.Han, r):
			flushLatin()
			cjk = append(cjk, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushCJK()
			latin = append(latin, r)
		default:
			flushLatin()
			flushCJK()
		}
	}
	flushLatin()
	flushCJK()

	return keywords
}

// containsAnyKeyword reports whether any keyword appears literally in
// the text.
func containsAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// keywordOverlapRatio reports the fraction of keywords appearing in
// the text.
func keywordOverlapRatio(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}
