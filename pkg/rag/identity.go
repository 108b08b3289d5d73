package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studio-assistant-be/pkg/store"
)

// identityPatterns mark queries about the caller's own profile
var identityPatterns = []string{
	"我是谁", "我的信息", "我的资料", "我的个人信息", "我的联系方式",
	"who am i", "my info", "my profile", "about me",
}

// notFoundMessage is the only content an identity query may return
// when nothing matches the caller. It must never leak another user's
// records.
const notFoundMessage = "未找到当前账号的个人信息，请联系管理员确认资料是否已录入。"

func isIdentityQuery(query string) bool {
	lower := strings.ToLower(strings.TrimSpace(query))
	for _, pattern := range identityPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// retrieveIdentity runs the identity-scoped path: search with the
// caller id embedded in the query, then keep only candidates whose
// text actually carries that id.
func (p *Pipeline) retrieveIdentity(ctx context.Context, query, callerID string, maxResults int) *Result {
	enriched := fmt.Sprintf("%s 用户ID:%s", query, callerID)
	candidates := p.index.Search(ctx, enriched, p.cfg.IdentityFetch)

	var kept []store.Document
	for _, doc := range candidates {
		if matchesCallerID(doc.Content, callerID) {
			kept = append(kept, doc)
		}
	}
	p.logger.Printf("[RAG] Identity query for caller %s: %d/%d candidates matched", callerID, len(kept), len(candidates))

	if len(kept) == 0 {
		return &Result{
			Query:   query,
			Summary: notFoundMessage,
		}
	}

	matches := p.rankMatches(query, kept, maxResults, time.Now())
	return &Result{
		Query:   query,
		Matches: matches,
		Summary: p.summarize(matches),
	}
}

// matchesCallerID reports whether text references the caller id in any
// accepted encoding: labelled with a colon ("ID:42"), labelled with a
// space ("ID 42"), or as a bare token. An occurrence flanked by another
// letter or digit is rejected, so caller 4 never matches text about
// user 42.
func matchesCallerID(text, callerID string) bool {
	if callerID == "" {
		return false
	}
	runes := []rune(text)
	id := []rune(callerID)

	for i := 0; i+len(id) <= len(runes); i++ {
		if string(runes[i:i+len(id)]) != callerID {
			continue
		}
		if i > 0 && isWordRune(runes[i-1]) {
			continue
		}
		if next := i + len(id); next < len(runes) && isWordRune(runes[next]) {
			continue
		}
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
