package rag

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"studio-assistant-be/pkg/ai/classifier"
	"studio-assistant-be/pkg/store"
	"studio-assistant-be/pkg/vector"
)

// noResultsSummary is returned whenever retrieval produces nothing
const noResultsSummary = "没有找到相关内容。"

// Config holds pipeline tuning options.
type Config struct {
	MaxResults       int     // default result budget per call
	MinSimilarity    float64 // quality floor on raw similarity
	MultiCategoryMin float64 // top score needed to activate MULTI strategy
	DecayWindowDays  float64 // time-decay window T
	IdentityFetch    int     // generous candidate count for identity queries
}

func DefaultConfig() Config {
	return Config{
		MaxResults:       5,
		MinSimilarity:    0.35,
		MultiCategoryMin: 0.3,
		DecayWindowDays:  30,
		IdentityFetch:    30,
	}
}

// Pipeline orchestrates classification-guided retrieval: strategy
// selection, quality filtering, ranking and summarization. It never
// propagates errors; the worst case is an empty result.
type Pipeline struct {
	classifier *classifier.Classifier
	index      *vector.Index
	cfg        Config
	logger     *log.Logger
}

func NewPipeline(cls *classifier.Classifier, index *vector.Index, cfg Config, logger *log.Logger) *Pipeline {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.MultiCategoryMin <= 0 {
		cfg.MultiCategoryMin = 0.3
	}
	if cfg.DecayWindowDays <= 0 {
		cfg.DecayWindowDays = 30
	}
	if cfg.IdentityFetch <= 0 {
		cfg.IdentityFetch = 30
	}
	return &Pipeline{
		classifier: cls,
		index:      index,
		cfg:        cfg,
		logger:     logger,
	}
}

// Retrieve fetches grounding context for a query. callerID may be
// empty; when present it enables the identity-scoped path.
func (p *Pipeline) Retrieve(ctx context.Context, query string, maxResults int, callerID string) (result *Result) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Printf("[ERROR] Retrieval failed for query %q: %v", truncate(query, 50), rec)
			result = &Result{Query: query, Summary: noResultsSummary}
		}
	}()

	if maxResults <= 0 {
		maxResults = p.cfg.MaxResults
	}

	// 1. Identity short-circuit
	if callerID != "" && isIdentityQuery(query) {
		return p.retrieveIdentity(ctx, query, callerID, maxResults)
	}

	// 2. Query enhancement
	enhanced := EnhanceQuery(query)

	// 3. Strategy selection from classification of the raw query
	results := p.classifier.Classify(query)
	docs := p.runStrategy(ctx, query, enhanced, results, maxResults)

	// 4. Quality filter
	docs = p.qualityFilter(query, docs)

	// 5. Ranking
	matches := p.rankMatches(query, docs, maxResults, time.Now())

	// 6. Summarization
	return &Result{
		Query:   query,
		Matches: matches,
		Summary: p.summarize(matches),
	}
}

func (p *Pipeline) runStrategy(ctx context.Context, query, enhanced string, results []classifier.Result, maxResults int) []store.Document {
	switch strategyFor(results, p.cfg.MultiCategoryMin) {
	case strategyGlobal:
		p.logger.Printf("[RAG] Strategy GLOBAL for %q", truncate(query, 50))
		return p.index.Search(ctx, enhanced, maxResults)

	case strategyMulti:
		p.logger.Printf("[RAG] Strategy MULTI (%d categories) for %q", len(results), truncate(query, 50))
		return p.searchMulti(ctx, enhanced, results, maxResults)

	default:
		p.logger.Printf("[RAG] Strategy SINGLE (%s) for %q", results[0].Category, truncate(query, 50))
		return p.searchSingle(ctx, query, enhanced, results[0].Category, maxResults)
	}
}

// strategyFor picks the search strategy: no categories means global,
// several confident categories mean a multi-category sweep, otherwise
// the single top category narrows the search.
func strategyFor(results []classifier.Result, multiMin float64) string {
	switch {
	case len(results) == 0:
		return strategyGlobal
	case len(results) >= 2 && results[0].Score >= multiMin:
		return strategyMulti
	default:
		return strategySingle
	}
}

// searchSingle narrows to one category and tops up from an unfiltered
// search when the category yields too little.
func (p *Pipeline) searchSingle(ctx context.Context, query, enhanced, category string, maxResults int) []store.Document {
	docs, _ := p.index.SearchByCategories(ctx, enhanced, []string{category}, maxResults)

	if len(docs) < maxResults/2 {
		seen := make(map[string]bool, len(docs))
		for _, doc := range docs {
			seen[doc.ID] = true
		}
		for _, doc := range p.index.Search(ctx, query, maxResults) {
			if seen[doc.ID] {
				continue
			}
			docs = append(docs, doc)
			if len(docs) >= maxResults {
				break
			}
		}
	}
	return docs
}

// searchMulti sweeps categories in descending score order and
// accumulates deduplicated results until the budget is reached.
func (p *Pipeline) searchMulti(ctx context.Context, enhanced string, results []classifier.Result, maxResults int) []store.Document {
	var docs []store.Document
	seen := make(map[string]bool)

	for _, res := range results {
		if len(docs) >= maxResults {
			break
		}
		found, _ := p.index.SearchByCategories(ctx, enhanced, []string{res.Category}, maxResults-len(docs))
		for _, doc := range found {
			if seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			docs = append(docs, doc)
			if len(docs) >= maxResults {
				break
			}
		}
	}
	return docs
}

// summarize builds the count-by-type summary line.
func (p *Pipeline) summarize(matches []ScoredMatch) string {
	if len(matches) == 0 {
		return noResultsSummary
	}

	counts := make(map[string]int)
	var order []string
	for _, m := range matches {
		category := m.Category
		if category == "" {
			category = "其他"
		}
		if _, ok := counts[category]; !ok {
			order = append(order, category)
		}
		counts[category]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return order[i] < order[j]
	})

	parts := make([]string, 0, len(order))
	for _, category := range order {
		parts = append(parts, fmt.Sprintf("%s %d 条", typeLabel(category), counts[category]))
	}
	return fmt.Sprintf("共找到 %d 条相关内容：%s。", len(matches), strings.Join(parts, "、"))
}

// typeLabel maps document types to display names for summaries.
func typeLabel(docType string) string {
	switch docType {
	case "notice", "announcement":
		return "通知公告"
	case "course":
		return "课程"
	case "material":
		return "学习资料"
	case "task", "todo":
		return "任务"
	case "attendance", "leave":
		return "考勤"
	case "user", "student", "member":
		return "成员信息"
	case "studio":
		return "工作室信息"
	default:
		return docType
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
