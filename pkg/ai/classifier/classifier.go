package classifier

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Result is one scored category for a query.
type Result struct {
	Category string  `json:"category"`
	Scenario string  `json:"scenario,omitempty"`
	Score    float64 `json:"score"` // 0.0-1.0
	Reason   string  `json:"reason"`
}

// Classifier maps free text to scored categories using keyword tables.
// It is pure: same text and same tables always produce the same output.
type Classifier struct {
	rules           []CategoryRule
	scenarios       []ScenarioRule
	confidenceFloor float64
}

// New creates a classifier with the built-in rule tables.
func New(confidenceFloor float64) *Classifier {
	return NewWithRules(DefaultRules(), DefaultScenarioRules(), confidenceFloor)
}

// NewWithRules creates a classifier with caller-supplied tables.
func NewWithRules(rules []CategoryRule, scenarios []ScenarioRule, confidenceFloor float64) *Classifier {
	if confidenceFloor <= 0 {
		confidenceFloor = 0.1
	}
	return &Classifier{
		rules:           rules,
		scenarios:       scenarios,
		confidenceFloor: confidenceFloor,
	}
}

// Classify scores the text against every category and returns the
// surviving results sorted by descending score. An empty or unmatched
// query yields an empty list; it never fails.
func (c *Classifier) Classify(text string) []Result {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return nil
	}

	// Pass 1: keyword scoring per category
	var results []Result
	for _, rule := range c.rules {
		matched := 0
		score := 0.0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matched++
				score += keywordWeight(kw)
			}
		}
		if matched == 0 {
			continue
		}
		score += float64(matched) / float64(len(rule.Keywords)) * 0.5
		if score > 1.0 {
			score = 1.0
		}
		if score < c.confidenceFloor {
			continue
		}
		results = append(results, Result{
			Category: rule.Category,
			Score:    score,
			Reason:   fmt.Sprintf("matched %d/%d keywords", matched, len(rule.Keywords)),
		})
	}
	if len(results) == 0 {
		return nil
	}

	// Pass 2: assign the best-matching usage scenario. The scenario
	// depends only on the query, so it is resolved once for all results.
	if scenario, hits := c.bestScenario(lower); hits > 0 {
		for i := range results {
			results[i].Scenario = scenario
			results[i].Score = clamp(results[i].Score * 1.2)
			results[i].Reason += "; scenario=" + scenario
		}
	}

	// Pass 3: situational boosts
	c.applyBoosts(lower, results)

	// Deterministic ordering: score desc, category asc on ties
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Category < results[j].Category
	})
	return results
}

// bestScenario picks the scenario with the most keyword hits.
func (c *Classifier) bestScenario(lower string) (string, int) {
	best := ""
	bestHits := 0
	for _, rule := range c.scenarios {
		hits := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = rule.Scenario
		}
	}
	return best, bestHits
}

func (c *Classifier) applyBoosts(lower string, results []Result) {
	identity := containsAny(lower, identityWords)
	counting := containsAny(lower, countingWords)
	recency := containsAny(lower, recencyWords)
	managing := containsAny(lower, manageVerbs)

	for i := range results {
		switch {
		case identity && results[i].Category == CategoryUser:
			results[i].Score = clamp(results[i].Score * 1.3)
			results[i].Reason += "; boost=identity"
		case counting && statBearingCategories[results[i].Category]:
			results[i].Score = clamp(results[i].Score * 1.2)
			results[i].Reason += "; boost=counting"
		case recency && timeSensitiveCategories[results[i].Category]:
			results[i].Score = clamp(results[i].Score * 1.2)
			results[i].Reason += "; boost=recency"
		}
		if managing && results[i].Scenario == ScenarioManagement {
			results[i].Score = clamp(results[i].Score * 1.5)
			results[i].Reason += "; boost=management"
		}
	}
}

// keywordWeight gives longer keywords a higher constant weight,
// since they are less likely to match by accident.
func keywordWeight(kw string) float64 {
	n := utf8.RuneCountInString(kw)
	if n >= 4 {
		return 0.2
	}
	if n >= 2 {
		return 0.15
	}
	return 0.1
}

func clamp(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
