package boost

import (
	"strings"

	"github.com/civica/policyrag/core"
)

// CategoryOther is the category assigned when no rule matches.
const CategoryOther = "other"

// CategoryClassifier assigns a chunk to a category for category-keyed
// boosts. Implementations must be deterministic.
type CategoryClassifier interface {
	Classify(chunk *core.Chunk) string
}

// categoryRule maps keywords to a category. A chunk whose source name or
// text contains any keyword belongs to the category.
type categoryRule struct {
	category string
	keywords []string
}

// KeywordClassifier categorizes chunks by substring match over the
// source name and text. Rules are checked in order; the first match wins.
type KeywordClassifier struct {
	rules []categoryRule
}

var _ CategoryClassifier = (*KeywordClassifier)(nil)

// NewKeywordClassifier creates a classifier with the default policy
// category rules.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		rules: []categoryRule{
			{category: "activity", keywords: []string{"activity", "event", "festival", "campaign"}},
			{category: "trade-in", keywords: []string{"trade-in", "trade in", "replacement", "subsidy"}},
		},
	}
}

// NewKeywordClassifierWithRules creates a classifier from custom rules.
// Each entry maps a category to its keywords; iteration follows the
// given order.
func NewKeywordClassifierWithRules(categories []string, keywords map[string][]string) *KeywordClassifier {
	rules := make([]categoryRule, 0, len(categories))
	for _, category := range categories {
		rules = append(rules, categoryRule{category: category, keywords: keywords[category]})
	}
	return &KeywordClassifier{rules: rules}
}

// Classify returns the first matching category, or CategoryOther.
func (c *KeywordClassifier) Classify(chunk *core.Chunk) string {
	haystack := strings.ToLower(chunk.Source + " " + chunk.Text)
	for _, rule := range c.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(haystack, keyword) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
