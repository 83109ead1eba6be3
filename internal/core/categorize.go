package core

import "strings"

// DefaultCategory is assigned when no keyword matches.
const DefaultCategory = "Other"

// KeywordRule maps a lowercase keyword to a category.
type KeywordRule struct {
	Keyword  string
	Category string
}

// DefaultRules returns the built-in keyword table in match order.
func DefaultRules() []KeywordRule {
	return []KeywordRule{
		{"uber", "Transport"},
		{"taxi", "Transport"},
		{"bus", "Transport"},
		{"train", "Transport"},
		{"pizza", "Food"},
		{"restaurant", "Food"},
		{"grocery", "Food"},
		{"salary", "Salary"},
		{"freelance", "Freelance"},
		{"rent", "Rent"},
		{"movie", "Entertainment"},
		{"netflix", "Entertainment"},
		{"electricity", "Utilities"},
		{"water", "Utilities"},
		{"internet", "Utilities"},
		{"shopping", "Shopping"},
		{"clothes", "Shopping"},
		{"gift", "Gifts"},
		{"medical", "Health"},
		{"doctor", "Health"},
		{"pharmacy", "Health"},
	}
}

// Categorizer assigns a category to a free-text description by the first
// keyword it contains. Safe for concurrent use once built.
type Categorizer struct {
	rules []KeywordRule
}

// NewCategorizer builds a categorizer over rules, or over DefaultRules when
// none are given. Keywords are lowercased; empty keywords are dropped since
// they would match every description.
func NewCategorizer(rules ...KeywordRule) *Categorizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	c := &Categorizer{rules: make([]KeywordRule, 0, len(rules))}
	for _, r := range rules {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" {
			continue
		}
		c.rules = append(c.rules, KeywordRule{Keyword: kw, Category: r.Category})
	}
	return c
}

// Categorize returns the category of the first rule whose keyword is a
// substring of the lowercased description, or DefaultCategory.
func (c *Categorizer) Categorize(description string) string {
	desc := strings.ToLower(description)
	for _, r := range c.rules {
		if strings.Contains(desc, r.Keyword) {
			return r.Category
		}
	}
	return DefaultCategory
}
