// Package classification assigns categories to transactions from their free-text description.
package classification

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Veraticus/fti/internal/model"
)

// ErrInvalidRule is returned when a keyword rule cannot be used.
var ErrInvalidRule = errors.New("invalid classification rule")

// Rule maps a category to the keywords that select it.
type Rule struct {
	Category model.Category `mapstructure:"category"`
	Keywords []string       `mapstructure:"keywords"`
}

// Classifier matches descriptions against an ordered keyword table.
// It is safe for concurrent use; UpdateRules swaps the table atomically.
type Classifier struct {
	rules []Rule
	mu    sync.RWMutex
}

// NewClassifier creates a classifier over rules, checked in the given order.
func NewClassifier(rules []Rule) (*Classifier, error) {
	normalized, err := normalizeRules(rules)
	if err != nil {
		return nil, err
	}
	return &Classifier{rules: normalized}, nil
}

// NewDefaultClassifier creates a classifier over DefaultRules.
func NewDefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("default classification rules are invalid: %v", err))
	}
	return c
}

// Classify returns the first category with a keyword contained in the lowercased
// description, or model.CategoryOther when nothing matches.
func (c *Classifier) Classify(description string) model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	text := strings.ToLower(description)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule.Category
			}
		}
	}

	return model.CategoryOther
}

// Resolve picks the category to store for a new transaction. An explicit category wins,
// except Other, which is treated like a missing category and classified again.
func (c *Classifier) Resolve(requested model.Category, description string) model.Category {
	if requested != "" && requested != model.CategoryOther {
		return requested
	}
	return c.Classify(description)
}

// UpdateRules replaces the keyword table.
func (c *Classifier) UpdateRules(rules []Rule) error {
	normalized, err := normalizeRules(rules)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.rules = normalized
	c.mu.Unlock()

	return nil
}

// Rules returns a copy of the active keyword table.
func (c *Classifier) Rules() []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Rule, len(c.rules))
	for i, rule := range c.rules {
		out[i] = Rule{Category: rule.Category, Keywords: append([]string(nil), rule.Keywords...)}
	}
	return out
}

func normalizeRules(rules []Rule) ([]Rule, error) {
	normalized := make([]Rule, 0, len(rules))
	for i, rule := range rules {
		if !rule.Category.IsValid() {
			return nil, fmt.Errorf("%w: rule %d: %w: %q", ErrInvalidRule, i, model.ErrUnknownCategory, rule.Category)
		}

		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			keywords = append(keywords, kw)
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: rule %d (%s) has no keywords", ErrInvalidRule, i, rule.Category)
		}

		normalized = append(normalized, Rule{Category: rule.Category, Keywords: keywords})
	}
	return normalized, nil
}
