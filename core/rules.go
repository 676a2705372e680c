package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// RuleResolver maps a rule identity to its stored row id.
type RuleResolver interface {
	ResolveRuleID(ctx context.Context, key schema.RuleKey) (int64, error)
}

// CachingRuleResolver looks rules up through a finder and remembers hits.
// It is safe for concurrent use. Misses are not cached.
type CachingRuleResolver struct {
	finder contract.RuleFinder
	mu     sync.RWMutex
	ids    map[schema.RuleKey]int64
}

// NewCachingRuleResolver returns a resolver over finder.
func NewCachingRuleResolver(finder contract.RuleFinder) *CachingRuleResolver {
	return &CachingRuleResolver{finder: finder, ids: make(map[schema.RuleKey]int64)}
}

// ResolveRuleID returns the rule id or an error wrapping ErrRuleNotFound.
func (r *CachingRuleResolver) ResolveRuleID(ctx context.Context, key schema.RuleKey) (int64, error) {
	r.mu.RLock()
	id, ok := r.ids[key]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	rule, err := r.finder.FindRuleByKey(ctx, key)
	if errors.Is(err, contract.ErrNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrRuleNotFound, key)
	}
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	r.ids[key] = rule.ID
	r.mu.Unlock()
	return rule.ID, nil
}
