package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRuleKey is returned for malformed rule keys.
var ErrInvalidRuleKey = errors.New("invalid rule key")

// RuleKey identifies a rule inside a rule repository.
type RuleKey struct {
	Repository string `json:"repository"`
	Rule       string `json:"rule"`
}

// Rule statuses.
const (
	RuleReady      = "READY"
	RuleBeta       = "BETA"
	RuleDeprecated = "DEPRECATED"
	RuleRemoved    = "REMOVED"
)

// Rule is a stored rule definition.
type Rule struct {
	ID       int64    `json:"id"`
	Key      RuleKey  `json:"key"`
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Status   string   `json:"status"`
}

// String returns the repository:rule form.
func (k RuleKey) String() string {
	return k.Repository + ":" + k.Rule
}

// IsZero reports whether the key is unset.
func (k RuleKey) IsZero() bool {
	return k.Repository == "" && k.Rule == ""
}

// ParseRuleKey parses a repository:rule string.
func ParseRuleKey(s string) (RuleKey, error) {
	repo, rule, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || repo == "" || rule == "" {
		return RuleKey{}, fmt.Errorf("%w: %q", ErrInvalidRuleKey, s)
	}
	return RuleKey{Repository: repo, Rule: rule}, nil
}

// MustParseRuleKey is like ParseRuleKey but panics on error.
func MustParseRuleKey(s string) RuleKey {
	k, err := ParseRuleKey(s)
	if err != nil {
		panic(err)
	}
	return k
}
