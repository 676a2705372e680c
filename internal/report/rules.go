package report

import (
	"fmt"
	"os"

	"github.com/huangsam/trendline/schema"
	"gopkg.in/yaml.v3"
)

type rawRules struct {
	Rules []rawRule `yaml:"rules"`
}

type rawRule struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	Severity string `yaml:"severity"`
	Status   string `yaml:"status"`
}

// LoadRules reads a rule repository file.
func LoadRules(path string) ([]schema.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules %s: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes a rule repository:
//
//	rules:
//	  - key: squid:AvoidCycle
//	    name: Avoid cycles
//	    severity: MAJOR
func ParseRules(data []byte) ([]schema.Rule, error) {
	var raw rawRules
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	rules := make([]schema.Rule, 0, len(raw.Rules))
	for _, r := range raw.Rules {
		key, err := schema.ParseRuleKey(r.Key)
		if err != nil {
			return nil, err
		}
		severity := schema.Severity(r.Severity)
		if severity == "" {
			severity = schema.MajorSeverity
		}
		if _, ok := schema.ValidSeverities[severity]; !ok {
			return nil, fmt.Errorf("rule %s: invalid severity '%s'", key, r.Severity)
		}
		rules = append(rules, schema.Rule{Key: key, Name: r.Name, Severity: severity, Status: r.Status})
	}
	return rules, nil
}
