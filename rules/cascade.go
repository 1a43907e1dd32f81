package rules

import (
	"fmt"
	"sort"
)

// Fallback is the mode chosen when no cascade rule matches.
const Fallback = "economy"

// DefaultRules is the macro transition cascade. Defending outranks
// attacking, which outranks building an army, which outranks scouting.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			Name:         "init",
			Priority:     1000,
			ConditionSrc: `Mode == "init"`,
			Next:         "economy",
		},
		{
			Name:         "defend",
			Priority:     900,
			ConditionSrc: `EnemyNearBase`,
			Next:         "defend",
		},
		{
			Name:         "attack",
			Priority:     800,
			ConditionSrc: `Army >= AttackThreshold`,
			Next:         "attack",
		},
		{
			Name:         "army",
			Priority:     700,
			ConditionSrc: `Army < AttackThreshold && Workers >= ArmyMinWorkers && Production >= ArmyMinProduction`,
			Next:         "army",
		},
		{
			Name:         "scout",
			Priority:     600,
			ConditionSrc: `!ScoutSent && Workers > ScoutMinWorkers`,
			Next:         "scout",
		},
	}
}

// WithConditions returns rules with the condition source of named rules
// replaced. Unknown names are an error so typos in config do not silently
// leave the default in place.
func WithConditions(rules []*Rule, overrides map[string]string) ([]*Rule, error) {
	byName := make(map[string]*Rule, len(rules))
	for _, r := range rules {
		byName[r.Name] = r
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("override for unknown rule %q", name)
		}
		r.ConditionSrc = overrides[name]
	}
	return rules, nil
}

// NewCascade builds the default cascade with optional condition overrides.
func NewCascade(overrides map[string]string) (*Engine, error) {
	rules, err := WithConditions(DefaultRules(), overrides)
	if err != nil {
		return nil, err
	}
	return NewEngine(rules, Fallback)
}
