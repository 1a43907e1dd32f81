package rules

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine evaluates the transition cascade. Rules are checked in descending
// priority and the first whose condition holds picks the next mode; when none
// match, the fallback mode is returned.
type Engine struct {
	rules    []*Rule
	fallback string
}

// Decision is the outcome of one evaluation.
type Decision struct {
	Next string
	Rule string // name of the rule that fired, empty for the fallback
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule, fallback string) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled, fallback: fallback}, nil
}

// Evaluate returns the next mode for env. It depends on env alone, so the
// same input always yields the same decision.
func (e *Engine) Evaluate(env Env) Decision {
	for _, r := range e.rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "next", r.Next)
		return Decision{Next: r.Next, Rule: r.Name}
	}
	return Decision{Next: e.fallback}
}

// Rules returns the compiled rules in evaluation order.
func (e *Engine) Rules() []*Rule { return e.rules }

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
