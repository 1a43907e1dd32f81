package rules

import "github.com/expr-lang/expr/vm"

// Rule is one step of the mode transition cascade: a condition and the mode
// to switch to when it holds. The engine evaluates rules by priority and the
// first match wins.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	ConditionSrc string      // expr source (preserved for overrides and logs)
	Next         string      // mode selected when the condition holds
	program      *vm.Program // compiled bytecode
}
