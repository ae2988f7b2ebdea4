package planner

import (
	"fmt"

	"github.com/jobboard/jobfilter/jobfilter/schema"
)

// Registry is the ordered list of condition compilers. The first condition
// that recognises a leaf wins, so more specific conditions must come first.
// A Registry is read-only once built and may be shared between goroutines.
type Registry struct {
	conditions []Condition
}

func NewRegistry(conditions ...Condition) *Registry {
	return &Registry{conditions: append([]Condition(nil), conditions...)}
}

// DefaultRegistry wires the conditions of entity, most specific first: EAV
// attributes, HAS_ANY, IS_ANY, EXISTS and finally plain field comparisons.
func DefaultRegistry(entity schema.Entity) *Registry {
	return NewRegistry(
		NewAttributeCondition(entity),
		NewHasAnyCondition(entity),
		NewIsAnyCondition(entity),
		NewExistsCondition(entity),
		NewBasicCondition(entity),
	)
}

// Resolve returns the first condition recognising expr, or nil.
func (r *Registry) Resolve(expr string) Condition {
	for _, c := range r.conditions {
		if c.Recognizes(expr) {
			return c
		}
	}
	return nil
}

// Names lists the registered conditions in resolution order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.conditions))
	for _, c := range r.conditions {
		out = append(out, c.Name())
	}
	return out
}

// Validate checks that no catch-all condition shadows a specific one.
func (r *Registry) Validate() error {
	seenCatchAll := ""
	for _, c := range r.conditions {
		if isCatchAll(c) {
			if seenCatchAll == "" {
				seenCatchAll = c.Name()
			}
			continue
		}
		if seenCatchAll != "" {
			return fmt.Errorf("condition %q is registered after catch-all %q and can never match first", c.Name(), seenCatchAll)
		}
	}
	return nil
}
