// Package domain holds types shared across the pricing, simulation and
// portfolio modules: the error taxonomy and small common enums.
package domain

import "fmt"

// DomainError reports invalid input detected at a component boundary.
// No computation is performed when a DomainError is returned.
type DomainError struct {
	Field  string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewDomainError creates a DomainError for the given field.
func NewDomainError(field, format string, args ...interface{}) *DomainError {
	return &DomainError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConvergenceError reports that an iterative computation exhausted its budget
// before reaching tolerance. Partial holds the best value found so far and
// Bound an estimate of the remaining error, so callers can distinguish an
// unconverged value from ground truth without losing the work done.
type ConvergenceError struct {
	Op         string
	Partial    float64
	Bound      float64
	Iterations int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s did not converge after %d iterations (partial=%g, error bound=%g)",
		e.Op, e.Iterations, e.Partial, e.Bound)
}

// InfeasibleError reports that an optimization constraint set admits no
// solution. The constraints are never silently relaxed.
type InfeasibleError struct {
	Constraint string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible constraints: %s", e.Constraint)
}
