// Package visibility decides whether conditionally displayed fields are shown.
// Hidden fields keep their values but are left out of form validity.
package visibility

// Evaluator determines whether a field is visible given its rule and the
// current form values.
type Evaluator interface {
	Eval(field, rule string, ctx Context) (bool, error)
}

// Context carries the inputs of a rule. Values holds the current display
// value of every field; Extras lets callers inject flags or roles, read
// through the `extras.` prefix.
type Context struct {
	Values map[string]string
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(field, rule string, ctx Context) (bool, error) {
	return fn(field, rule, ctx)
}

// Always is an evaluator that shows every field.
var Always = EvaluatorFunc(func(string, string, Context) (bool, error) { return true, nil })
