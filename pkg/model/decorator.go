package model

// Decorator enriches a form definition after it has been loaded or derived
// from a schema (type inference, defaults).
type Decorator interface {
	Decorate(*FormDef) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormDef) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(def *FormDef) error {
	return fn(def)
}

// Decorate applies decorators in order and stops at the first error.
func Decorate(def *FormDef, decorators ...Decorator) error {
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(def); err != nil {
			return err
		}
	}
	return nil
}
