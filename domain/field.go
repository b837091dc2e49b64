package domain

// FieldState says what a patch intends for a single field.
type FieldState uint8

const (
	// FieldUnset means the caller did not mention the field; the stored value stays.
	FieldUnset FieldState = iota
	// FieldKeep means the caller decided the field keeps its current value.
	FieldKeep
	// FieldSet means the field is overwritten, possibly with a null value.
	FieldSet
)

// Field is a tagged optional: Unset, Keep, or SetTo(value).
type Field[T any] struct {
	state FieldState
	value T
}

func Unset[T any]() Field[T] { return Field[T]{} }

func Keep[T any]() Field[T] { return Field[T]{state: FieldKeep} }

func SetTo[T any](v T) Field[T] { return Field[T]{state: FieldSet, value: v} }

func (f Field[T]) State() FieldState { return f.state }

func (f Field[T]) IsSet() bool { return f.state == FieldSet }

// Value returns the new value and whether the field is in the Set state.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == FieldSet
}

// Or resolves the field against the current value.
func (f Field[T]) Or(current T) T {
	if f.state == FieldSet {
		return f.value
	}
	return current
}

// Resolve turns Keep into an explicit SetTo(current). Unset stays Unset.
func (f Field[T]) Resolve(current T) Field[T] {
	if f.state == FieldKeep {
		return SetTo(current)
	}
	return f
}
