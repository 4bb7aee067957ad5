// Optional values.
//
// Type Option represents an optional value: every Option is either Some and
// contains a value, or None, and does not. Unlike a pointer-based encoding,
// the value is stored inline, so Option[T] is comparable whenever T is.
package opt

import "fmt"

// The Option type.
type Option[T any] struct {
	value T
	ok    bool
}

// Some value of type T.
func Some[T any](value T) Option[T] { return Option[T]{value, true} }

// No value.
func None[T any]() Option[T] { return Option[T]{} }

// Wrap an (value, ok) pair as an Option.
func Wrap[T any](value T, ok bool) Option[T] {
	if !ok {
		return None[T]()
	}

	return Some(value)
}

func (o Option[T]) String() string {
	if o.ok {
		return fmt.Sprintf("Some(%v)", o.value)
	}

	return "None"
}

// Returns true if the option is a Some value.
func (o Option[T]) IsSome() bool { return o.ok }

// Returns true if the option is a None value.
func (o Option[T]) IsNone() bool { return !o.ok }

// Get returns the contained value and whether it is present.
func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

// Returns the contained Some value, or panics if the value is a None with a
// custom panic message provided by msg.
func (o Option[T]) Expect(msg string) T {
	if !o.ok {
		panic(msg)
	}

	return o.value
}

// Returns the contained Some value.
func (o Option[T]) Unwrap() T {
	return o.Expect("called `Option.Unwrap()` on a `None` value")
}

// Returns the contained Some value or a provided default.
func (o Option[T]) UnwrapOr(def T) T {
	if !o.ok {
		return def
	}

	return o.value
}

// Returns the contained Some value or a default.
func (o Option[T]) UnwrapOrDefault() (v T) {
	if o.ok {
		v = o.value
	}

	return
}
