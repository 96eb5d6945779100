// Package try holds a value together with the error that may have replaced it.
// It is the settled form of an asynchronous call: either a value or a failure.
package try

// Try is the outcome of a computation. Exactly one of Value and Error is
// meaningful: Value when Error is nil, Error otherwise.
type Try[A any] struct {
	Value A
	Error error
}

// Of builds a Try from the usual (value, error) return pair.
func Of[A any](value A, err error) Try[A] {
	if err != nil {
		return Failed[A](err)
	}

	return Succeeded(value)
}

// Succeeded wraps a successful value.
func Succeeded[A any](value A) Try[A] {
	return Try[A]{Value: value}
}

// Failed wraps an error. The value is the zero value of A.
func Failed[A any](err error) Try[A] {
	return Try[A]{Error: err}
}

func (t Try[A]) IsSuccess() bool {
	return t.Error == nil
}

func (t Try[A]) IsFailure() bool {
	return t.Error != nil
}

// Get unpacks the Try back into a (value, error) pair.
func (t Try[A]) Get() (A, error) { //nolint:ireturn
	if t.IsFailure() {
		var zero A

		return zero, t.Error
	}

	return t.Value, nil
}

// Fold collapses the Try into a single value by applying onSuccess or onFailure.
func Fold[A, B any](t Try[A], onSuccess func(A) B, onFailure func(error) B) B { //nolint:ireturn
	if t.IsSuccess() {
		return onSuccess(t.Value)
	}

	return onFailure(t.Error)
}
