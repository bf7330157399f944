package ai

import (
	"errors"
	"fmt"
	"reflect"
)

// Configuration errors are returned at construction or registration time.
var (
	ErrEmptyName        = errors.New("ai: name must not be empty")
	ErrNilCollaborator  = errors.New("ai: required collaborator is nil")
	ErrDuplicateName    = errors.New("ai: duplicate name")
	ErrDuplicateItem    = errors.New("ai: item already added")
	ErrActionAlreadySet = errors.New("ai: option already has an action; unset it first")
	ErrNotFound         = errors.New("ai: not found in registry")
)

// ErrTargetNotFound is returned when a transition's named target cannot be resolved.
var ErrTargetNotFound = errors.New("ai: transition target not found")

// ErrCircularDependency matches every *CircularDependencyError through errors.Is.
var ErrCircularDependency = errors.New("ai: potential circular dependency")

// CircularDependencyError is returned by Think when following transitions
// exceeds MaxRecursions.
type CircularDependencyError struct {
	Iterations int
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("%s after %d transitions", ErrCircularDependency, e.Iterations)
}

func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	return nil
}

// sameInstance reports whether a and b are the same value. Non-comparable
// dynamic types are never equal unless both are the same pointer.
func sameInstance(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil {
		return false
	}
	if ta.Kind() == reflect.Pointer {
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}
