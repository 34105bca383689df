package train

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDataSource = errors.New("no example source bound")
	ErrInvalidTransition = errors.New("invalid session transition")
)

// MissingDataSourceError is returned when training starts before a Source is set.
type MissingDataSourceError struct {
	Op string
}

func (e *MissingDataSourceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, ErrMissingDataSource)
}

func (e *MissingDataSourceError) Is(target error) bool { return target == ErrMissingDataSource }

// TransitionError names the rejected state change.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
