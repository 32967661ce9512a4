package recipe

import (
	"errors"
	"fmt"
)

// ErrContractViolation marks programming errors: misuse of the recipe API or
// a processor breaking its contract. These errors are not operational
// failures and are never mailed.
var ErrContractViolation = errors.New("contract violation")

var (
	ErrAlreadyInitialized = fmt.Errorf("%w: recipe already initialized", ErrContractViolation)
	ErrNilResult          = fmt.Errorf("%w: processor returned no result", ErrContractViolation)
	ErrEmptyStepInput     = fmt.Errorf("%w: step called with an empty input", ErrContractViolation)

	ErrNoProvider    = errors.New("no run data provider has been defined")
	ErrDuplicateStep = errors.New("duplicate step name")
	ErrInvalidStep   = errors.New("invalid step")
	ErrUnknownRun    = errors.New("unknown run")
)

// UnknownRunError is returned when a requested run is not listed by any
// provider. It matches ErrUnknownRun.
type UnknownRunError struct {
	ID string
}

func (e *UnknownRunError) Error() string {
	return "Unknown run: " + e.ID
}

func (e *UnknownRunError) Is(target error) bool {
	return target == ErrUnknownRun
}

// IsContractViolation reports whether err signals a caller or processor bug.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}
