package rundata

import (
	"errors"
	"fmt"
)

// RunError is an error raised while processing a run.
type RunError struct {
	RunID RunID
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s: %v", e.RunID.ID, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// WrapRunError attaches id to err. A nil err stays nil and an error already
// carrying a run id is returned unchanged.
func WrapRunError(id RunID, err error) error {
	if err == nil {
		return nil
	}
	var runErr *RunError
	if errors.As(err, &runErr) {
		return err
	}
	return &RunError{RunID: id, Err: err}
}
