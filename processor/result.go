package processor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/GenomiqueENS/aozan-sub001/mail"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
)

var ErrInvalidResult = errors.New("invalid process result")

// Result is the output of one processor call: the run data it produced and
// one notification.
type Result struct {
	runData []rundata.RunData
	message mail.Message
}

// NewResult validates runData and builds a result. Zero run data are rejected
// and the zero Message is stored as mail.NoMessage.
func NewResult(message mail.Message, runData ...rundata.RunData) (*Result, error) {
	for i, r := range runData {
		if r.IsZero() {
			return nil, fmt.Errorf("%w: run data #%d is empty", ErrInvalidResult, i)
		}
	}
	if message == (mail.Message{}) {
		message = mail.NoMessage()
	}
	return &Result{runData: slices.Clone(runData), message: message}, nil
}

// RunData returns a copy of the produced run data.
func (r *Result) RunData() []rundata.RunData {
	return slices.Clone(r.runData)
}

func (r *Result) Message() mail.Message {
	return r.message
}

// InputData returns the produced run data as a working set.
func (r *Result) InputData() *rundata.InputData {
	return rundata.NewInputData(r.runData...)
}
