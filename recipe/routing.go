package recipe

import (
	"github.com/GenomiqueENS/aozan-sub001/datatype"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
)

// selectStepInput returns the input of a step whose processor requires
// filters. Every filter must match exactly one entry of data; otherwise the
// result is empty and the step does not run for this run. Nil filters are
// ignored and an empty requirement set selects nothing.
func selectStepInput(data *rundata.InputData, filters []datatype.Filter) *rundata.InputData {
	result := rundata.NewInputData()
	for _, f := range filters {
		if f == nil {
			continue
		}
		matched := data.Filter(f)
		if matched.Len() != 1 {
			return rundata.NewInputData()
		}
		result.Merge(matched)
	}
	return result
}
