// Package runid rewrites the identifier of run data produced by a step.
package runid

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/GenomiqueENS/aozan-sub001/rundata"
)

const (
	// KeyRunID is bound to the current run identifier during evaluation.
	KeyRunID = "run.id"
	// KeyOriginalRunID is bound to the identifier given by the instrument.
	KeyOriginalRunID = "original.run.id"

	DefaultExpression = "${" + KeyRunID + "}"
)

var (
	ErrEmptyExpression = errors.New("run id expression cannot be empty")
	ErrSyntax          = errors.New("invalid run id expression")
	ErrEmptyRunID      = errors.New("run id expression evaluated to an empty id")
)

// Generator computes the new identifier of run data. Implementations must be
// deterministic and must not modify constants.
type Generator interface {
	NewRunID(id rundata.RunID, constants map[string]string) (rundata.RunID, error)
}

// Template substitutes ${key} references in an expression with constant
// values. References to unknown keys expand to nothing.
type Template struct {
	expr string
}

var _ Generator = &Template{}

// NewTemplate validates expr and returns a generator evaluating it.
func NewTemplate(expr string) (*Template, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, ErrEmptyExpression
	}
	if _, err := evaluate(expr, nil); err != nil {
		return nil, err
	}
	return &Template{expr: expr}, nil
}

// Default returns the generator that keeps the current identifier.
func Default() *Template {
	return &Template{expr: DefaultExpression}
}

func (t *Template) Expression() string { return t.expr }

// NewRunID evaluates the template with constants plus the run.id and
// original.run.id bindings. The original identifier is carried over.
func (t *Template) NewRunID(id rundata.RunID, constants map[string]string) (rundata.RunID, error) {
	values := make(map[string]string, len(constants)+2)
	maps.Copy(values, constants)
	values[KeyRunID] = id.ID
	values[KeyOriginalRunID] = id.Original()

	newID, err := evaluate(t.expr, values)
	if err != nil {
		return rundata.RunID{}, err
	}
	newID = strings.TrimSpace(newID)
	if newID == "" {
		return rundata.RunID{}, fmt.Errorf("%w: %q", ErrEmptyRunID, t.expr)
	}
	return id.WithID(newID), nil
}

func evaluate(expr string, values map[string]string) (string, error) {
	var sb strings.Builder
	rest := expr
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		sb.WriteString(rest[:start])
		end := strings.IndexByte(rest[start+2:], '}')
		if end < 0 {
			return "", fmt.Errorf("%w: unexpected end of expression in %q", ErrSyntax, expr)
		}
		key := strings.TrimSpace(rest[start+2 : start+2+end])
		sb.WriteString(values[key])
		rest = rest[start+2+end+1:]
	}
}
