package datatype

import (
	"fmt"
	"strings"
)

// Filter is a predicate over data types. The set of filters is closed:
// ExactType, CategoryIs, TechnologyIs, PartialIs and And.
type Filter interface {
	Accept(t DataType) bool
	String() string
	filter()
}

// ExactType accepts only data types equal to Type.
type ExactType struct{ Type DataType }

// CategoryIs accepts data types of the given category.
type CategoryIs struct{ Category Category }

// TechnologyIs accepts data types of the given sequencing technology.
type TechnologyIs struct{ Technology Technology }

// PartialIs accepts data types whose partial flag equals Partial.
type PartialIs struct{ Partial bool }

// And accepts a data type when every sub-filter does. An empty And accepts
// everything; nil members are ignored.
type And []Filter

var (
	_ Filter = ExactType{}
	_ Filter = CategoryIs{}
	_ Filter = TechnologyIs{}
	_ Filter = PartialIs{}
	_ Filter = And{}
)

func (f ExactType) Accept(t DataType) bool    { return t == f.Type }
func (f CategoryIs) Accept(t DataType) bool   { return t.category == f.Category }
func (f TechnologyIs) Accept(t DataType) bool { return t.technology == f.Technology }
func (f PartialIs) Accept(t DataType) bool    { return t.partial == f.Partial }

func (f And) Accept(t DataType) bool {
	for _, sub := range f {
		if sub == nil {
			continue
		}
		if !sub.Accept(t) {
			return false
		}
	}
	return true
}

func (f ExactType) String() string    { return "type=" + f.Type.String() }
func (f CategoryIs) String() string   { return "category=" + string(f.Category) }
func (f TechnologyIs) String() string { return "technology=" + string(f.Technology) }
func (f PartialIs) String() string    { return fmt.Sprintf("partial=%t", f.Partial) }

func (f And) String() string {
	parts := make([]string, 0, len(f))
	for _, sub := range f {
		if sub != nil {
			parts = append(parts, sub.String())
		}
	}
	return "and(" + strings.Join(parts, ", ") + ")"
}

func (ExactType) filter()    {}
func (CategoryIs) filter()   {}
func (TechnologyIs) filter() {}
func (PartialIs) filter()    {}
func (And) filter()          {}

// All combines filters with And.
func All(filters ...Filter) And {
	return And(filters)
}
