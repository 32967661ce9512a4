// Package datatype classifies units of run data. A DataType is the routing key
// steps use to find their inputs: a pipeline category, a sequencing technology,
// a type name and two flags.
package datatype

import (
	"fmt"
	"slices"
	"strings"
)

// Category marks the pipeline stage a piece of run data belongs to.
type Category string

const (
	Raw       Category = "raw"
	Processed Category = "processed"
	QC        Category = "qc"
	Analyzed  Category = "analyzed"
	Other     Category = "other"
)

// CategoryPrecedence is the ordering used to pick the most advanced run data of
// a working set: later entries win. It must list every Category exactly once.
var CategoryPrecedence = []Category{Raw, Processed, QC, Analyzed, Other}

// ParseCategory returns the category named s (case-insensitive).
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsKnown() {
		return "", fmt.Errorf("unknown data category: %q", s)
	}
	return c, nil
}

// IsKnown reports whether c is listed in CategoryPrecedence.
func (c Category) IsKnown() bool {
	return slices.Contains(CategoryPrecedence, c)
}

// Technology is the sequencing technology that produced the data.
type Technology string

const (
	Illumina Technology = "illumina"
	Nanopore Technology = "nanopore"
)

// ParseTechnology returns the technology named s (case-insensitive).
func ParseTechnology(s string) (Technology, error) {
	switch t := Technology(strings.ToLower(strings.TrimSpace(s))); t {
	case Illumina, Nanopore:
		return t, nil
	}
	return "", fmt.Errorf("unknown sequencing technology: %q", s)
}

// DataType is an immutable classification tag. The With* methods return
// modified copies.
type DataType struct {
	category   Category
	technology Technology
	name       string
	logOnly    bool
	partial    bool
}

var (
	BCL                  = New(Raw, Illumina, "bcl")
	PartialBCL           = New(Raw, Illumina, "bcl").WithPartial(true)
	Interop              = New(Raw, Illumina, "interop").WithLogOnly(true)
	PartialInterop       = New(Raw, Illumina, "interop").WithLogOnly(true).WithPartial(true)
	IlluminaFastq        = New(Processed, Illumina, "illumina_fastq")
	PartialIlluminaFastq = New(Processed, Illumina, "illumina_fastq").WithPartial(true)
	Fast5                = New(Raw, Nanopore, "fast5")
	NanoporeFastq        = New(Processed, Nanopore, "nanopore_fastq")
)

// New creates a data type. The type name is trimmed and lower-cased and must
// not be empty. The category must be one of CategoryPrecedence.
func New(category Category, technology Technology, name string) DataType {
	return DataType{
		category:   mustCategory(category),
		technology: technology,
		name:       mustTypeName(name),
	}
}

// Parse builds a data type from its textual parts, as found in configuration.
func Parse(category, technology, name string) (DataType, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return DataType{}, err
	}
	tech, err := ParseTechnology(technology)
	if err != nil {
		return DataType{}, err
	}
	if strings.TrimSpace(name) == "" {
		return DataType{}, fmt.Errorf("empty data type name")
	}
	return New(c, tech, name), nil
}

func mustTypeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("datatype: empty type name")
	}
	return n
}

func mustCategory(c Category) Category {
	if !c.IsKnown() {
		panic(fmt.Sprintf("datatype: unknown category %q", c))
	}
	return c
}

func (t DataType) Category() Category     { return t.category }
func (t DataType) Technology() Technology { return t.technology }
func (t DataType) Name() string           { return t.name }
func (t DataType) IsLogOnly() bool        { return t.logOnly }
func (t DataType) IsPartial() bool        { return t.partial }

// IsZero reports whether t is the zero DataType.
func (t DataType) IsZero() bool { return t == DataType{} }

// WithCategory panics when c is not listed in CategoryPrecedence.
func (t DataType) WithCategory(c Category) DataType {
	t.category = mustCategory(c)
	return t
}

func (t DataType) WithTechnology(tech Technology) DataType {
	t.technology = tech
	return t
}

func (t DataType) WithName(name string) DataType {
	t.name = mustTypeName(name)
	return t
}

func (t DataType) WithPartial(partial bool) DataType {
	t.partial = partial
	return t
}

func (t DataType) WithLogOnly(logOnly bool) DataType {
	t.logOnly = logOnly
	return t
}

func (t DataType) String() string {
	return fmt.Sprintf("%s/%s/%s(logOnly=%t, partial=%t)",
		t.category, t.technology, t.name, t.logOnly, t.partial)
}
