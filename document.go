package fhiroas

import (
	"github.com/getkin/kin-openapi/openapi3"
)

type (
	// RuleFunc is a function type that validates a value and returns an error if invalid.
	RuleFunc func(value any) error

	// Rule is the interface that all constraint rules must implement.
	// Describe writes the constraint onto ref; schema is the enclosing object
	// schema and receives required markers.
	Rule interface {
		Validate(value any) error
		Describe(name string, schema *openapi3.Schema, ref *openapi3.SchemaRef) error
	}

	// FieldRules binds a struct field pointer to its rules.
	FieldRules struct {
		fieldPtr any
		tag      string
		rules    []Rule
	}

	// Ruler is implemented by structs that declare rules for their fields.
	Ruler interface {
		Rules() []*FieldRules
	}

	// ValueRuler is implemented by non-struct types (e.g. a code enumeration)
	// that carry their own rules. The rules are applied during validation and
	// schema generation wherever the type appears as a struct field.
	//
	//	type InteractionCode string
	//
	//	func (c InteractionCode) ValueRules() []Rule {
	//	    return []Rule{In(Read, SearchType)}
	//	}
	ValueRuler interface {
		ValueRules() []Rule
	}
)
