// Package fhiroas provides constraint rules that validate Go values and
// describe themselves onto OpenAPI 3 schemas.
//
// A rule both validates a Go value (through ozzo-validation) and describes
// itself onto a kin-openapi schema. The conformance model uses rules to check
// a decoded CapabilityStatement:
//
//	func (r *Resource) Rules() []*FieldRules {
//	    return []*FieldRules{
//	        Field(&r.Type, Required, is.ResourceType),
//	        Field(&r.SearchParams, Unique(...)),
//	    }
//	}
//
// and the compiler describes query-parameter constraints with the same rules:
//
//	required, err := DescribeRules("_count", []Rule{Required, Min(1)}, ref)
//
// Sub-packages:
//   - conformance – CapabilityStatement model and decoder
//   - registry – definition, search-parameter, value-set and example lookups
//   - openapi – the CapabilityStatement to OpenAPI compiler
//   - transform – string transformation utilities
//   - is – string format rules
package fhiroas
