package openapi

import (
	"github.com/Gobd/fhiroas/conformance"
	"github.com/getkin/kin-openapi/openapi3"
)

// Patterns for search parameter values.
const (
	PartialDatePattern = `([0-9]([0-9]([0-9][1-9]|[1-9]0)|[1-9]00)|[1-9]000)(-(0[1-9]|1[0-2])(-(0[1-9]|[1-2][0-9]|3[0-1]))?)?`
	NumberPattern      = `[0]|[-+]?[1-9][0-9]*`
	NonEmptyPattern    = `^[\s\S]+$`
)

// Value format notes shown next to token and reference parameters.
const (
	tokenNote     = "token format: [system]|[code],[code],[system]"
	referenceNote = "reference format: [type]/[id] or [id] or [uri]"
)

// ParamSchema returns the query parameter schema for a search parameter
// type together with a note on the value format, which may be empty.
// Unknown types map to a string whose format is the type itself.
func ParamSchema(t conformance.SearchParamType) (*openapi3.Schema, string) {
	switch t {
	case conformance.TokenParam:
		items := openapi3.NewStringSchema().WithFormat("token")
		items.Description = tokenNote
		s := openapi3.NewArraySchema().WithItems(items)
		// Format is repeated on the array so Swagger UI shows it.
		s.Format = "token"
		return s, tokenNote
	case conformance.ReferenceParam:
		s := openapi3.NewStringSchema().WithFormat("reference")
		s.Description = referenceNote
		return s, referenceNote
	case conformance.DateParam:
		items := openapi3.NewStringSchema().WithFormat("date").WithPattern(PartialDatePattern)
		s := openapi3.NewArraySchema().WithItems(items)
		s.Format = "date"
		return s, ""
	case conformance.NumberParam:
		return openapi3.NewStringSchema().WithPattern(NumberPattern), ""
	case conformance.StringParam:
		return openapi3.NewStringSchema().WithPattern(NonEmptyPattern), ""
	}
	return openapi3.NewStringSchema().WithFormat(string(t)), ""
}

// Explode reports whether a query parameter with schema s is exploded.
// Only dates repeat the parameter, so ge and le bounds can both be given.
func Explode(s *openapi3.Schema) bool {
	return s != nil && s.Format == "date"
}

// fallbackSchema is used for parameters that could not be resolved.
func fallbackSchema() *openapi3.Schema {
	return openapi3.NewStringSchema()
}
