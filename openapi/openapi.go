package openapi

import (
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Media types written into request and response content.
const (
	MediaFHIRJSON  = "application/fhir+json"
	MediaFHIRXML   = "application/fhir+xml"
	MediaJSONPatch = "application/json-patch+json"
)

// ErrDuplicateOperation is returned when a second operation is registered
// for a path and method that already has one. It means the conformance
// description contradicts itself.
var ErrDuplicateOperation = errors.New("duplicate operation")

// DocBase returns a basic OpenAPI 3.0.3 document structure.
func DocBase(title, description, version string) *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       title,
			Description: description,
			Version:     version,
		},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: openapi3.Schemas{}},
	}
}

// AddPath adds an operation to doc at the given path and method. A path
// holds at most one operation per method; a second registration fails with
// [ErrDuplicateOperation] and leaves the first in place.
func AddPath(doc *openapi3.T, path, method string, op *openapi3.Operation) error {
	p := doc.Paths.Value(path)
	if p == nil {
		p = &openapi3.PathItem{}
		doc.Paths.Set(path, p)
	}
	if p.GetOperation(method) != nil {
		return fmt.Errorf("%w: %s %s", ErrDuplicateOperation, method, path)
	}
	p.SetOperation(method, op)
	return nil
}

// MustAddPath is like [AddPath] but panics on error.
func MustAddPath(doc *openapi3.T, path, method string, op *openapi3.Operation) {
	if err := AddPath(doc, path, method, op); err != nil {
		panic(err)
	}
}
