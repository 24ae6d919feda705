package openapi

import (
	"github.com/Gobd/fhiroas"
	"github.com/getkin/kin-openapi/openapi3"
)

// PatchOperation is one JSON Patch (RFC 6902) operation.
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	From  string `json:"from,omitempty"`
	Value any    `json:"value,omitempty"`
}

func (p *PatchOperation) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&p.Op, fhiroas.Required, fhiroas.In("add", "remove", "replace", "move", "copy", "test")),
		fhiroas.Field(&p.Path, fhiroas.Required, fhiroas.Length(1, 0), fhiroas.Example("/status"), fhiroas.Describe("JSON Pointer to the target element.")),
		fhiroas.Field(&p.From, fhiroas.Describe("JSON Pointer to the source element of move and copy.")),
		fhiroas.Field(&p.Value),
	}
}

// JSONPatchSchema is the component name of the JSON Patch document schema.
const JSONPatchSchema = "JSONPATCH"

// NewJSONPatchSchema returns the schema of a JSON Patch document, an array
// of [PatchOperation].
func NewJSONPatchSchema() (*openapi3.SchemaRef, error) {
	item, err := fhiroas.NewSchemaRefForValue(PatchOperation{})
	if err != nil {
		return nil, err
	}
	s := openapi3.NewArraySchema()
	s.Items = item
	s.Description = "See [JSON Patch](http://jsonpatch.com/)"
	return openapi3.NewSchemaRef("", s), nil
}

// MustJSONPatchSchema is like [NewJSONPatchSchema] but panics on error.
func MustJSONPatchSchema() *openapi3.SchemaRef {
	s, err := NewJSONPatchSchema()
	if err != nil {
		panic(err)
	}
	return s
}

func (b *build) jsonPatchRef() *openapi3.SchemaRef {
	if !b.schemas.Has(JSONPatchSchema) {
		b.schemas.Add(JSONPatchSchema, MustJSONPatchSchema())
	}
	return openapi3.NewSchemaRef("#/components/schemas/"+JSONPatchSchema, nil)
}
