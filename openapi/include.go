package openapi

import (
	"strings"

	"github.com/Gobd/fhiroas"
	"github.com/Gobd/fhiroas/conformance"
	"github.com/getkin/kin-openapi/openapi3"
)

const includeExample = "MedicationRequest:patient"

func includeSchema(name string, values []any) (*openapi3.SchemaRef, error) {
	s := openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
	s.Example = includeExample
	ref := s.NewRef()
	if len(values) == 0 {
		return ref, nil
	}
	if _, err := fhiroas.DescribeRules(name, []fhiroas.Rule{fhiroas.In(values...)}, ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// includeParameters builds _include from the declared search includes.
// Includes of the resource itself become its allowed values; includes of
// other resources go on a sibling _include:iterate parameter, which is
// returned only when there are any.
func (b *build) includeParameters(res *conformance.Resource, decl conformance.SearchParam) (*openapi3.Parameter, []*openapi3.Parameter, error) {
	var own, other []any
	desc := decl.Documentation
	for _, inc := range res.SearchIncludes {
		target, code, ok := strings.Cut(inc, ":")
		if target == res.Type {
			own = append(own, inc)
		} else {
			other = append(other, inc)
		}
		if target == "*" {
			continue
		}
		switch {
		case !ok:
			desc += "\n **FHIR ERROR _include " + inc + " format {resourceType}:{searchParameterName}**"
		case !b.searchParameterExists(target, code):
			desc += "\n **FHIR ERROR _include " + inc + " searchParameter " + code + " does not exist for " + target + "**"
		}
	}

	schema, err := includeSchema("_include", own)
	if err != nil {
		return nil, nil, err
	}
	explode := true
	p := &openapi3.Parameter{
		Name:        "_include",
		In:          openapi3.ParameterInQuery,
		Description: desc,
		Style:       openapi3.SerializationForm,
		Explode:     &explode,
		Schema:      schema,
	}
	if len(other) == 0 {
		return p, nil, nil
	}
	schema, err = includeSchema("_include:iterate", other)
	if err != nil {
		return nil, nil, err
	}
	iterate := &openapi3.Parameter{
		Name:        "_include:iterate",
		In:          openapi3.ParameterInQuery,
		Description: "The inclusion process can be iterative",
		Schema:      schema,
	}
	return p, []*openapi3.Parameter{iterate}, nil
}

// revincludeParameter builds _revinclude from the declared reverse includes.
func (b *build) revincludeParameter(res *conformance.Resource, decl conformance.SearchParam) (*openapi3.Parameter, error) {
	values := make([]any, 0, len(res.SearchRevIncludes))
	desc := decl.Documentation
	for _, inc := range res.SearchRevIncludes {
		values = append(values, inc)
		target, code, ok := strings.Cut(inc, ":")
		switch {
		case !ok:
			desc += "\n INVALID _revinclude " + inc + " format {resourceType}:{searchParameterName}"
		case !b.searchParameterExists(target, code):
			desc += "\n INVALID _revinclude " + inc + " searchParameter " + code + " does not exist for " + target
		}
	}
	schema, err := includeSchema("_revinclude", values)
	if err != nil {
		return nil, err
	}
	explode := true
	return &openapi3.Parameter{
		Name:        "_revinclude",
		In:          openapi3.ParameterInQuery,
		Description: desc,
		Style:       openapi3.SerializationForm,
		Explode:     &explode,
		Schema:      schema,
	}, nil
}

func (b *build) searchParameterExists(resourceType, code string) bool {
	if code == "*" {
		return true
	}
	_, ok := b.reg.SearchParameters.SearchParameterFor(resourceType, code)
	return ok
}
