package openapi

import (
	"fmt"
	"strings"

	"github.com/Gobd/fhiroas"
	"github.com/Gobd/fhiroas/conformance"
	"github.com/getkin/kin-openapi/openapi3"
)

// searchParameters returns the query parameters of the search-type
// interaction of res, in declaration order.
func (b *build) searchParameters(res *conformance.Resource) (openapi3.Parameters, error) {
	var out openapi3.Parameters
	for _, decl := range res.SearchParams {
		var (
			p    *openapi3.Parameter
			more []*openapi3.Parameter
			err  error
		)
		switch {
		case strings.HasPrefix(decl.Name, "_include") && len(res.SearchIncludes) > 0:
			p, more, err = b.includeParameters(res, decl)
		case strings.HasPrefix(decl.Name, "_revinclude") && len(res.SearchRevIncludes) > 0:
			p, err = b.revincludeParameter(res, decl)
		default:
			p = b.searchParameter(res.Type, decl)
		}
		if err != nil {
			return nil, fmt.Errorf("search parameter %s.%s: %w", res.Type, decl.Name, err)
		}
		if err := b.constrain(p, decl); err != nil {
			return nil, fmt.Errorf("search parameter %s.%s: %w", res.Type, decl.Name, err)
		}
		out = append(out, &openapi3.ParameterRef{Value: p})
		for _, m := range more {
			out = append(out, &openapi3.ParameterRef{Value: m})
		}
	}
	return out, nil
}

// searchParameter resolves decl, chains included, into a query parameter.
func (b *build) searchParameter(resourceType string, decl conformance.SearchParam) *openapi3.Parameter {
	resolved := b.chains.Resolve(resourceType, decl)
	explode := Explode(resolved.Schema)
	return &openapi3.Parameter{
		Name:        decl.Name,
		In:          openapi3.ParameterInQuery,
		Description: decl.Documentation + resolved.Docs.Markdown(),
		Style:       openapi3.SerializationForm,
		Explode:     &explode,
		Schema:      resolved.Schema.NewRef(),
	}
}

// constrain applies the query parameter constraints declared on decl.
func (b *build) constrain(p *openapi3.Parameter, decl conformance.SearchParam) error {
	c := decl.Constraints
	if c == nil {
		return nil
	}
	required, err := fhiroas.DescribeRules(p.Name, c.ParamRules(), p.Schema)
	if err != nil {
		return err
	}
	p.Required = p.Required || required

	if c.AllowedValues == "" {
		return nil
	}
	vs, ok := b.reg.ValueSets.Expand(c.AllowedValues)
	if !ok {
		b.log.Warn().Str("valueSet", c.AllowedValues).Msg("value set not found")
		return nil
	}
	link := vs.URL
	if !strings.HasPrefix(c.AllowedValues, "http://hl7.org") {
		link = "https://simplifier.net/guide/nhsdigital/home"
	}
	p.Description += fmt.Sprintf("\n\n A code from FHIR ValueSet [%s](%s)", vs.Name, link)

	values := make([]any, 0, len(vs.Concepts))
	for _, concept := range vs.Concepts {
		if c.CodeAndSystem() {
			values = append(values, concept.System+"|"+concept.Code)
		} else {
			values = append(values, concept.Code)
		}
	}
	if len(values) == 0 {
		return nil
	}
	_, err = fhiroas.DescribeRules(p.Name, []fhiroas.Rule{fhiroas.In(values...)}, p.Schema)
	return err
}
