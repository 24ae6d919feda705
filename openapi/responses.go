package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// content returns FHIR JSON content, plus FHIR XML when declared, whose
// schema references resourceType. With no examples the default instance of
// resourceType is shown.
func (b *build) content(resourceType, profile string, examples openapi3.Examples) openapi3.Content {
	ref := b.schemaRef(resourceType, profile)
	media := &openapi3.MediaType{Schema: ref}
	if len(examples) > 0 {
		media.Examples = examples
	} else {
		media.Example = b.defaultExample(resourceType)
	}
	c := openapi3.Content{MediaFHIRJSON: media}
	if b.xml {
		c[MediaFHIRXML] = &openapi3.MediaType{Schema: ref}
	}
	return c
}

// okResponse returns responses holding a single 200.
func (b *build) okResponse(c openapi3.Content) *openapi3.Responses {
	r := openapi3.NewResponsesWithCapacity(3)
	r.Set("200", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Success").WithContent(c)})
	return r
}

// standardResponses adds the client error response every operation has,
// and the forbidden response when the server declares security.
func (b *build) standardResponses(r *openapi3.Responses) {
	r.Set("4xx", &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Client Error").
		WithContent(b.outcome(ErrorOutcome()))})
	if b.desc.Security {
		r.Set("403", &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Forbidden").
			WithContent(b.outcome(ForbiddenOutcome()))})
	}
}

func (b *build) outcome(oo *OperationOutcome) openapi3.Content {
	return openapi3.Content{MediaFHIRJSON: &openapi3.MediaType{
		Schema:  b.schemaRef("OperationOutcome", ""),
		Example: oo,
	}}
}
