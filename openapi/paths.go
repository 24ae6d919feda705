package openapi

import (
	"net/http"
	"strings"

	"github.com/Gobd/fhiroas/conformance"
	"github.com/Gobd/fhiroas/transform"
	"github.com/getkin/kin-openapi/openapi3"
)

type route struct {
	path   string // {type} is replaced by the resource type
	method string
	anchor string // section of the FHIR RESTful API page
}

var interactionRoutes = map[conformance.InteractionCode]route{
	conformance.SearchType:      {"/{type}", http.MethodGet, "search"},
	conformance.Read:            {"/{type}/{id}", http.MethodGet, "read"},
	conformance.VRead:           {"/{type}/{id}/_history/{version}", http.MethodGet, "vread"},
	conformance.Update:          {"/{type}/{id}", http.MethodPut, "update"},
	conformance.Create:          {"/{type}", http.MethodPost, "create"},
	conformance.Patch:           {"/{type}/{id}", http.MethodPatch, "patch"},
	conformance.Delete:          {"/{type}/{id}", http.MethodDelete, "delete"},
	conformance.HistoryType:     {"/{type}/_history", http.MethodGet, "history"},
	conformance.HistoryInstance: {"/{type}/{id}/_history", http.MethodGet, "history"},
}

// InteractionRoute returns the path and method of a resource interaction.
// ok is false for codes that are not resource level interactions.
func InteractionRoute(code conformance.InteractionCode, resourceType string) (path, method string, ok bool) {
	r, ok := interactionRoutes[code]
	if !ok {
		return "", "", false
	}
	return strings.Replace(r.path, "{type}", resourceType, 1), r.method, true
}

// interaction builds the operation for one declared resource interaction.
func (b *build) interaction(res *conformance.Resource, in *conformance.Interaction) (*openapi3.Operation, error) {
	r := interactionRoutes[in.Code]
	op := &openapi3.Operation{
		Tags:        []string{res.Type},
		Description: in.Documentation,
	}
	if b.opts.Enhance {
		op.ExternalDocs = &openapi3.ExternalDocs{
			Description: "FHIR RESTful API - " + string(in.Code),
			URL:         "https://hl7.org/fhir/R4/http.html#" + r.anchor,
		}
		if in.Expectation != "" {
			op.Description += "\n\n Query Conformance Expectation: **" + string(in.Expectation) + "** be supported."
		}
	}
	if strings.Contains(r.path, "{id}") {
		op.Parameters = append(op.Parameters, idParameter())
	}
	if in.Code == conformance.VRead {
		op.Parameters = append(op.Parameters, versionParameter())
	}

	switch in.Code {
	case conformance.SearchType:
		if b.opts.Enhance {
			op.Description += combinationTable(res)
		}
		params, err := b.searchParameters(res)
		if err != nil {
			return nil, err
		}
		op.Parameters = append(op.Parameters, params...)
		examples := b.exampleRefs(in.Examples, false, false, true, res.Type)
		if len(examples) == 0 {
			examples = openapi3.Examples{"example": {Value: &openapi3.Example{Value: SearchSet(b.searchEntry(res.Type))}}}
		}
		op.Responses = b.okResponse(b.content("Bundle", "", examples))
	case conformance.Read, conformance.VRead:
		op.Responses = b.okResponse(b.content(res.Type, res.Profile, b.exampleRefs(in.Examples, false, false, false, res.Type)))
	case conformance.Create, conformance.Update:
		create := in.Code == conformance.Create
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(b.content(res.Type, res.Profile, b.exampleRefs(in.Examples, true, create, false, res.Type)))}
		examples := b.exampleRefs(in.Examples, false, false, false, res.Type)
		examples["acknowledgement"] = &openapi3.ExampleRef{Value: &openapi3.Example{
			Summary: "Acknowledgement",
			Value:   SuccessOutcome(),
		}}
		op.Responses = b.okResponse(b.content("OperationOutcome", "", examples))
	case conformance.Patch:
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.Content{MediaJSONPatch: &openapi3.MediaType{
				Schema:  b.jsonPatchRef(),
				Example: PatchExample(res.Type),
			}})}
		op.Responses = b.okResponse(b.content("OperationOutcome", "", nil))
	case conformance.Delete:
		op.Responses = b.okResponse(b.content("OperationOutcome", "", nil))
	case conformance.HistoryType, conformance.HistoryInstance:
		history := historyParameters()
		params, err := b.searchParameters(res)
		if err != nil {
			return nil, err
		}
		for _, p := range params {
			if history.GetByInAndName(openapi3.ParameterInQuery, p.Value.Name) == nil {
				history = append(history, p)
			}
		}
		op.Parameters = append(op.Parameters, history...)
		op.Responses = b.okResponse(b.content("Bundle", "", nil))
	}
	return op, nil
}

// searchEntry is the resource placed in a synthesized searchset.
func (b *build) searchEntry(resourceType string) Resource {
	r := DefaultResource(resourceType)
	r["id"] = ExampleID(resourceType)
	return r
}

func idParameter() *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: &openapi3.Parameter{
		Name:        "id",
		In:          openapi3.ParameterInPath,
		Description: "The resource ID",
		Required:    true,
		Style:       openapi3.SerializationSimple,
		Example:     "6160eb19-6fc3-4b43-953a-54ea01dc1cf4",
		Schema:      openapi3.NewStringSchema().WithMinLength(1).NewRef(),
	}}
}

func versionParameter() *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: &openapi3.Parameter{
		Name:        "version",
		In:          openapi3.ParameterInPath,
		Description: "The resource version ID",
		Required:    true,
		Style:       openapi3.SerializationSimple,
		Example:     "1",
		Schema:      openapi3.NewStringSchema().WithMinLength(1).NewRef(),
	}}
}

// historyParameters are the paging parameters of history interactions. The
// declared search parameters of the resource follow them.
func historyParameters() openapi3.Parameters {
	count := openapi3.NewStringSchema().WithPattern(`^[1-9][0-9]*$`)
	count.Example = "10"
	since := openapi3.NewDateTimeSchema()
	since.Example = exampleInstant
	return openapi3.Parameters{
		{Value: openapi3.NewQueryParameter("_count").
			WithDescription("Maximum number of entries per page").
			WithSchema(count)},
		{Value: openapi3.NewQueryParameter("_since").
			WithDescription("Only include resource versions created at or after this instant").
			WithSchema(since)},
	}
}

// combinationTable documents the search parameter combinations of res.
func combinationTable(res *conformance.Resource) string {
	if len(res.Combinations) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\n **Search Parameter Combination Conformance** \n\n")
	sb.WriteString("| Conformance Expectation | Parameter Combination | \n")
	sb.WriteString("|----------|---------| \n")
	for _, c := range res.Combinations {
		var names []string
		for _, n := range c.Required {
			names = append(names, "["+n+"](https://www.hl7.org/fhir/R4/"+res.Type+".html#search)")
		}
		for _, n := range c.Optional {
			names = append(names, "["+n+"](https://www.hl7.org/fhir/R4/"+res.Type+".html#search) *optional*")
		}
		expectation := ""
		if c.Expectation != "" {
			expectation = "**" + string(c.Expectation) + "**"
		}
		sb.WriteString("| " + expectation + "| " + transform.EscapePipe(strings.Join(names, " + ")) + " | \n")
	}
	return sb.String()
}
