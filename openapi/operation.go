package openapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Gobd/fhiroas/conformance"
	"github.com/Gobd/fhiroas/registry"
	"github.com/Gobd/fhiroas/transform"
	"github.com/getkin/kin-openapi/openapi3"
)

// UnknownOperationURL is the canonical URL given to stub definitions of
// operations whose definition cannot be resolved.
const UnknownOperationURL = "http://example.fhir.org/unknown-operation"

const messageBundleProfile = "https://fhir.nhs.uk/StructureDefinition/NHSDigital-Bundle-FHIRMessage"

// operation adds the paths of a custom operation. resourceType is empty for
// system level operations.
func (b *build) operation(resourceType string, decl *conformance.Operation) error {
	def, ok := b.reg.Definitions.OperationDefinition(decl.Definition)
	if !ok {
		b.log.Warn().Str("operation", decl.Name).Str("definition", decl.Definition).Msg("operation definition not found")
		stub := &registry.OperationDefinition{
			URL:         UnknownOperationURL,
			Code:        decl.Name,
			Description: "**NOT HL7 FHIR Conformant** - No definition found for custom operation",
			System:      true,
		}
		return b.add("/$"+stub.Code, http.MethodGet, b.populate(resourceType, stub, decl, true))
	}

	get := !def.AffectsState
	method := http.MethodPost
	if get {
		method = http.MethodGet
	}
	if resourceType == "" {
		if !def.System {
			return nil
		}
		return b.add("/$"+def.Code, method, b.populate("", def, decl, get))
	}
	if def.Type {
		if err := b.add("/"+resourceType+"/$"+def.Code, method, b.populate(resourceType, def, decl, get)); err != nil {
			return err
		}
	}
	if def.Instance {
		op := b.populate(resourceType, def, decl, get)
		op.Parameters = append(openapi3.Parameters{idParameter()}, op.Parameters...)
		if err := b.add("/"+resourceType+"/{id}/$"+def.Code, method, op); err != nil {
			return err
		}
	}
	return nil
}

// populate builds one operation variant. GET variants take the input
// parameters as query parameters, POST variants as a request body.
func (b *build) populate(resourceType string, def *registry.OperationDefinition, decl *conformance.Operation, get bool) *openapi3.Operation {
	tag := resourceType
	if tag == "" {
		tag = SystemTag
	}
	op := &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     def.Title,
		Description: def.Description,
	}
	if decl.Documentation != "" {
		op.Description += "\n\n " + decl.Documentation
	}

	op.Responses = b.okResponse(b.content(b.responseType(decl), "", b.exampleRefs(decl.Examples, false, false, false, "")))

	if get {
		for _, p := range def.Parameter {
			if p.In() {
				op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: operationQueryParameter(p)})
			}
		}
	} else {
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(b.operationRequest(resourceType, def, decl))}
	}

	if b.opts.Enhance && len(def.Parameter) > 0 {
		op.Description += parameterTables(def.Parameter)
	}
	if def.Comment != "" {
		op.Description += "\n\n ## Comment \n\n" + def.Comment
	}
	if b.opts.Enhance && def.ProcessMessage() {
		op.Description += b.supportedMessages(op.RequestBody)
	}
	return op
}

// responseType is the resource type of the first response example of decl,
// or Parameters.
func (b *build) responseType(decl *conformance.Operation) string {
	for _, ref := range decl.Examples {
		if ref.Request {
			continue
		}
		if r, ok := b.loadExample(ref, false); ok && ResourceType(r) != "" {
			return ResourceType(r)
		}
	}
	return "Parameters"
}

func operationQueryParameter(p registry.OperationParameter) *openapi3.Parameter {
	q := &openapi3.Parameter{
		Name:        p.Name,
		In:          openapi3.ParameterInQuery,
		Description: p.Documentation,
		Style:       openapi3.SerializationForm,
		Required:    p.Min > 0,
		Schema:      openapi3.NewStringSchema().NewRef(),
	}
	switch ex := p.Examples(); len(ex) {
	case 0:
	case 1:
		q.Example = ex[0]
	default:
		q.Examples = openapi3.Examples{}
		for _, v := range ex {
			q.Examples[v] = &openapi3.ExampleRef{Value: openapi3.NewExample(v)}
		}
	}
	return q
}

// operationRequest is the request content of a POST operation: a message
// Bundle for $process-message and Parameters otherwise.
func (b *build) operationRequest(resourceType string, def *registry.OperationDefinition, decl *conformance.Operation) openapi3.Content {
	if def.ProcessMessage() {
		return openapi3.Content{MediaFHIRJSON: &openapi3.MediaType{
			Schema:   b.schemaRef("Bundle", messageBundleProfile),
			Examples: openapi3.Examples{},
		}}
	}
	media := &openapi3.MediaType{Schema: b.schemaRef("Parameters", "")}
	if examples := b.exampleRefs(decl.Examples, true, false, false, ""); len(examples) > 0 {
		media.Examples = examples
	} else {
		media.Example = ParametersExample(def, resourceType)
	}
	return openapi3.Content{MediaFHIRJSON: media}
}

// parameterTables documents the in and out parameters of an operation.
func parameterTables(params []registry.OperationParameter) string {
	const header = " \n\n |Name | Cardinality | Type | Profile | Documentation |\n |-------|-----------|-------------|------------|------------|"
	in := "\n\n ## Parameters (In)" + header
	out := "\n\n ## Parameters (Out)" + header
	for _, p := range params {
		doc := transform.EscapeMarkdown(p.Documentation, true)
		if len(p.Part) > 0 {
			var sb strings.Builder
			sb.WriteString("<br/><br/> <table>")
			for _, part := range p.Part {
				fmt.Fprintf(&sb, "<tr><td>%s</td><td>%d..%s</td><td>%s</td><td>%s</td></tr>",
					part.Name, part.Min, part.Max, part.Type, transform.EscapeMarkdown(part.Documentation, true))
			}
			sb.WriteString("</table>")
			doc += sb.String()
		}
		row := "\n |" + p.Name + "|" + strconv.Itoa(p.Min) + ".." + p.Max + "|" + p.Type + "|" +
			strings.Join(p.TargetProfile, ", ") + "|" + doc + "|"
		if p.In() {
			in += row
		} else {
			out += row
		}
	}
	return in + out
}

// supportedMessages documents the messages a $process-message endpoint
// accepts and adds one request example per message.
func (b *build) supportedMessages(body *openapi3.RequestBodyRef) string {
	var examples openapi3.Examples
	if body != nil && body.Value != nil {
		if media := body.Value.Content.Get(MediaFHIRJSON); media != nil {
			if media.Examples == nil {
				media.Examples = openapi3.Examples{}
			}
			examples = media.Examples
		}
	}
	var sb strings.Builder
	sb.WriteString("\n\n ## Supported Messages \n\n")
	for _, m := range b.desc.Messaging {
		if m.Documentation != "" {
			sb.WriteString(m.Documentation + " \n")
		}
		for _, sm := range m.SupportedMessages {
			name := profileName(sm.Definition)
			sb.WriteString("* " + name + " \n")
			if examples != nil {
				examples[name] = &openapi3.ExampleRef{Value: b.messageExample(sm)}
			}
		}
	}
	return sb.String()
}

// messageExample documents one supported message from its MessageDefinition.
func (b *build) messageExample(sm conformance.SupportedMessage) *openapi3.Example {
	ex := &openapi3.Example{}
	var sb strings.Builder
	sb.WriteString(" \n\n MessageDefinition.url = **" + sm.Definition + "** \n")
	if md, ok := b.reg.Definitions.MessageDefinition(sm.Definition); ok {
		ex.Summary = md.Description
		if md.Purpose != "" {
			sb.WriteString("\n ### Purpose" + md.Purpose)
		}
		if md.EventCoding != nil {
			sb.WriteString(" \n\n The first Bundle.entry **MUST** be a FHIR MessageHeader with \n MessageHeader.eventCoding = **" + md.EventCoding.Code + "** \n")
		}
		if len(md.Focus) > 0 {
			sb.WriteString("\n\n | Resource | Profile | Min | Max | \n")
			sb.WriteString("|----------|---------|-----|-----| \n")
			for _, f := range md.Focus {
				link := ""
				if f.Profile != "" {
					link = b.documentationPath(f.Profile)
					b.tag(f.Code, f.Profile, "")
				}
				fmt.Fprintf(&sb, "| [%[1]s](https://www.hl7.org/fhir/R4/%[1]s.html) | [%[2]s](%[3]s) | %[4]d | %[5]s | \n",
					f.Code, profileName(f.Profile), link, f.Min, f.Max)
			}
		}
	} else {
		b.log.Warn().Str("definition", sm.Definition).Msg("message definition not found")
	}
	sb.WriteString("\n")
	for _, ref := range sm.Examples {
		if r, ok := b.loadExample(ref, false); ok {
			ex.Value = r
		}
	}
	if ex.Value == nil {
		ex.Value = DefaultResource("Bundle")
	}
	ex.Description = sb.String()
	return ex
}
