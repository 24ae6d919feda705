package openapi

import (
	"encoding/json"
	"fmt"

	"github.com/Gobd/fhiroas/conformance"
	"github.com/Gobd/fhiroas/registry"
	"github.com/Gobd/fhiroas/transform"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ExampleBase prefixes every synthesized URL.
const ExampleBase = "http://example.org/FHIR/R4/"

const exampleInstant = "2021-04-14T11:35:00+00:00"

type (
	// Bundle is the subset of a FHIR Bundle used in examples.
	Bundle struct {
		ResourceType string        `json:"resourceType"`
		ID           string        `json:"id,omitempty"`
		Type         string        `json:"type"`
		Total        *int          `json:"total,omitempty"`
		Link         []BundleLink  `json:"link,omitempty"`
		Entry        []BundleEntry `json:"entry,omitempty"`
	}

	BundleLink struct {
		Relation string `json:"relation"`
		URL      string `json:"url"`
	}

	BundleEntry struct {
		FullURL  string `json:"fullUrl,omitempty"`
		Resource any    `json:"resource"`
	}

	// OperationOutcome is the subset of a FHIR OperationOutcome used in examples.
	OperationOutcome struct {
		ResourceType string  `json:"resourceType"`
		Meta         *Meta   `json:"meta,omitempty"`
		Issue        []Issue `json:"issue"`
	}

	Meta struct {
		LastUpdated string `json:"lastUpdated,omitempty"`
	}

	Issue struct {
		Severity    string           `json:"severity"`
		Code        string           `json:"code"`
		Details     *CodeableConcept `json:"details,omitempty"`
		Diagnostics string           `json:"diagnostics,omitempty"`
		Expression  []string         `json:"expression,omitempty"`
	}

	CodeableConcept struct {
		Coding []Coding `json:"coding"`
	}

	Coding struct {
		System string `json:"system"`
		Code   string `json:"code"`
	}

	// Parameters is a FHIR Parameters resource. Each parameter is a map so
	// the value[x] key can carry the parameter type.
	Parameters struct {
		ResourceType string           `json:"resourceType"`
		Parameter    []map[string]any `json:"parameter,omitempty"`
	}
)

// Resource is a decoded FHIR resource.
type Resource = map[string]any

// ResourceType returns the resourceType of a decoded resource.
func ResourceType(v any) string {
	switch r := v.(type) {
	case Resource:
		s, _ := r["resourceType"].(string)
		return s
	case *Bundle:
		return r.ResourceType
	case *OperationOutcome:
		return r.ResourceType
	case *Parameters:
		return r.ResourceType
	}
	return ""
}

// ExampleID is the deterministic placeholder id of synthesized resources of
// resourceType.
func ExampleID(resourceType string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(ExampleBase+resourceType)).String()
}

// DefaultResource is the minimal instance of resourceType.
func DefaultResource(resourceType string) Resource {
	return Resource{"resourceType": resourceType}
}

// SearchSet wraps resource in a one entry searchset Bundle with self and
// next links.
func SearchSet(resource any) *Bundle {
	resourceType := ResourceType(resource)
	id := ExampleID(resourceType)
	if r, ok := resource.(Resource); ok {
		if s, ok := r["id"].(string); ok && s != "" {
			id = s
		}
	}
	total := 1
	return &Bundle{
		ResourceType: "Bundle",
		Type:         "searchset",
		Total:        &total,
		Link: []BundleLink{
			{Relation: "self", URL: ExampleBase + resourceType + "?parameterExample=123&page=1"},
			{Relation: "next", URL: ExampleBase + resourceType + "?parameterExample=123&page=2"},
		},
		Entry: []BundleEntry{{FullURL: ExampleBase + resourceType + "/" + id, Resource: resource}},
	}
}

// SuccessOutcome acknowledges a successful write.
func SuccessOutcome() *OperationOutcome {
	return &OperationOutcome{
		ResourceType: "OperationOutcome",
		Meta:         &Meta{LastUpdated: exampleInstant},
		Issue:        []Issue{{Severity: "information", Code: "informational"}},
	}
}

// ForbiddenOutcome is returned when access is denied.
func ForbiddenOutcome() *OperationOutcome {
	return &OperationOutcome{
		ResourceType: "OperationOutcome",
		Meta:         &Meta{LastUpdated: exampleInstant},
		Issue: []Issue{{
			Severity: "error",
			Code:     "forbidden",
			Details:  &CodeableConcept{Coding: []Coding{{System: spineErrorSystem, Code: "ACCESS_DENIED"}}},
		}},
	}
}

// ErrorOutcome is returned for an invalid request.
func ErrorOutcome() *OperationOutcome {
	return &OperationOutcome{
		ResourceType: "OperationOutcome",
		Meta:         &Meta{LastUpdated: exampleInstant},
		Issue: []Issue{{
			Severity:    "error",
			Code:        "value",
			Details:     &CodeableConcept{Coding: []Coding{{System: spineErrorSystem, Code: "INVALID_VALUE"}}},
			Diagnostics: "(invalid_request) firstName is missing",
			Expression:  []string{"Patient.name.given"},
		}},
	}
}

const spineErrorSystem = "https://fhir.nhs.uk/CodeSystem/Spine-ErrorOrWarningCode"

// PatchExample returns a JSON Patch document for resourceType.
func PatchExample(resourceType string) []PatchOperation {
	switch resourceType {
	case "MedicationDispense":
		return []PatchOperation{
			{Op: "replace", Path: "/status", Value: "in-progress"},
			{Op: "add", Path: "/whenPrepared", Value: []string{"2022-02-08T00:00:00+00:00"}},
		}
	case "MedicationRequest":
		return []PatchOperation{{Op: "replace", Path: "/status", Value: "cancelled"}}
	}
	return []PatchOperation{
		{Op: "add", Path: "/foo", Value: []string{"bar"}},
		{Op: "add", Path: "/foo2", Value: []string{"barbar"}},
	}
}

var titleCase = cases.Title(language.Und, cases.NoLower)

// ParametersExample builds a Parameters request from the input parameters
// of def. Primitive parameters get a placeholder literal and structured ones
// a minimal instance. Parameters of other types carry only their name.
func ParametersExample(def *registry.OperationDefinition, resourceType string) *Parameters {
	out := &Parameters{ResourceType: "Parameters"}
	for _, p := range def.Parameter {
		if !p.In() {
			continue
		}
		param := map[string]any{"name": p.Name}
		switch p.Type {
		case "uri", "url", "code", "string":
			param["value"+titleCase.String(p.Type)] = "example"
		case "integer":
			param["valueInteger"] = 0
		case "boolean":
			param["valueBoolean"] = false
		case "CodeableConcept":
			param["valueCodeableConcept"] = CodeableConcept{Coding: []Coding{{System: "http://example.com", Code: "1234"}}}
		case "Coding":
			param["valueCoding"] = Coding{System: "http://example.com", Code: "1234"}
		case "Reference":
			param["valueReference"] = map[string]string{"reference": "example"}
		case "Resource":
			if resourceType != "" {
				param["resource"] = Resource{"resourceType": resourceType, "id": "1"}
			}
		}
		out.Parameter = append(out.Parameter, param)
	}
	return out
}

// loadExample resolves an example reference. create drops the id, as a
// create request carries none.
func (b *build) loadExample(ref conformance.ExampleRef, create bool) (Resource, bool) {
	raw, ok := b.reg.Examples.Example(ref.Reference)
	if !ok {
		b.log.Warn().Str("reference", ref.Reference).Msg("example not found")
		return nil, false
	}
	var r Resource
	if err := json.Unmarshal(raw, &r); err != nil {
		b.log.Warn().Err(err).Str("reference", ref.Reference).Msg("example is not a JSON object")
		return nil, false
	}
	if create {
		delete(r, "id")
	}
	return r, true
}

// exampleRefs turns the request or response references of refs into named
// examples. Unresolved references fall back to resourceType's default
// instance. search wraps resource examples into a searchset Bundle.
func (b *build) exampleRefs(refs []conformance.ExampleRef, request, create, search bool, resourceType string) openapi3.Examples {
	out := openapi3.Examples{}
	for _, ref := range refs {
		if ref.Request != request {
			continue
		}
		var value any
		r, ok := b.loadExample(ref, create)
		switch {
		case !ok && resourceType != "":
			value = DefaultResource(resourceType)
		case !ok:
			continue
		default:
			value = r
		}
		if search && ResourceType(value) != "Bundle" {
			value = SearchSet(value)
		}
		ex := &openapi3.Example{
			Summary:     ref.Summary,
			Description: transform.EscapeMarkdown(transform.UnescapeHTML(ref.Description), true),
			Value:       value,
		}
		out[exampleKey(out, ref.Summary)] = &openapi3.ExampleRef{Value: ex}
	}
	return out
}

// exampleKey returns a key not yet used in examples.
func exampleKey(examples openapi3.Examples, summary string) string {
	key := summary
	if key == "" {
		key = "example"
	}
	if _, ok := examples[key]; !ok {
		return key
	}
	for i := 2; ; i++ {
		k := fmt.Sprintf("%s-%d", key, i)
		if _, ok := examples[k]; !ok {
			return k
		}
	}
}

// defaultExample is the example shown when none is declared.
func (b *build) defaultExample(resourceType string) any {
	switch resourceType {
	case "CapabilityStatement":
		var cs Resource
		if err := json.Unmarshal(b.desc.Raw, &cs); err == nil {
			return cs
		}
	case "OperationOutcome":
		return SuccessOutcome()
	case "Bundle":
		total := 0
		return &Bundle{ResourceType: "Bundle", Type: "searchset", Total: &total}
	}
	return DefaultResource(resourceType)
}
