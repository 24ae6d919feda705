package registry

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/Gobd/fhiroas"
	"github.com/Gobd/fhiroas/conformance"
	"github.com/Gobd/fhiroas/is"
	"github.com/Gobd/fhiroas/transform"
	r4 "github.com/gofhir/fhir/r4"
)

// ParameterExampleURL carries example values on an OperationDefinition parameter.
const ParameterExampleURL = "http://hapifhir.io/fhir/StructureDefinition/op-parameter-example-value"

type (
	// SearchParameters resolves search parameter definitions.
	SearchParameters interface {
		// SearchParameter looks a definition up by canonical URL.
		SearchParameter(url string) (*SearchParameter, bool)
		// SearchParameterFor looks a definition up by resource type and code.
		SearchParameterFor(resourceType, code string) (*SearchParameter, bool)
	}

	// Definitions resolves operation, message and structure definitions.
	Definitions interface {
		OperationDefinition(url string) (*OperationDefinition, bool)
		MessageDefinition(url string) (*MessageDefinition, bool)
		StructureDefinition(url string) (*r4.StructureDefinition, bool)
		// DefaultProfile returns the canonical URL of the profile used for
		// resourceType when the conformance description names none.
		DefaultProfile(resourceType string) string
	}

	// ValueSets expands coded value sets.
	ValueSets interface {
		Expand(url string) (*ValueSet, bool)
	}

	// Examples returns example resources by "Type/id" reference.
	Examples interface {
		Example(reference string) (json.RawMessage, bool)
	}
)

// SearchParameter is a FHIR SearchParameter resource.
type SearchParameter struct {
	URL         string                      `json:"url"`
	Name        string                      `json:"name"`
	Code        string                      `json:"code"`
	Base        []string                    `json:"base"`
	Type        conformance.SearchParamType `json:"type"`
	Expression  string                      `json:"expression"`
	Description string                      `json:"description"`
	Target      []string                    `json:"target"`
}

func (p *SearchParameter) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&p.URL, is.URL),
		fhiroas.Field(&p.Code, fhiroas.Required, is.Code),
		fhiroas.Field(&p.Base, fhiroas.Required, fhiroas.Each(is.ResourceType)),
		fhiroas.Field(&p.Type, fhiroas.Required),
		fhiroas.Field(&p.Target, fhiroas.Each(is.ResourceType)),
	}
}

// Clone returns a deep copy. Callers that rewrite a resolved parameter work
// on a clone so the registry entry is never changed.
func (p *SearchParameter) Clone() *SearchParameter {
	c := *p
	c.Base = slices.Clone(p.Base)
	c.Target = slices.Clone(p.Target)
	return &c
}

// AppliesTo reports whether resourceType is one of the parameter's bases.
func (p *SearchParameter) AppliesTo(resourceType string) bool {
	return slices.Contains(p.Base, resourceType)
}

// OperationDefinition is a FHIR OperationDefinition resource.
type OperationDefinition struct {
	URL          string               `json:"url"`
	Name         string               `json:"name"`
	Title        string               `json:"title"`
	Code         string               `json:"code"`
	Description  string               `json:"description"`
	Comment      string               `json:"comment"`
	AffectsState bool                 `json:"affectsState"`
	Resource     []string             `json:"resource"`
	System       bool                 `json:"system"`
	Type         bool                 `json:"type"`
	Instance     bool                 `json:"instance"`
	Parameter    []OperationParameter `json:"parameter"`
}

func (d *OperationDefinition) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&d.URL, is.URL),
		fhiroas.Field(&d.Code, fhiroas.Required, is.Code),
		fhiroas.Field(&d.Resource, fhiroas.Each(is.ResourceType)),
		fhiroas.Field(&d.Parameter),
	}
}

// Normalize decodes HTML entities in narrative markdown.
func (d *OperationDefinition) Normalize() {
	d.Description = transform.UnescapeHTML(d.Description)
	d.Comment = transform.UnescapeHTML(d.Comment)
}

// ProcessMessage reports whether d is a $process-message definition, whose
// request body is a message Bundle rather than Parameters.
func (d *OperationDefinition) ProcessMessage() bool {
	switch d.URL {
	case "http://hl7.org/fhir/OperationDefinition/MessageHeader-process-message",
		"https://fhir.nhs.uk/OperationDefinition/MessageHeader-process-message":
		return true
	}
	return false
}

// OperationParameter is one OperationDefinition.parameter entry.
type OperationParameter struct {
	Name          string               `json:"name"`
	Use           string               `json:"use"`
	Min           int                  `json:"min"`
	Max           string               `json:"max"`
	Type          string               `json:"type"`
	TargetProfile []string             `json:"targetProfile"`
	Documentation string               `json:"documentation"`
	Part          []OperationParameter `json:"part"`
	Extension     []exampleValue       `json:"extension"`
}

type exampleValue struct {
	URL          string `json:"url"`
	ValueString  string `json:"valueString"`
	ValueCode    string `json:"valueCode"`
	ValueURI     string `json:"valueUri"`
	ValueDate    string `json:"valueDate"`
	ValueInteger *int   `json:"valueInteger"`
}

func (p *OperationParameter) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&p.Name, fhiroas.Required, is.Code),
		fhiroas.Field(&p.Use, fhiroas.Required, fhiroas.In("in", "out")),
		fhiroas.Field(&p.Min, fhiroas.Min(0)),
		fhiroas.Field(&p.Part),
	}
}

// In reports whether the parameter is an input.
func (p *OperationParameter) In() bool {
	return p.Use != "out"
}

// Examples returns the values of the parameter example extensions.
func (p *OperationParameter) Examples() []string {
	var out []string
	for _, x := range p.Extension {
		if x.URL != ParameterExampleURL {
			continue
		}
		switch {
		case x.ValueString != "":
			out = append(out, x.ValueString)
		case x.ValueCode != "":
			out = append(out, x.ValueCode)
		case x.ValueURI != "":
			out = append(out, x.ValueURI)
		case x.ValueDate != "":
			out = append(out, x.ValueDate)
		case x.ValueInteger != nil:
			out = append(out, strconv.Itoa(*x.ValueInteger))
		}
	}
	return out
}

// MessageDefinition is a FHIR MessageDefinition resource.
type MessageDefinition struct {
	URL         string         `json:"url"`
	Name        string         `json:"name"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Purpose     string         `json:"purpose"`
	EventCoding *Coding        `json:"eventCoding"`
	Focus       []MessageFocus `json:"focus"`
}

func (d *MessageDefinition) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&d.URL, fhiroas.Required, is.URL),
		fhiroas.Field(&d.Focus),
	}
}

func (d *MessageDefinition) Normalize() {
	d.Description = transform.UnescapeHTML(d.Description)
	d.Purpose = transform.UnescapeHTML(d.Purpose)
}

type Coding struct {
	System string `json:"system"`
	Code   string `json:"code"`
}

// MessageFocus is a resource carried by a message.
type MessageFocus struct {
	Code    string `json:"code"`
	Profile string `json:"profile"`
	Min     int    `json:"min"`
	Max     string `json:"max"`
}

func (f *MessageFocus) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&f.Code, fhiroas.Required, is.ResourceType),
	}
}

// ValueSet is an expanded value set.
type ValueSet struct {
	URL      string
	Name     string
	Concepts []Concept
}

type Concept struct {
	System  string
	Code    string
	Display string
}
