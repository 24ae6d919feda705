package conformance

import (
	"encoding/json"
	"strings"

	"github.com/Gobd/fhiroas"
	"github.com/Gobd/fhiroas/is"
	"github.com/Gobd/fhiroas/transform"
)

type (
	// Description is a decoded CapabilityStatement. It is read-only once
	// returned by Parse.
	Description struct {
		Title          string                  `json:"title"`
		Version        string                  `json:"version"`
		Description    string                  `json:"description"`
		URL            string                  `json:"url"`
		Software       Software                `json:"software"`
		Implementation Implementation          `json:"implementation"`
		Contacts       []Contact               `json:"contact"`
		Formats        []string                `json:"format"`
		Security       bool                    `json:"security"`
		Interactions   []SystemInteractionCode `json:"interaction"`
		Operations     []Operation             `json:"operation"`
		Resources      []Resource              `json:"resource"`
		Messaging      []Messaging             `json:"messaging"`
		// Raw is the source document, served as the /metadata example.
		Raw json.RawMessage `json:"-"`
	}

	Software struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}

	Implementation struct {
		Description string `json:"description"`
		URL         string `json:"url"`
	}

	// Contact is a publisher contact flattened from its telecoms.
	Contact struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		URL   string `json:"url"`
	}

	// Resource is one rest.resource entry.
	Resource struct {
		Type              string        `json:"type"`
		Profile           string        `json:"profile"`
		Documentation     string        `json:"documentation"`
		Interactions      []Interaction `json:"interaction"`
		SearchParams      []SearchParam `json:"searchParam"`
		Operations        []Operation   `json:"operation"`
		SearchIncludes    []string      `json:"searchInclude"`
		SearchRevIncludes []string      `json:"searchRevInclude"`
		Combinations      []Combination `json:"combination"`
	}

	Interaction struct {
		Code          InteractionCode `json:"code"`
		Documentation string          `json:"documentation"`
		Expectation   Expectation     `json:"expectation"`
		Examples      []ExampleRef    `json:"examples"`
	}

	// SearchParam is a declared search parameter. Name may be a chain
	// (subject.name) and may carry a modifier (subject:Patient).
	SearchParam struct {
		Name          string            `json:"name"`
		Definition    string            `json:"definition"`
		Type          SearchParamType   `json:"type"`
		Documentation string            `json:"documentation"`
		Expectation   Expectation       `json:"expectation"`
		Constraints   *QueryConstraints `json:"constraints"`
	}

	// QueryConstraints are the query parameter constraints carried by the
	// NHS Digital QueryParameters extension.
	QueryConstraints struct {
		Required          bool   `json:"required"`
		Minimum           *int   `json:"minimum"`
		Maximum           *int   `json:"maximum"`
		Example           string `json:"example"`
		AllowedValues     string `json:"allowedValues"`
		ShowCodeAndSystem *bool  `json:"showCodeAndSystem"`
	}

	// Operation is a declared custom operation.
	Operation struct {
		Name          string       `json:"name"`
		Definition    string       `json:"definition"`
		Documentation string       `json:"documentation"`
		Examples      []ExampleRef `json:"examples"`
	}

	// ExampleRef points at an example resource held by an example source.
	ExampleRef struct {
		Request     bool   `json:"request"`
		Reference   string `json:"reference"`
		Summary     string `json:"summary"`
		Description string `json:"description"`
	}

	// Combination is a search parameter combination the server supports.
	Combination struct {
		Expectation Expectation `json:"expectation"`
		Required    []string    `json:"required"`
		Optional    []string    `json:"optional"`
	}

	Messaging struct {
		Documentation     string             `json:"documentation"`
		SupportedMessages []SupportedMessage `json:"supportedMessage"`
	}

	SupportedMessage struct {
		Mode       string       `json:"mode"`
		Definition string       `json:"definition"`
		Examples   []ExampleRef `json:"examples"`
	}
)

func (d *Description) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&d.URL, is.URL),
		fhiroas.Field(&d.Implementation),
		fhiroas.Field(&d.Contacts),
		fhiroas.Field(&d.Formats, fhiroas.Each(is.MimeType)),
		fhiroas.Field(&d.Interactions),
		fhiroas.Field(&d.Operations, fhiroas.Unique(func(i int) any { return d.Operations[i].Name }, "operation name")),
		fhiroas.Field(&d.Resources, fhiroas.Unique(func(i int) any { return d.Resources[i].Type }, "resource type")),
		fhiroas.Field(&d.Messaging),
	}
}

// Normalize decodes HTML entities left in narrative text and trims it.
func (d *Description) Normalize() {
	transform.StructMulti(d, transform.StructUnescapeHTML, transform.StructTrimSpace)
}

// XML reports whether an XML format is declared.
func (d *Description) XML() bool {
	for _, f := range d.Formats {
		if strings.Contains(f, "xml") {
			return true
		}
	}
	return false
}

// HasInteraction reports whether code is declared at system level.
func (d *Description) HasInteraction(code SystemInteractionCode) bool {
	for _, c := range d.Interactions {
		if c == code {
			return true
		}
	}
	return false
}

func (i *Implementation) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&i.URL, is.URL),
	}
}

func (c *Contact) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&c.Email, is.Email),
		fhiroas.Field(&c.URL, is.URL),
	}
}

func (r *Resource) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&r.Type, fhiroas.Required, is.ResourceType),
		fhiroas.Field(&r.Profile, is.URL),
		fhiroas.Field(&r.Interactions, fhiroas.Unique(func(i int) any { return r.Interactions[i].Code }, "interaction code")),
		fhiroas.Field(&r.SearchParams, fhiroas.Unique(func(i int) any { return r.SearchParams[i].Name }, "search parameter name")),
		fhiroas.Field(&r.Operations),
		fhiroas.Field(&r.Combinations),
	}
}

// Has reports whether the resource declares code.
func (r *Resource) Has(code InteractionCode) bool {
	return r.Interaction(code) != nil
}

// Interaction returns the declared interaction for code, or nil.
func (r *Resource) Interaction(code InteractionCode) *Interaction {
	for i := range r.Interactions {
		if r.Interactions[i].Code == code {
			return &r.Interactions[i]
		}
	}
	return nil
}

func (i *Interaction) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&i.Code, fhiroas.Required),
		fhiroas.Field(&i.Expectation),
		fhiroas.Field(&i.Examples),
	}
}

func (p *SearchParam) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&p.Name, fhiroas.Required, is.Code),
		fhiroas.Field(&p.Definition, is.URL),
		fhiroas.Field(&p.Type),
		fhiroas.Field(&p.Expectation),
		fhiroas.Field(&p.Constraints),
	}
}

func (c *QueryConstraints) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&c.Maximum, fhiroas.By(func(any) error {
			if c.Minimum != nil && c.Maximum != nil && *c.Maximum < *c.Minimum {
				return errMaxBelowMin
			}
			return nil
		}, "must not be below minimum")),
	}
}

// CodeAndSystem reports whether allowed values are rendered as system|code.
func (c *QueryConstraints) CodeAndSystem() bool {
	return c.ShowCodeAndSystem == nil || *c.ShowCodeAndSystem
}

// ParamRules converts the constraints into rules describing a query
// parameter schema. Allowed values need a value set expander and are not
// included.
func (c *QueryConstraints) ParamRules() []fhiroas.Rule {
	var rules []fhiroas.Rule
	if c.Required {
		rules = append(rules, fhiroas.Required)
	}
	if c.Minimum != nil {
		rules = append(rules, fhiroas.Min(*c.Minimum))
	}
	if c.Maximum != nil {
		rules = append(rules, fhiroas.Max(*c.Maximum))
	}
	if c.Example != "" {
		rules = append(rules, fhiroas.Example(c.Example))
	}
	return rules
}

func (o *Operation) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&o.Name, fhiroas.Required, is.Code),
		fhiroas.Field(&o.Definition, fhiroas.Required),
		fhiroas.Field(&o.Examples),
	}
}

func (e *ExampleRef) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&e.Reference, fhiroas.Required),
	}
}

func (c *Combination) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&c.Expectation),
		fhiroas.Field(&c.Required, fhiroas.Required),
	}
}

func (m *Messaging) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&m.SupportedMessages),
	}
}

func (m *SupportedMessage) Rules() []*fhiroas.FieldRules {
	return []*fhiroas.FieldRules{
		fhiroas.Field(&m.Mode, fhiroas.In("sender", "receiver")),
		fhiroas.Field(&m.Definition, fhiroas.Required),
		fhiroas.Field(&m.Examples),
	}
}
