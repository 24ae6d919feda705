package conformance

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Gobd/fhiroas"
)

var (
	// ErrNotCapabilityStatement is returned when the input is some other resource.
	ErrNotCapabilityStatement = errors.New("not a CapabilityStatement")

	errMaxBelowMin = errors.New("must not be below minimum")
)

type (
	capabilityStatement struct {
		ResourceType   string           `json:"resourceType"`
		URL            string           `json:"url"`
		Version        string           `json:"version"`
		Title          string           `json:"title"`
		Description    string           `json:"description"`
		Contact        []contactDetail  `json:"contact"`
		Software       *Software        `json:"software"`
		Implementation *Implementation  `json:"implementation"`
		Format         []string         `json:"format"`
		Rest           []rest           `json:"rest"`
		Messaging      []messagingEntry `json:"messaging"`
	}

	contactDetail struct {
		Name    string `json:"name"`
		Telecom []struct {
			System string `json:"system"`
			Value  string `json:"value"`
		} `json:"telecom"`
	}

	rest struct {
		Mode        string          `json:"mode"`
		Security    json.RawMessage `json:"security"`
		Resource    []restResource  `json:"resource"`
		Interaction []struct {
			Code SystemInteractionCode `json:"code"`
		} `json:"interaction"`
		Operation []operation `json:"operation"`
	}

	restResource struct {
		Type             string        `json:"type"`
		Profile          string        `json:"profile"`
		Documentation    string        `json:"documentation"`
		Extension        extensions    `json:"extension"`
		Interaction      []interaction `json:"interaction"`
		SearchParam      []searchParam `json:"searchParam"`
		Operation        []operation   `json:"operation"`
		SearchInclude    []string      `json:"searchInclude"`
		SearchRevInclude []string      `json:"searchRevInclude"`
	}

	interaction struct {
		Code          InteractionCode `json:"code"`
		Documentation string          `json:"documentation"`
		Extension     extensions      `json:"extension"`
	}

	searchParam struct {
		Name          string          `json:"name"`
		Definition    string          `json:"definition"`
		Type          SearchParamType `json:"type"`
		Documentation string          `json:"documentation"`
		Extension     extensions      `json:"extension"`
	}

	operation struct {
		Name          string     `json:"name"`
		Definition    string     `json:"definition"`
		Documentation string     `json:"documentation"`
		Extension     extensions `json:"extension"`
	}

	messagingEntry struct {
		Documentation    string `json:"documentation"`
		SupportedMessage []struct {
			Mode       string     `json:"mode"`
			Definition string     `json:"definition"`
			Extension  extensions `json:"extension"`
		} `json:"supportedMessage"`
	}
)

// LoadFile reads and parses a CapabilityStatement JSON file.
func LoadFile(path string) (*Description, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Decode reads a CapabilityStatement from r. See [Parse].
func Decode(r io.Reader) (*Description, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes FHIR JSON into a Description, normalizes narrative text and
// validates the result. Validation failures are returned as
// [fhiroas.ValidationErrors].
func Parse(b []byte) (*Description, error) {
	var cs capabilityStatement
	if err := json.Unmarshal(b, &cs); err != nil {
		return nil, fmt.Errorf("decode capability statement: %w", err)
	}
	if cs.ResourceType != "CapabilityStatement" {
		return nil, fmt.Errorf("%w: resourceType %q", ErrNotCapabilityStatement, cs.ResourceType)
	}

	d := cs.description()
	d.Raw = json.RawMessage(bytes.Clone(b))

	fhiroas.Normalize(d)
	if err := fhiroas.Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (cs *capabilityStatement) description() *Description {
	d := &Description{
		Title:       cs.Title,
		Version:     cs.Version,
		Description: cs.Description,
		URL:         cs.URL,
		Formats:     cs.Format,
	}
	if cs.Software != nil {
		d.Software = *cs.Software
		if cs.Software.Version != "" {
			d.Version = cs.Software.Version
		}
	}
	if cs.Implementation != nil {
		d.Implementation = *cs.Implementation
	}
	for _, c := range cs.Contact {
		contact := Contact{Name: c.Name}
		for _, t := range c.Telecom {
			switch t.System {
			case "email":
				contact.Email = t.Value
			case "url":
				contact.URL = t.Value
			}
		}
		d.Contacts = append(d.Contacts, contact)
	}

	if r := cs.serverRest(); r != nil {
		d.Security = len(r.Security) > 0 && string(r.Security) != "null"
		for _, i := range r.Interaction {
			d.Interactions = append(d.Interactions, i.Code)
		}
		d.Operations = operations(r.Operation)
		for _, res := range r.Resource {
			d.Resources = append(d.Resources, res.resource())
		}
	}

	for _, m := range cs.Messaging {
		msg := Messaging{Documentation: m.Documentation}
		for _, sm := range m.SupportedMessage {
			msg.SupportedMessages = append(msg.SupportedMessages, SupportedMessage{
				Mode:       sm.Mode,
				Definition: sm.Definition,
				Examples:   sm.Extension.examples(),
			})
		}
		d.Messaging = append(d.Messaging, msg)
	}
	return d
}

// serverRest returns the first rest entry in server mode, else the first entry.
func (cs *capabilityStatement) serverRest() *rest {
	for i := range cs.Rest {
		if cs.Rest[i].Mode == "server" {
			return &cs.Rest[i]
		}
	}
	if len(cs.Rest) > 0 {
		return &cs.Rest[0]
	}
	return nil
}

func (r *restResource) resource() Resource {
	res := Resource{
		Type:              r.Type,
		Profile:           r.Profile,
		Documentation:     r.Documentation,
		Operations:        operations(r.Operation),
		SearchIncludes:    r.SearchInclude,
		SearchRevIncludes: r.SearchRevInclude,
		Combinations:      r.Extension.combinations(),
	}
	for _, i := range r.Interaction {
		res.Interactions = append(res.Interactions, Interaction{
			Code:          i.Code,
			Documentation: i.Documentation,
			Expectation:   i.Extension.expectation(),
			Examples:      i.Extension.examples(),
		})
	}
	for _, p := range r.SearchParam {
		res.SearchParams = append(res.SearchParams, SearchParam{
			Name:          p.Name,
			Definition:    p.Definition,
			Type:          p.Type,
			Documentation: p.Documentation,
			Expectation:   p.Extension.expectation(),
			Constraints:   p.Extension.queryConstraints(),
		})
	}
	return res
}

func operations(ops []operation) []Operation {
	var out []Operation
	for _, o := range ops {
		out = append(out, Operation{
			Name:          o.Name,
			Definition:    o.Definition,
			Documentation: o.Documentation,
			Examples:      o.Extension.examples(),
		})
	}
	return out
}
