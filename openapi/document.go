package openapi

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// SystemTag groups whole-system interactions and operations.
const SystemTag = "System Level Operations"

// firstWins is an ordered map where the first value stored under a key is
// kept and later ones are dropped.
type firstWins[V any] struct {
	keys   []string
	values map[string]V
}

// Add stores v under key unless key is present, and reports whether it did.
func (f *firstWins[V]) Add(key string, v V) bool {
	if _, ok := f.values[key]; ok {
		return false
	}
	if f.values == nil {
		f.values = make(map[string]V)
	}
	f.keys = append(f.keys, key)
	f.values[key] = v
	return true
}

func (f *firstWins[V]) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Each calls fn in insertion order.
func (f *firstWins[V]) Each(fn func(key string, v V)) {
	for _, k := range f.keys {
		fn(k, f.values[k])
	}
}

func (f *firstWins[V]) Len() int {
	return len(f.keys)
}

func (b *build) info() {
	d := b.desc
	for _, c := range d.Contacts {
		if b.doc.Info.Contact == nil {
			b.doc.Info.Contact = &openapi3.Contact{}
		}
		contact := b.doc.Info.Contact
		if c.Name != "" {
			contact.Name = c.Name
		}
		if c.Email != "" {
			contact.Email = c.Email
		}
		if c.URL != "" {
			contact.URL = c.URL
		}
	}
	if d.URL != "" {
		b.doc.ExternalDocs = &openapi3.ExternalDocs{Description: d.Title, URL: b.documentationPath(d.URL)}
	}
	server := d.Implementation.URL
	if server == "" {
		server = "/"
	}
	b.doc.Servers = openapi3.Servers{{URL: server, Description: d.Software.Name}}
}

// tag adds the resource tag and schema for resourceType. The first
// registration of a type wins.
func (b *build) tag(resourceType, profile, documentation string) {
	if b.tags.Has(resourceType) {
		return
	}
	b.schema(resourceType, profile)
	b.tags.Add(resourceType, &openapi3.Tag{Name: resourceType, Description: documentation})
}

// schemaRef registers the component schema for resourceType and returns a
// reference to it.
func (b *build) schemaRef(resourceType, profile string) *openapi3.SchemaRef {
	b.schema(resourceType, profile)
	return openapi3.NewSchemaRef("#/components/schemas/"+resourceType, nil)
}

// schema registers a component schema describing resourceType, linking to
// its HL7 definition and the profile documentation. Only the first
// registration of a type has any effect.
func (b *build) schema(resourceType, profile string) {
	if resourceType == "" || b.schemas.Has(resourceType) {
		return
	}
	s := openapi3.NewObjectSchema()
	s.Description = fmt.Sprintf("HL7 FHIR Schema [%[1]s](https://hl7.org/fhir/R4/fhir.schema.json#/definitions/%[1]s)."+
		" HL7 FHIR Documentation [%[1]s](https://www.hl7.org/fhir/R4/%[1]s.html)", resourceType)

	defs := b.reg.Definitions
	switch {
	case profile != "":
		docs := &openapi3.ExternalDocs{Description: resourceType}
		sd, found := defs.StructureDefinition(profile)
		if found {
			docs.Description = deref(sd.Name)
			docs.URL = b.documentationPath(profile)
		}
		if !found || docs.URL == profile {
			fallback := defs.DefaultProfile(resourceType)
			if def, ok := defs.StructureDefinition(fallback); ok && fallback != "" {
				s.Description += fmt.Sprintf(" \n\n NHS England/HL7 UK Conformance Documentation (Schema constraints) [%s](%s)",
					deref(def.Name), b.documentationPath(fallback))
			}
			docs.Description = profile
			docs.URL = b.documentationPath(profile)
		}
		s.ExternalDocs = docs
	default:
		fallback := defs.DefaultProfile(resourceType)
		if sd, ok := defs.StructureDefinition(fallback); ok && fallback != "" {
			s.ExternalDocs = &openapi3.ExternalDocs{Description: deref(sd.Name), URL: b.documentationPath(fallback)}
		}
	}
	b.schemas.Add(resourceType, openapi3.NewSchemaRef("", s))
}

// documentationPath returns a browsable link for a canonical URL. UK
// profiles resolve through simplifier against the installed england or
// ukcore package; other URLs are returned unchanged.
func (b *build) documentationPath(canonical string) string {
	if !strings.Contains(canonical, "https://fhir.nhs.uk/") && !strings.Contains(canonical, "https://fhir.hl7.org.uk") {
		return canonical
	}
	out := canonical
	for _, p := range b.opts.Packages {
		if strings.Contains(p.Version, "0.0.0") {
			continue
		}
		if strings.Contains(p.Name, "england") || strings.Contains(p.Name, "ukcore") {
			out = "https://simplifier.net/resolve?fhirVersion=R4&scope=" + p.Name + "@" + p.Version + "&canonical=" + canonical
		}
	}
	return out
}

// profileName is the last path segment of a canonical URL.
func profileName(canonical string) string {
	if u, err := url.Parse(canonical); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(canonical)
}

// finish copies the registries into the document.
func (b *build) finish() {
	b.schemas.Each(func(name string, s *openapi3.SchemaRef) {
		b.doc.Components.Schemas[name] = s
	})
	b.doc.Tags = make(openapi3.Tags, 0, b.tags.Len())
	b.tags.Each(func(_ string, t *openapi3.Tag) {
		b.doc.Tags = append(b.doc.Tags, t)
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
