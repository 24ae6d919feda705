package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Gobd/fhiroas"
	r4 "github.com/gofhir/fhir/r4"
)

// ErrNoResourceType is returned for JSON that is not a FHIR resource.
var ErrNoResourceType = errors.New("missing resourceType")

const baseProfilePrefix = "http://hl7.org/fhir/StructureDefinition/"

// LoadStats counts what a load added to the store.
type LoadStats struct {
	SearchParameters     int
	OperationDefinitions int
	MessageDefinitions   int
	StructureDefinitions int
	ValueSets            int
	Examples             int
}

func (s *LoadStats) add(o LoadStats) {
	s.SearchParameters += o.SearchParameters
	s.OperationDefinitions += o.OperationDefinitions
	s.MessageDefinitions += o.MessageDefinitions
	s.StructureDefinitions += o.StructureDefinitions
	s.ValueSets += o.ValueSets
	s.Examples += o.Examples
}

// Store is an in-memory registry implementing [SearchParameters],
// [Definitions], [ValueSets] and [Examples]. It is safe for concurrent use.
// Later loads of the same canonical URL replace earlier ones.
type Store struct {
	mu sync.RWMutex

	searchParams map[string]*SearchParameter
	searchByCode map[string]*SearchParameter // "Type.code"
	operations   map[string]*OperationDefinition
	messages     map[string]*MessageDefinition
	structures   map[string]*r4.StructureDefinition
	profiles     map[string]string // resource type -> first constraining profile
	valueSets    map[string]*ValueSet
	examples     map[string]json.RawMessage
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		searchParams: map[string]*SearchParameter{},
		searchByCode: map[string]*SearchParameter{},
		operations:   map[string]*OperationDefinition{},
		messages:     map[string]*MessageDefinition{},
		structures:   map[string]*r4.StructureDefinition{},
		profiles:     map[string]string{},
		valueSets:    map[string]*ValueSet{},
		examples:     map[string]json.RawMessage{},
	}
}

// LoadDir loads every *.json file below dir. package.json and .index.json
// package manifests are skipped.
func (s *Store) LoadDir(dir string) (LoadStats, error) {
	var stats LoadStats
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		if d.Name() == "package.json" || d.Name() == ".index.json" {
			return nil
		}
		st, err := s.LoadFile(path)
		if err != nil {
			return err
		}
		stats.add(st)
		return nil
	})
	return stats, err
}

// LoadFile loads one FHIR JSON resource or Bundle.
func (s *Store) LoadFile(path string) (LoadStats, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return LoadStats{}, err
	}
	st, err := s.Load(b)
	if err != nil {
		return st, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// Load adds one FHIR JSON resource. Bundle entries are loaded one by one.
// Definitional resources are validated; any other resource with an id is
// kept as an example under "Type/id".
func (s *Store) Load(b []byte) (LoadStats, error) {
	var stats LoadStats
	var probe struct {
		ResourceType string          `json:"resourceType"`
		ID           string          `json:"id"`
		Type         json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return stats, err
	}

	switch probe.ResourceType {
	case "":
		return stats, ErrNoResourceType

	case "Bundle":
		// Search, transaction and message Bundles are examples in their
		// own right; collections only carry definitions.
		if string(probe.Type) != `"collection"` && probe.ID != "" {
			s.addExample(probe.ResourceType, probe.ID, b)
			stats.Examples++
		}
		var bundle struct {
			Entry []struct {
				Resource json.RawMessage `json:"resource"`
			} `json:"entry"`
		}
		if err := json.Unmarshal(b, &bundle); err != nil {
			return stats, err
		}
		for i, e := range bundle.Entry {
			if len(e.Resource) == 0 {
				continue
			}
			st, err := s.Load(e.Resource)
			if err != nil {
				return stats, fmt.Errorf("entry %d: %w", i, err)
			}
			stats.add(st)
		}
		return stats, nil

	case "SearchParameter":
		var sp SearchParameter
		if err := fhiroas.UnmarshalAndValidate(b, &sp); err != nil {
			return stats, fmt.Errorf("SearchParameter %s: %w", probe.ID, err)
		}
		s.addSearchParameter(&sp)
		stats.SearchParameters++

	case "OperationDefinition":
		var od OperationDefinition
		if err := fhiroas.UnmarshalAndValidate(b, &od); err != nil {
			return stats, fmt.Errorf("OperationDefinition %s: %w", probe.ID, err)
		}
		s.mu.Lock()
		s.operations[od.URL] = &od
		s.mu.Unlock()
		stats.OperationDefinitions++

	case "MessageDefinition":
		var md MessageDefinition
		if err := fhiroas.UnmarshalAndValidate(b, &md); err != nil {
			return stats, fmt.Errorf("MessageDefinition %s: %w", probe.ID, err)
		}
		s.mu.Lock()
		s.messages[md.URL] = &md
		s.mu.Unlock()
		stats.MessageDefinitions++

	case "StructureDefinition":
		var sd r4.StructureDefinition
		if err := json.Unmarshal(b, &sd); err != nil {
			return stats, err
		}
		s.addStructureDefinition(&sd)
		stats.StructureDefinitions++

	case "ValueSet":
		var vs r4.ValueSet
		if err := json.Unmarshal(b, &vs); err != nil {
			return stats, err
		}
		if vs.Url == nil {
			return stats, fmt.Errorf("ValueSet %s: missing url", probe.ID)
		}
		s.mu.Lock()
		s.valueSets[*vs.Url] = expand(&vs)
		s.mu.Unlock()
		stats.ValueSets++

	default:
		if probe.ID != "" {
			s.addExample(probe.ResourceType, probe.ID, b)
			stats.Examples++
		}
	}
	return stats, nil
}

func (s *Store) addSearchParameter(sp *SearchParameter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sp.URL != "" {
		s.searchParams[sp.URL] = sp
	}
	for _, base := range sp.Base {
		s.searchByCode[base+"."+sp.Code] = sp
	}
}

func (s *Store) addStructureDefinition(sd *r4.StructureDefinition) {
	if sd.Url == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.structures[*sd.Url] = sd
	if sd.Type == nil || *sd.Url == baseProfilePrefix+*sd.Type {
		return
	}
	if _, ok := s.profiles[*sd.Type]; !ok {
		s.profiles[*sd.Type] = *sd.Url
	}
}

func (s *Store) addExample(resourceType, id string, b []byte) {
	s.mu.Lock()
	s.examples[resourceType+"/"+id] = json.RawMessage(bytes.Clone(b))
	s.mu.Unlock()
}

// expand flattens a ValueSet into concepts, preferring its expansion over
// the enumerated compose concepts.
func expand(vs *r4.ValueSet) *ValueSet {
	out := &ValueSet{URL: *vs.Url}
	if vs.Name != nil {
		out.Name = *vs.Name
	}
	if vs.Expansion != nil && len(vs.Expansion.Contains) > 0 {
		out.Concepts = appendContains(out.Concepts, vs.Expansion.Contains)
		return out
	}
	if vs.Compose == nil {
		return out
	}
	for _, inc := range vs.Compose.Include {
		system := deref(inc.System)
		for _, c := range inc.Concept {
			if c.Code == nil {
				continue
			}
			out.Concepts = append(out.Concepts, Concept{System: system, Code: *c.Code, Display: deref(c.Display)})
		}
	}
	return out
}

func appendContains(out []Concept, contains []r4.ValueSetExpansionContains) []Concept {
	for _, c := range contains {
		if c.Code != nil {
			out = append(out, Concept{System: deref(c.System), Code: *c.Code, Display: deref(c.Display)})
		}
		out = appendContains(out, c.Contains)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Store) SearchParameter(url string) (*SearchParameter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.searchParams[url]
	return sp, ok
}

// SearchParameterFor falls back to parameters defined on Resource and
// DomainResource, such as _id and _lastUpdated.
func (s *Store) SearchParameterFor(resourceType, code string) (*SearchParameter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, base := range []string{resourceType, "DomainResource", "Resource"} {
		if sp, ok := s.searchByCode[base+"."+code]; ok {
			return sp, true
		}
	}
	return nil, false
}

func (s *Store) OperationDefinition(url string) (*OperationDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	od, ok := s.operations[url]
	return od, ok
}

func (s *Store) MessageDefinition(url string) (*MessageDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	md, ok := s.messages[url]
	return md, ok
}

func (s *Store) StructureDefinition(url string) (*r4.StructureDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sd, ok := s.structures[url]
	return sd, ok
}

// DefaultProfile returns the first loaded profile constraining resourceType,
// or "" when only the base definition (or nothing) is known.
func (s *Store) DefaultProfile(resourceType string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[resourceType]
}

func (s *Store) Expand(url string) (*ValueSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vs, ok := s.valueSets[url]
	return vs, ok
}

// Example accepts "Type/id" references; absolute URLs are matched on their
// last two path segments.
func (s *Store) Example(reference string) (json.RawMessage, bool) {
	parts := strings.Split(strings.TrimRight(reference, "/"), "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ex, ok := s.examples[strings.Join(parts, "/")]
	return ex, ok
}
