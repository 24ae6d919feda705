package registry_test

import (
	"sync"
	"testing"

	"github.com/Gobd/fhiroas/conformance"
	"github.com/Gobd/fhiroas/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestdata(t *testing.T) *registry.Store {
	t.Helper()
	s := registry.NewStore()
	stats, err := s.LoadDir("testdata")
	require.NoError(t, err)
	assert.Equal(t, registry.LoadStats{
		SearchParameters:     3,
		OperationDefinitions: 1,
		StructureDefinitions: 1,
		ValueSets:            1,
		Examples:             1,
	}, stats)
	return s
}

func TestStoreSearchParameters(t *testing.T) {
	s := loadTestdata(t)

	sp, ok := s.SearchParameter("http://hl7.org/fhir/SearchParameter/Observation-subject")
	require.True(t, ok)
	assert.Equal(t, conformance.ReferenceParam, sp.Type)
	assert.True(t, sp.AppliesTo("Observation"))

	byCode, ok := s.SearchParameterFor("Practitioner", "family")
	require.True(t, ok)
	assert.Equal(t, "http://hl7.org/fhir/SearchParameter/individual-family", byCode.URL)

	id, ok := s.SearchParameterFor("Patient", "_id")
	require.True(t, ok, "falls back to Resource")
	assert.Equal(t, conformance.TokenParam, id.Type)

	_, ok = s.SearchParameterFor("Patient", "subject")
	assert.False(t, ok)
}

func TestSearchParameterClone(t *testing.T) {
	s := loadTestdata(t)
	sp, _ := s.SearchParameterFor("Observation", "subject")

	c := sp.Clone()
	c.Expression += ".where(resolve() is Patient)"
	c.Target[0] = "Patient"

	again, _ := s.SearchParameterFor("Observation", "subject")
	assert.Equal(t, "Observation.subject", again.Expression)
	assert.Equal(t, "Group", again.Target[0])
}

func TestStoreOperationDefinition(t *testing.T) {
	s := loadTestdata(t)
	od, ok := s.OperationDefinition("https://fhir.example.org/OperationDefinition/convert")
	require.True(t, ok)
	assert.Equal(t, "Converts <b>between</b> formats", od.Description)
	assert.False(t, od.ProcessMessage())
	require.Len(t, od.Parameter, 2)
	assert.Equal(t, []string{"json", "xml"}, od.Parameter[0].Examples())
	assert.True(t, od.Parameter[0].In())
	assert.False(t, od.Parameter[1].In())
}

func TestStoreProfilesAndValueSets(t *testing.T) {
	s := loadTestdata(t)

	assert.Equal(t, "https://fhir.hl7.org.uk/StructureDefinition/UKCore-Patient", s.DefaultProfile("Patient"))
	assert.Empty(t, s.DefaultProfile("Observation"))

	sd, ok := s.StructureDefinition("https://fhir.hl7.org.uk/StructureDefinition/UKCore-Patient")
	require.True(t, ok)
	assert.Equal(t, "UKCorePatient", *sd.Name)

	vs, ok := s.Expand("http://hl7.org/fhir/ValueSet/administrative-gender")
	require.True(t, ok)
	assert.Equal(t, "AdministrativeGender", vs.Name)
	assert.Equal(t, []registry.Concept{
		{System: "http://hl7.org/fhir/administrative-gender", Code: "male"},
		{System: "http://hl7.org/fhir/administrative-gender", Code: "female"},
	}, vs.Concepts)
}

func TestStoreExpansionPreferred(t *testing.T) {
	s := registry.NewStore()
	_, err := s.Load([]byte(`{"resourceType":"ValueSet","url":"https://example.org/vs","name":"VS",
		"compose":{"include":[{"system":"s","concept":[{"code":"ignored"}]}]},
		"expansion":{"contains":[{"system":"a","code":"1","contains":[{"system":"a","code":"1.1"}]}]}}`))
	require.NoError(t, err)

	vs, ok := s.Expand("https://example.org/vs")
	require.True(t, ok)
	assert.Equal(t, []registry.Concept{{System: "a", Code: "1"}, {System: "a", Code: "1.1"}}, vs.Concepts)
}

func TestStoreExamples(t *testing.T) {
	s := loadTestdata(t)

	ex, ok := s.Example("Patient/example")
	require.True(t, ok)
	assert.Contains(t, string(ex), "Chalmers")

	_, ok = s.Example("https://fhir.example.org/R4/Patient/example")
	assert.True(t, ok)

	_, ok = s.Example("Patient/missing")
	assert.False(t, ok)
}

func TestStoreLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"no resource type", `{"id":"x"}`},
		{"search parameter without code", `{"resourceType":"SearchParameter","base":["Patient"],"type":"string"}`},
		{"search parameter bad type", `{"resourceType":"SearchParameter","code":"x","base":["Patient"],"type":"text"}`},
		{"operation parameter bad use", `{"resourceType":"OperationDefinition","code":"x","parameter":[{"name":"a","use":"both"}]}`},
		{"value set without url", `{"resourceType":"ValueSet","id":"x"}`},
		{"bad bundle entry", `{"resourceType":"Bundle","type":"collection","entry":[{"resource":{"resourceType":"SearchParameter"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.NewStore().Load([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestStoreConcurrentReads(t *testing.T) {
	s := loadTestdata(t)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.SearchParameterFor("Observation", "subject")
			_, _ = s.Load([]byte(`{"resourceType":"Patient","id":"p2"}`))
			_, _ = s.Example("Patient/p2")
		}()
	}
	wg.Wait()
	_, ok := s.Example("Patient/p2")
	assert.True(t, ok)
}
