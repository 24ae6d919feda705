package openapi_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/Gobd/fhiroas/conformance"
	"github.com/Gobd/fhiroas/openapi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T, depth int) *openapi.ChainResolver {
	t.Helper()
	return openapi.NewChainResolver(testStore(t), depth, zerolog.Nop())
}

func TestResolveDirect(t *testing.T) {
	c := testResolver(t, 0)
	r := c.Resolve("Patient", conformance.SearchParam{
		Name:        "family",
		Definition:  "http://hl7.org/fhir/SearchParameter/individual-family",
		Expectation: conformance.Shall,
	})

	require.True(t, r.Found)
	assert.Equal(t, "family", r.Code)
	assert.Equal(t, conformance.StringParam, r.Type)
	assert.Equal(t, "Patient.name.family", r.Expression)
	assert.True(t, strings.HasPrefix(r.Description, "[Patient](patient.html)"))
	assert.Nil(t, r.Tail)
	assert.Equal(t, 1, r.Docs.Rows())

	md := r.Docs.Markdown()
	assert.Contains(t, md, " | **SHALL** | [family](https://www.hl7.org/fhir/R4/Patient.html#search) | [string](https://www.hl7.org/fhir/R4/search.html#string) | Patient.name.family | ")
	assert.NotContains(t, md, "Caution")
}

func TestResolveChain(t *testing.T) {
	c := testResolver(t, 0)
	r := c.Resolve("Observation", conformance.SearchParam{Name: "subject.name"})

	require.True(t, r.Found)
	assert.Equal(t, "Patient", r.Target, "Group is never a chain target")
	require.NotNil(t, r.Tail)
	assert.True(t, r.Tail.Found)
	assert.Equal(t, "name", r.Tail.Code)
	assert.Equal(t, openapi.NonEmptyPattern, r.Schema.Pattern, "schema of the last link")
	assert.Equal(t, 2, r.Docs.Rows())

	md := r.Docs.Markdown()
	assert.Equal(t, 1, strings.Count(md, "**Search Parameter Conformance**"))
	assert.Contains(t, md, "Chained search parameter")
	assert.Contains(t, md, "`subject` reference format")

	direct := c.Resolve("Patient", conformance.SearchParam{Name: "name"})
	assert.Equal(t, direct.Docs.Markdown(), r.Tail.Docs.Markdown())
}

func TestResolveLongChain(t *testing.T) {
	c := testResolver(t, 0)
	r := c.Resolve("Observation", conformance.SearchParam{Name: "subject.general-practitioner.name"})

	require.NotNil(t, r.Tail)
	assert.Equal(t, "Patient", r.Target)
	require.NotNil(t, r.Tail.Tail)
	assert.Equal(t, "Practitioner", r.Tail.Target)
	assert.True(t, r.Tail.Tail.Found)
	assert.Equal(t, 3, r.Docs.Rows())
	assert.Contains(t, r.Docs.Markdown(), "[name](https://www.hl7.org/fhir/R4/Practitioner.html#search)")
}

func TestResolveModifiers(t *testing.T) {
	c := testResolver(t, 0)

	t.Run("type", func(t *testing.T) {
		r := c.Resolve("Observation", conformance.SearchParam{Name: "subject:Patient"})
		require.True(t, r.Found)
		assert.Equal(t, "Observation.subject.where(resolve() is Patient)", r.Expression)
		assert.Equal(t, "reference", r.Schema.Format)
	})

	t.Run("identifier", func(t *testing.T) {
		r := c.Resolve("Observation", conformance.SearchParam{Name: "subject:identifier"})
		require.True(t, r.Found)
		assert.Equal(t, "subject:identifier", r.Code)
		assert.Equal(t, conformance.TokenParam, r.Type)
		assert.Equal(t, "Observation.subject.identifier", r.Expression)
		assert.Equal(t, "token", r.Schema.Format)
	})

	t.Run("narrows chain target", func(t *testing.T) {
		r := c.Resolve("Observation", conformance.SearchParam{Name: "subject:Group.name"})
		assert.Equal(t, "Group", r.Target)
		require.NotNil(t, r.Tail)
		assert.False(t, r.Tail.Found)
		assert.Contains(t, r.Docs.Markdown(), "does not appear to be a valid search parameter")
	})
}

func TestResolveChainOnNonReference(t *testing.T) {
	c := testResolver(t, 0)
	r := c.Resolve("Observation", conformance.SearchParam{Name: "code.text"})

	require.True(t, r.Found)
	assert.Nil(t, r.Tail)
	assert.Contains(t, r.Docs.Markdown(), "Chained search parameters **MUST** always be on reference types")
	assert.Equal(t, "token", r.Schema.Format)
}

func TestResolveUnknown(t *testing.T) {
	c := testResolver(t, 0)
	r := c.Resolve("Observation", conformance.SearchParam{Name: "nonsense"})

	assert.False(t, r.Found)
	assert.Zero(t, r.Docs.Rows())
	assert.Equal(t, "\n\n **Caution:** This does not appear to be a valid search parameter. Please check HL7 FHIR conformance.", r.Docs.Markdown())
	assert.True(t, r.Schema.Type.Is("string"))
}

func TestResolveDepthBound(t *testing.T) {
	c := testResolver(t, 1)
	r := c.Resolve("Observation", conformance.SearchParam{Name: "subject.name"})

	require.NotNil(t, r.Tail)
	assert.False(t, r.Tail.Found)
	assert.Contains(t, r.Docs.Markdown(), "chain is too deep")
	assert.Equal(t, openapi.DefaultMaxChainDepth, openapi.NewChainResolver(nil, 0, zerolog.Nop()).MaxDepth)
}

func TestResolveLeavesRegistryUntouched(t *testing.T) {
	s := testStore(t)
	c := openapi.NewChainResolver(s, 0, zerolog.Nop())
	c.Resolve("Observation", conformance.SearchParam{Name: "subject:identifier"})
	c.Resolve("Observation", conformance.SearchParam{Name: "subject:Patient.name"})

	sp, ok := s.SearchParameterFor("Observation", "subject")
	require.True(t, ok)
	assert.Equal(t, "Observation.subject", sp.Expression)
	assert.Equal(t, conformance.ReferenceParam, sp.Type)
	assert.Equal(t, []string{"Patient", "Group"}, sp.Target)
}

func TestResolveInvalidExpression(t *testing.T) {
	s := testStore(t)
	_, err := s.Load([]byte(`{
		"resourceType": "SearchParameter",
		"id": "Patient-broken",
		"url": "https://fhir.example.org/SearchParameter/Patient-broken",
		"code": "broken",
		"base": ["Patient"],
		"type": "string",
		"expression": "Patient.name.where("
	}`))
	require.NoError(t, err)

	c := openapi.NewChainResolver(s, 0, zerolog.Nop())
	for range 2 {
		r := c.Resolve("Patient", conformance.SearchParam{Name: "broken"})
		assert.Contains(t, r.Docs.Markdown(), "**Caution:** expression of `broken` is not valid FHIRPath")
	}
}

func TestResolveNarrowsToWholeResourceName(t *testing.T) {
	s := testStore(t)
	_, err := s.Load([]byte(`{
		"resourceType": "SearchParameter",
		"id": "medications-code",
		"url": "https://fhir.example.org/SearchParameter/medications-code",
		"code": "code",
		"base": ["MedicationRequest", "Medication"],
		"type": "token",
		"description": "Multiple Resources: \n\n* [MedicationRequest](medicationrequest.html): Return prescriptions of this medication code\n* [Medication](medication.html): Returns medications for a specific code",
		"expression": "MedicationRequest.medication.as(CodeableConcept) | Medication.code"
	}`))
	require.NoError(t, err)

	c := openapi.NewChainResolver(s, 0, zerolog.Nop())

	r := c.Resolve("Medication", conformance.SearchParam{Name: "code"})
	require.True(t, r.Found)
	assert.Equal(t, "Medication.code", r.Expression)
	assert.Equal(t, "[Medication](medication.html): Returns medications for a specific code", r.Description)

	r = c.Resolve("MedicationRequest", conformance.SearchParam{Name: "code"})
	require.True(t, r.Found)
	assert.Equal(t, "MedicationRequest.medication.as(CodeableConcept)", r.Expression)
	assert.Equal(t, "[MedicationRequest](medicationrequest.html): Return prescriptions of this medication code", r.Description)
}

func TestResolveConcurrent(t *testing.T) {
	c := testResolver(t, 0)
	want := c.Resolve("Observation", conformance.SearchParam{Name: "subject.name"}).Docs.Markdown()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.Resolve("Observation", conformance.SearchParam{Name: "subject.name"}).Docs.Markdown()
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
