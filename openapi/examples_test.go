package openapi_test

import (
	"encoding/json"
	"testing"

	"github.com/Gobd/fhiroas/openapi"
	"github.com/Gobd/fhiroas/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExampleID(t *testing.T) {
	assert.Equal(t, openapi.ExampleID("Patient"), openapi.ExampleID("Patient"))
	assert.NotEqual(t, openapi.ExampleID("Patient"), openapi.ExampleID("Observation"))
	assert.Len(t, openapi.ExampleID("Patient"), 36)
}

func TestSearchSet(t *testing.T) {
	b := openapi.SearchSet(openapi.Resource{"resourceType": "Patient", "id": "p1"})

	assert.Equal(t, "Bundle", b.ResourceType)
	assert.Equal(t, "searchset", b.Type)
	assert.Equal(t, 1, *b.Total)
	require.Len(t, b.Link, 2)
	assert.Equal(t, "self", b.Link[0].Relation)
	assert.Equal(t, openapi.ExampleBase+"Patient?parameterExample=123&page=2", b.Link[1].URL)
	require.Len(t, b.Entry, 1)
	assert.Equal(t, openapi.ExampleBase+"Patient/p1", b.Entry[0].FullURL)

	synthesized := openapi.SearchSet(openapi.DefaultResource("Observation"))
	assert.Equal(t, openapi.ExampleBase+"Observation/"+openapi.ExampleID("Observation"), synthesized.Entry[0].FullURL)
}

func TestOutcomes(t *testing.T) {
	assert.Equal(t, "informational", openapi.SuccessOutcome().Issue[0].Code)
	assert.Equal(t, "ACCESS_DENIED", openapi.ForbiddenOutcome().Issue[0].Details.Coding[0].Code)
	assert.Equal(t, "INVALID_VALUE", openapi.ErrorOutcome().Issue[0].Details.Coding[0].Code)
	for _, oo := range []*openapi.OperationOutcome{openapi.SuccessOutcome(), openapi.ForbiddenOutcome(), openapi.ErrorOutcome()} {
		assert.Equal(t, "OperationOutcome", openapi.ResourceType(oo))
	}
}

func TestPatchExample(t *testing.T) {
	b, err := json.Marshal(openapi.PatchExample("MedicationRequest"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"op":"replace","path":"/status","value":"cancelled"}]`, string(b))

	assert.Len(t, openapi.PatchExample("MedicationDispense"), 2)
	assert.Equal(t, "/foo", openapi.PatchExample("Patient")[0].Path)
}

func TestParametersExample(t *testing.T) {
	def := &registry.OperationDefinition{
		Code: "validate",
		Parameter: []registry.OperationParameter{
			{Name: "resource", Use: "in", Type: "Resource"},
			{Name: "mode", Use: "in", Type: "code"},
			{Name: "profile", Use: "in", Type: "uri"},
			{Name: "count", Use: "in", Type: "integer"},
			{Name: "strict", Use: "in", Type: "boolean"},
			{Name: "coding", Use: "in", Type: "Coding"},
			{Name: "criteria", Use: "in"},
			{Name: "return", Use: "out", Type: "OperationOutcome"},
		},
	}
	b, err := json.Marshal(openapi.ParametersExample(def, "Patient"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"resourceType": "Parameters",
		"parameter": [
			{"name": "resource", "resource": {"resourceType": "Patient", "id": "1"}},
			{"name": "mode", "valueCode": "example"},
			{"name": "profile", "valueUri": "example"},
			{"name": "count", "valueInteger": 0},
			{"name": "strict", "valueBoolean": false},
			{"name": "coding", "valueCoding": {"system": "http://example.com", "code": "1234"}},
			{"name": "criteria"}
		]
	}`, string(b))

	system := openapi.ParametersExample(def, "")
	assert.Equal(t, map[string]any{"name": "resource"}, system.Parameter[0])
}
