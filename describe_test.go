package fhiroas

import (
	"errors"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSchemaRef() (*openapi3.Schema, *openapi3.SchemaRef) {
	return openapi3.NewSchema(), &openapi3.SchemaRef{Value: openapi3.NewSchema()}
}

func newTestArraySchemaRef() (*openapi3.Schema, *openapi3.SchemaRef) {
	return openapi3.NewSchema(), &openapi3.SchemaRef{Value: openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())}
}

func TestDescribe_Required(t *testing.T) {
	schema, ref := newTestSchemaRef()

	require.NoError(t, Required.Describe("type", schema, ref))
	require.NoError(t, Required.Describe("interaction", schema, ref))

	assert.Equal(t, []string{"type", "interaction"}, schema.Required)
}

func TestDescribe_MinMax(t *testing.T) {
	schema, ref := newTestSchemaRef()

	require.NoError(t, Min(1).Describe("_count", schema, ref))
	require.NoError(t, Max(100).Describe("_count", schema, ref))

	require.NotNil(t, ref.Value.Min)
	require.NotNil(t, ref.Value.Max)
	assert.Equal(t, float64(1), *ref.Value.Min)
	assert.Equal(t, float64(100), *ref.Value.Max)
	assert.Empty(t, ref.Value.Format)
}

func TestDescribe_MinMax_BadThreshold(t *testing.T) {
	schema, ref := newTestSchemaRef()
	assert.Error(t, Min("one").Describe("_count", schema, ref))
}

func TestDescribe_Length(t *testing.T) {
	schema, ref := newTestSchemaRef()

	require.NoError(t, Length(1, 64).Describe("name", schema, ref))

	assert.Equal(t, uint64(1), ref.Value.MinLength)
	require.NotNil(t, ref.Value.MaxLength)
	assert.Equal(t, uint64(64), *ref.Value.MaxLength)
}

func TestDescribe_In(t *testing.T) {
	schema, ref := newTestSchemaRef()

	require.NoError(t, In("read", "vread").Describe("code", schema, ref))

	assert.Equal(t, []any{"read", "vread"}, ref.Value.Enum)
}

func TestDescribe_In_ArrayWritesItems(t *testing.T) {
	schema, ref := newTestArraySchemaRef()

	require.NoError(t, In("http://loinc.org|1234-5").Describe("code", schema, ref))

	assert.Empty(t, ref.Value.Enum)
	assert.Equal(t, []any{"http://loinc.org|1234-5"}, ref.Value.Items.Value.Enum)
}

func TestDescribe_Each(t *testing.T) {
	schema, ref := newTestArraySchemaRef()

	require.NoError(t, Each(Length(1, 0), Describe("a FHIR format")).Describe("format", schema, ref))

	assert.Equal(t, uint64(1), ref.Value.Items.Value.MinLength)
	assert.Nil(t, ref.Value.Items.Value.MaxLength)
	assert.Equal(t, "a FHIR format", ref.Value.Items.Value.Description)
}

func TestDescribe_Unique(t *testing.T) {
	schema, ref := newTestSchemaRef()

	require.NoError(t, Unique(func(i int) any { return i }, "name").Describe("searchParam", schema, ref))

	assert.True(t, ref.Value.UniqueItems)
}

func TestDescribe_Example(t *testing.T) {
	schema, ref := newTestSchemaRef()

	require.NoError(t, Example("Patient/123").Describe("subject", schema, ref))

	assert.Equal(t, "Patient/123", ref.Value.Example)
}

func TestDescribe_Describe_Appends(t *testing.T) {
	schema, ref := newTestSchemaRef()
	ref.Value.Description = "Search by patient."

	require.NoError(t, Describe("A code from FHIR ValueSet.").Describe("code", schema, ref))

	assert.Equal(t, "Search by patient. A code from FHIR ValueSet.", ref.Value.Description)
}

func TestDescribe_By(t *testing.T) {
	schema, ref := newTestSchemaRef()
	rule := By(func(any) error { return errors.New("nope") }, "must be a resource type")

	require.NoError(t, rule.Describe("type", schema, ref))

	assert.Equal(t, "must be a resource type", ref.Value.Description)
	assert.EqualError(t, rule.Validate("x"), "nope")
}

func TestDescribe_StringRule(t *testing.T) {
	schema, ref := newTestSchemaRef()
	rule := NewStringRule(func(s string) bool { return s != "" }, "must not be empty")

	require.NoError(t, rule.Describe("name", schema, ref))

	assert.Equal(t, "must not be empty", ref.Value.Description)
}

func TestDescribeRules(t *testing.T) {
	ref := openapi3.NewSchemaRef("", openapi3.NewStringSchema())

	required, err := DescribeRules("_count", []Rule{Required, Min(1), Example("10")}, ref)
	require.NoError(t, err)

	assert.True(t, required)
	assert.Equal(t, float64(1), *ref.Value.Min)
	assert.Equal(t, "10", ref.Value.Example)
	assert.Empty(t, ref.Value.Required)
}

func TestDescribeRules_NotRequired(t *testing.T) {
	ref := openapi3.NewSchemaRef("", openapi3.NewStringSchema())

	required, err := DescribeRules("status", []Rule{In("active")}, ref)
	require.NoError(t, err)

	assert.False(t, required)
}
