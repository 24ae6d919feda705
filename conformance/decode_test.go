package conformance_test

import (
	"strings"
	"testing"

	"github.com/Gobd/fhiroas"
	"github.com/Gobd/fhiroas/conformance"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	d, err := conformance.LoadFile("testdata/capability.json")
	require.NoError(t, err)

	assert.Equal(t, "Pharmacy API", d.Title)
	assert.Equal(t, "2.3.1", d.Version, "software version wins")
	assert.Equal(t, "Dispensing & prescribing", d.Description)
	assert.Equal(t, []conformance.Contact{{Name: "Interoperability Team", Email: "interop@nhs.net", URL: "https://digital.nhs.uk"}}, d.Contacts)
	assert.Equal(t, "https://fhir.example.org/R4", d.Implementation.URL)
	assert.True(t, d.Security)
	assert.True(t, d.XML())
	assert.True(t, d.HasInteraction(conformance.Transaction))
	assert.False(t, d.HasInteraction(conformance.Batch))
	assert.NotEmpty(t, d.Raw)

	require.Len(t, d.Operations, 1)
	assert.Equal(t, "process-message", d.Operations[0].Name)

	require.Len(t, d.Resources, 2, "server rest is preferred over client")
	p := d.Resources[0]
	assert.Equal(t, "Patient", p.Type)
	assert.True(t, p.Has(conformance.SearchType))
	assert.True(t, p.Has(conformance.Create))
	assert.False(t, p.Has(conformance.Delete))

	search := p.Interaction(conformance.SearchType)
	require.NotNil(t, search)
	assert.Equal(t, conformance.Shall, search.Expectation)
	assert.Equal(t, []conformance.ExampleRef{{Reference: "Patient/example", Summary: "A patient"}}, search.Examples)

	require.Len(t, p.Combinations, 1)
	assert.Equal(t, conformance.Combination{
		Expectation: conformance.Should,
		Required:    []string{"family", "birthdate"},
		Optional:    []string{"gender"},
	}, p.Combinations[0])

	require.Len(t, p.SearchParams, 2)
	assert.Equal(t, conformance.Shall, p.SearchParams[0].Expectation)
	assert.Nil(t, p.SearchParams[0].Constraints)

	c := p.SearchParams[1].Constraints
	require.NotNil(t, c)
	assert.True(t, c.Required)
	assert.Equal(t, 1, *c.Minimum)
	assert.Equal(t, 50, *c.Maximum)
	assert.Equal(t, "10", c.Example)
	assert.True(t, c.CodeAndSystem())
	assert.Len(t, c.ParamRules(), 4)

	assert.Equal(t, []string{"Patient:general-practitioner"}, p.SearchIncludes)

	require.Len(t, d.Messaging, 1)
	assert.Equal(t, "receiver", d.Messaging[0].SupportedMessages[0].Mode)
}

func TestParseWrongResource(t *testing.T) {
	_, err := conformance.Parse([]byte(`{"resourceType":"Patient"}`))
	require.ErrorIs(t, err, conformance.ErrNotCapabilityStatement)
}

func TestParseMalformed(t *testing.T) {
	_, err := conformance.Decode(strings.NewReader(`{"resourceType":`))
	require.Error(t, err)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unknown interaction",
			body: `{"resourceType":"CapabilityStatement","rest":[{"mode":"server","resource":[
				{"type":"Patient","interaction":[{"code":"search"}]}]}]}`,
			want: "must be one of",
		},
		{
			name: "duplicate resource",
			body: `{"resourceType":"CapabilityStatement","rest":[{"mode":"server","resource":[
				{"type":"Patient"},{"type":"Patient"}]}]}`,
			want: "resource type must be unique",
		},
		{
			name: "lower case resource type",
			body: `{"resourceType":"CapabilityStatement","rest":[{"mode":"server","resource":[{"type":"patient"}]}]}`,
			want: "must be a FHIR resource type",
		},
		{
			name: "bad expectation",
			body: `{"resourceType":"CapabilityStatement","rest":[{"mode":"server","resource":[
				{"type":"Patient","interaction":[{"code":"read","extension":[
				{"url":"http://hl7.org/fhir/StructureDefinition/capabilitystatement-expectation","valueCode":"MUST"}]}]}]}]}`,
			want: "must be one of",
		},
		{
			name: "maximum below minimum",
			body: `{"resourceType":"CapabilityStatement","rest":[{"mode":"server","resource":[
				{"type":"Patient","searchParam":[{"name":"_count","type":"number","extension":[
				{"url":"https://fhir.nhs.uk/StructureDefinition/Extension-NHSDigital-CapabilityStatement-QueryParameters",
				 "extension":[{"url":"minimum","valueInteger":10},{"url":"maximum","valueInteger":5}]}]}]}]}]}`,
			want: "must not be below minimum",
		},
		{
			name: "bad contact email",
			body: `{"resourceType":"CapabilityStatement","contact":[{"telecom":[{"system":"email","value":"nope"}]}]}`,
			want: "must be a valid email address",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := conformance.Parse([]byte(tt.body))
			require.Error(t, err)
			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseMinimal(t *testing.T) {
	d, err := conformance.Parse([]byte(`{"resourceType":"CapabilityStatement","title":"x"}`))
	require.NoError(t, err)
	assert.False(t, d.Security)
	assert.Empty(t, d.Resources)
	assert.False(t, d.XML())
}

func TestRulesCoverFields(t *testing.T) {
	missing := fhiroas.MissingRules(&conformance.Resource{}, "Documentation", "SearchIncludes", "SearchRevIncludes")
	assert.Empty(t, missing)
}
