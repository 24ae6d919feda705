package openapi_test

import (
	"testing"

	"github.com/Gobd/fhiroas/conformance"
	"github.com/Gobd/fhiroas/openapi"
	"github.com/Gobd/fhiroas/registry"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *registry.Store {
	t.Helper()
	s := registry.NewStore()
	_, err := s.LoadDir("testdata/definitions")
	require.NoError(t, err)
	return s
}

func testCapability(t *testing.T) *conformance.Description {
	t.Helper()
	desc, err := conformance.LoadFile("testdata/capability.json")
	require.NoError(t, err)
	return desc
}

func compileTestdata(t *testing.T, opts openapi.Options) *openapi3.T {
	t.Helper()
	doc, err := openapi.NewStoreCompiler(testStore(t), opts).Compile(testCapability(t))
	require.NoError(t, err)
	return doc
}

func operation(t *testing.T, doc *openapi3.T, path, method string) *openapi3.Operation {
	t.Helper()
	item := doc.Paths.Value(path)
	require.NotNil(t, item, "path %s", path)
	op := item.GetOperation(method)
	require.NotNil(t, op, "%s %s", method, path)
	return op
}

func queryParam(t *testing.T, op *openapi3.Operation, name string) *openapi3.Parameter {
	t.Helper()
	p := op.Parameters.GetByInAndName(openapi3.ParameterInQuery, name)
	require.NotNil(t, p, "query parameter %s", name)
	return p
}
