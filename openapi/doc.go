// Package openapi compiles a FHIR CapabilityStatement into an OpenAPI 3.0.3
// document.
//
// Each declared interaction becomes an operation on its RESTful path, each
// custom operation one operation per declared level, and each search
// parameter a typed query parameter whose documentation follows the chain
// across resource types. Request and response examples come from the
// example registry or are synthesized.
//
//	store := registry.NewStore()
//	if _, err := store.LoadDir("definitions"); err != nil {
//	    return err
//	}
//	desc, err := conformance.LoadFile("CapabilityStatement.json")
//	if err != nil {
//	    return err
//	}
//	doc, err := openapi.NewStoreCompiler(store, openapi.Options{Enhance: true}).Compile(desc)
//
// A Compiler keeps no state between calls and may compile concurrently.
package openapi
