// Package registry resolves the external definitions a conformance
// description refers to: search parameters, operation and message
// definitions, structure definitions, value sets and example resources.
//
// The compiler depends only on the small lookup interfaces declared here.
// [Store] implements all of them in memory and is filled from FHIR JSON
// files, Bundles or whole directories:
//
//	s := registry.NewStore()
//	if err := s.LoadDir("definitions"); err != nil {
//	    return err
//	}
//	sp, ok := s.SearchParameterFor("Observation", "subject")
package registry
