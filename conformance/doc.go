// Package conformance holds the decoded form of a FHIR R4 CapabilityStatement.
//
// Extensions carried by the statement (conformance expectations, search
// parameter combinations, query parameter constraints and example
// references) are decoded once by [Parse] into typed fields; nothing
// downstream inspects raw extension JSON.
//
//	desc, err := conformance.LoadFile("CapabilityStatement.json")
//	if err != nil {
//	    return err
//	}
//	for _, r := range desc.Resources {
//	    fmt.Println(r.Type, r.Interactions)
//	}
package conformance
