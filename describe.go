package fhiroas

import (
	"github.com/getkin/kin-openapi/openapi3"
)

type describe struct {
	desc string
}

// Describe returns a documentation-only rule that appends desc to the schema description.
func Describe(desc string) Rule {
	return &describe{desc: desc}
}

func (r *describe) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	appendDescription(ref.Value, r.desc)
	return nil
}

func (r *describe) Validate(_ any) error {
	return nil
}

// DescribeRules applies rules to a standalone schema such as a query
// parameter's. Required markers are collected on a throwaway parent object
// and reported through the returned bool.
func DescribeRules(name string, rules []Rule, ref *openapi3.SchemaRef) (bool, error) {
	parent := &openapi3.Schema{}
	for _, rule := range rules {
		if err := rule.Describe(name, parent, ref); err != nil {
			return false, err
		}
	}
	for _, r := range parent.Required {
		if r == name {
			return true, nil
		}
	}
	return false, nil
}
