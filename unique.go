package fhiroas

import (
	"errors"
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"
)

type uniqueRule struct {
	key  func(i int) any
	desc string
}

// Unique returns a rule that checks every element of a slice has a distinct
// key. key receives the element index; desc names the key in the error.
//
//	Field(&r.SearchParams, Unique(func(i int) any { return r.SearchParams[i].Name }, "name"))
func Unique(key func(i int) any, desc string) Rule {
	return uniqueRule{key: key, desc: desc}
}

func (r uniqueRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	ref.Value.UniqueItems = true
	return nil
}

// Validate checks if the given value is valid or not.
func (r uniqueRule) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return nil
	}
	rv = reflect.Indirect(rv)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		seen := make(map[any]struct{}, rv.Len())
		for i := range rv.Len() {
			k := r.key(i)
			if _, dup := seen[k]; dup {
				if r.desc != "" {
					return errors.New(r.desc + " must be unique")
				}
				return errors.New("not unique")
			}
			seen[k] = struct{}{}
		}
	default:
		return errors.New("must be slice")
	}
	return nil
}
