package fhiroas

import (
	"reflect"
)

// Field creates a FieldRules binding a struct field pointer to its rules.
func Field[T any](fieldPtr *T, rules ...Rule) *FieldRules {
	return &FieldRules{
		fieldPtr: fieldPtr,
		rules:    rules,
	}
}

// expandFields flattens embedded Ruler field rules into the parent's rule set.
// Embedded Ruler fields have their Rules() inlined recursively, so error keys
// and schema properties stay flat.
func expandFields(structPtr any, fields []*FieldRules) []*FieldRules {
	structVal := reflect.Indirect(reflect.ValueOf(structPtr))
	if !structVal.IsValid() || structVal.Kind() != reflect.Struct {
		return fields
	}

	result := make([]*FieldRules, 0, len(fields))
	for _, fr := range fields {
		fv := reflect.ValueOf(fr.fieldPtr)
		if fv.Kind() == reflect.Ptr {
			if sf := findStructField(structVal, fv); sf != nil && sf.Anonymous {
				embeddedPtr := fv.Interface()
				if r, ok := embeddedPtr.(Ruler); ok {
					result = append(result, expandFields(embeddedPtr, r.Rules())...)
					continue
				}
			}
		}
		result = append(result, fr)
	}
	return result
}

// findStructField returns the field of structVal whose address is fieldPtr,
// looking into embedded structs when no direct field matches.
func findStructField(structVal reflect.Value, fieldPtr reflect.Value) *reflect.StructField {
	ptr := fieldPtr.Pointer()
	for i := range structVal.NumField() {
		fv := structVal.Field(i)
		if !fv.CanAddr() {
			continue
		}
		if fv.Addr().Pointer() == ptr && fv.Type() == fieldPtr.Elem().Type() {
			sf := structVal.Type().Field(i)
			return &sf
		}
	}
	for i := range structVal.NumField() {
		if !structVal.Type().Field(i).Anonymous {
			continue
		}
		fv := structVal.Field(i)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if fv.Kind() == reflect.Struct {
			if sf := findStructField(fv, fieldPtr); sf != nil {
				return sf
			}
		}
	}
	return nil
}
