package fhiroas

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate is the single entry point for all validation.
// If value implements Ruler, validates struct fields via Rules().
// If value implements ValueRuler, applies its rules to the value directly.
// Collection elements implementing Ruler are auto-validated.
func Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() == reflect.Ptr && rv.IsNil()) {
		return nil
	}

	if r, ok := value.(Ruler); ok {
		return validation.ValidateStruct(value, convertFieldRules(value, r.Rules()...)...)
	}
	// ozzo hands struct fields over by value; *T may still be a Ruler.
	if rv.Kind() == reflect.Struct {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		pi := ptr.Interface()
		if r, ok := pi.(Ruler); ok {
			return validation.ValidateStruct(pi, convertFieldRules(pi, r.Rules()...)...)
		}
	}

	if vr, ok := value.(ValueRuler); ok {
		return validateValueRules(value, vr.ValueRules())
	}

	if rv.Kind() == reflect.Interface && rv.IsNil() {
		return nil
	}
	rv = reflect.Indirect(rv)

	switch rv.Kind() {
	case reflect.Map:
		if shouldAutoValidate(rv.Type().Elem()) {
			return validateMap(rv)
		}
	case reflect.Slice, reflect.Array:
		if shouldAutoValidate(rv.Type().Elem()) {
			return validateSlice(rv)
		}
	case reflect.Ptr, reflect.Interface:
		return Validate(rv.Elem().Interface())
	}
	return nil
}

// ValidateStruct validates a struct with explicit field rules.
// Prefer Validate for types implementing Ruler.
func ValidateStruct(structPtr any, fields []*FieldRules) error {
	return validation.ValidateStruct(structPtr, convertFieldRules(structPtr, fields...)...)
}

// UnmarshalAndValidate decodes JSON b into dst, normalizes, then validates.
func UnmarshalAndValidate(b []byte, dst any) error {
	if err := json.Unmarshal(b, dst); err != nil {
		return err
	}
	normalizeRecursive(dst)
	return Validate(dst)
}

// DecodeAndValidate is like [UnmarshalAndValidate] but reads from r.
func DecodeAndValidate(r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return err
	}
	normalizeRecursive(dst)
	return Validate(dst)
}

func validateValueRules(value any, rules []Rule) error {
	for _, rule := range rules {
		if err := rule.Validate(value); err != nil {
			return err
		}
	}
	return nil
}

// shouldAutoValidate reports whether elements of elemType are Rulers or
// ValueRulers, looking through nested collections.
func shouldAutoValidate(elemType reflect.Type) bool {
	if _, ok := reflect.Zero(elemType).Interface().(ValueRuler); ok {
		return true
	}
	switch elemType.Kind() {
	case reflect.Struct:
		_, ok := reflect.New(elemType).Interface().(Ruler)
		return ok
	case reflect.Ptr:
		return elemType.Elem().Kind() == reflect.Struct && shouldAutoValidate(elemType.Elem())
	case reflect.Slice, reflect.Array, reflect.Map:
		return shouldAutoValidate(elemType.Elem())
	}
	return false
}

func validateElement(v reflect.Value) error {
	if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil
	}
	switch v.Kind() {
	case reflect.Struct:
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		return Validate(ptr.Interface())
	case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Map:
		return Validate(v.Interface())
	}
	if vr, ok := v.Interface().(ValueRuler); ok {
		return validateValueRules(v.Interface(), vr.ValueRules())
	}
	return nil
}

func validateSlice(rv reflect.Value) error {
	errs := validation.Errors{}
	for i := range rv.Len() {
		if err := validateElement(rv.Index(i)); err != nil {
			errs[strconv.Itoa(i)] = err
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateMap(rv reflect.Value) error {
	errs := validation.Errors{}
	for _, key := range rv.MapKeys() {
		if err := validateElement(rv.MapIndex(key)); err != nil {
			errs[fmt.Sprintf("%v", key.Interface())] = err
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// rulerBridge hands struct fields back to Validate so Ruler children,
// []Ruler slices and map[K]Ruler maps are validated recursively.
type rulerBridge struct{}

func (rulerBridge) Validate(value any) error {
	if value == nil {
		return nil
	}
	return Validate(value)
}

// convertFieldRules translates FieldRules into ozzo's FieldRules.
// Embedded Ruler fields are expanded for flat error keys.
func convertFieldRules(structPtr any, fields ...*FieldRules) []*validation.FieldRules {
	flat := expandFields(structPtr, fields)

	vFields := make([]*validation.FieldRules, len(flat))
	for i, fr := range flat {
		rules := make([]validation.Rule, len(fr.rules), len(fr.rules)+1)
		for j, r := range fr.rules {
			rules[j] = validation.Rule(r)
		}
		rules = append(rules, rulerBridge{})
		vFields[i] = validation.Field(fr.fieldPtr, rules...)
	}
	return vFields
}

func convertRules(rules ...Rule) []validation.Rule {
	vRules := make([]validation.Rule, len(rules))
	for i := range rules {
		vRules[i] = validation.Rule(rules[i])
	}
	return vRules
}

// By wraps a RuleFunc into a Rule whose schema description is desc.
func By(f RuleFunc, desc string) Rule {
	return &inlineRule{validation.By(validation.RuleFunc(f)), desc}
}

type inlineRule struct {
	validation.Rule
	desc string
}

func (r *inlineRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	appendDescription(ref.Value, r.desc)
	return nil
}

func appendDescription(s *openapi3.Schema, desc string) {
	if desc == "" {
		return
	}
	if s.Description != "" && !strings.HasSuffix(s.Description, " ") {
		s.Description += " "
	}
	s.Description += desc
}
