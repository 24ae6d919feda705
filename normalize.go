package fhiroas

import (
	"reflect"
)

// Normalizer is implemented by types that need custom normalization after
// decoding. Normalization runs top level first, then depth-first into struct
// fields, slices, pointers and map values.
type Normalizer interface {
	Normalize()
}

// Normalize runs Normalize on v and every nested Normalizer.
func Normalize(v any) {
	normalizeRecursive(v)
}

func normalizeRecursive(a any) {
	if a == nil {
		return
	}
	callNormalize(a)
	rv := reflect.ValueOf(a)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		walkNormalize(rv)
	}
}

func callNormalize(v any) {
	if n, ok := v.(Normalizer); ok {
		n.Normalize()
	}
}

func walkNormalize(rv reflect.Value) { //nolint:revive // reflection walker is inherently complex
	for i := range rv.NumField() {
		field := rv.Field(i)
		if !rv.Type().Field(i).IsExported() {
			continue
		}
		switch field.Kind() {
		case reflect.Struct:
			if field.CanAddr() {
				callNormalize(field.Addr().Interface())
			}
			walkNormalize(field)
		case reflect.Ptr:
			if !field.IsNil() {
				callNormalize(field.Interface())
				if field.Elem().Kind() == reflect.Struct {
					walkNormalize(field.Elem())
				}
			}
		case reflect.Slice:
			for j := range field.Len() {
				elem := field.Index(j)
				switch elem.Kind() {
				case reflect.Struct:
					callNormalize(elem.Addr().Interface())
					walkNormalize(elem)
				case reflect.Ptr:
					if !elem.IsNil() {
						callNormalize(elem.Interface())
						if elem.Elem().Kind() == reflect.Struct {
							walkNormalize(elem.Elem())
						}
					}
				}
			}
		case reflect.Map:
			for _, key := range field.MapKeys() {
				val := field.MapIndex(key)
				// Map values aren't addressable; copy, normalize, put back.
				if val.Kind() == reflect.Struct {
					cp := reflect.New(val.Type())
					cp.Elem().Set(val)
					callNormalize(cp.Interface())
					walkNormalize(cp.Elem())
					field.SetMapIndex(key, cp.Elem())
				}
			}
		}
	}
}
