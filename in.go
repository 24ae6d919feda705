package fhiroas

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// In returns a rule that checks a value is one of the allowed values.
// On an array schema the enum is written onto the items.
func In(values ...any) Rule {
	want := make([]string, len(values))
	for i := range values {
		want[i] = fmt.Sprintf("'%v'", values[i])
	}
	return &inRule{
		validation.In(values...).Error(fmt.Sprintf("must be one of %s", strings.Join(want, ", "))),
		values,
	}
}

type inRule struct {
	validation.InRule
	values []any
}

func (r *inRule) Validate(value any) error {
	if err := r.InRule.Validate(value); err != nil {
		return fmt.Errorf("%s got '%v'", err, value)
	}
	return nil
}

func (r *inRule) Describe(_ string, _ *openapi3.Schema, ref *openapi3.SchemaRef) error {
	target := ref.Value
	if target.Type.Is(openapi3.TypeArray) && target.Items != nil && target.Items.Value != nil {
		target = target.Items.Value
	}
	target.Enum = append(target.Enum, r.values...)
	return nil
}
