package fhiroas

import validation "github.com/go-ozzo/ozzo-validation/v4"

// ValidationErrors maps field names to their validation errors. It is
// [validation.Errors] from ozzo-validation and marshals to JSON.
type ValidationErrors = validation.Errors
