// Package transform provides the string transformations applied to
// conformance text: struct walkers that mutate every string field, HTML
// unescaping of narrative markdown, and markdown escaping for table cells.
// The walkers are used inside [fhiroas.Normalizer] implementations.
package transform
