// Package is provides string format rules for conformance documents.
package is

import (
	"regexp"

	"github.com/Gobd/fhiroas"
	"github.com/asaskevich/govalidator"
)

var (
	resourceTypeRe = regexp.MustCompile(`^[A-Z][A-Za-z]+$`)
	codeRe         = regexp.MustCompile(`^[^\s]+(\s[^\s]+)*$`)
	mimeRe         = regexp.MustCompile(`^[a-z]+/[A-Za-z0-9.+-]+(\s*;\s*[A-Za-z0-9-]+=[^;\s]+)*$`)
)

var (
	// URL validates an absolute or canonical URL.
	URL = fhiroas.NewStringRule(govalidator.IsURL, "must be a valid URL")
	// Email validates an e-mail address.
	Email = fhiroas.NewStringRule(govalidator.IsEmail, "must be a valid email address")
	// ResourceType validates a FHIR resource type name such as Patient.
	ResourceType = fhiroas.NewStringRule(resourceTypeRe.MatchString, "must be a FHIR resource type")
	// Code validates a FHIR code: no leading, trailing or repeated whitespace.
	Code = fhiroas.NewStringRule(codeRe.MatchString, "must be a FHIR code")
	// MimeType validates a media type or a FHIR format shorthand (json, xml).
	MimeType = fhiroas.NewStringRule(isFormat, "must be a mime type or json, xml, ttl")
)

func isFormat(s string) bool {
	switch s {
	case "json", "xml", "ttl":
		return true
	}
	return mimeRe.MatchString(s)
}
