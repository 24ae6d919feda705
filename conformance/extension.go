package conformance

// Extension URLs decoded by Parse.
const (
	ExpectationURL     = "http://hl7.org/fhir/StructureDefinition/capabilitystatement-expectation"
	CombinationURL     = "http://hl7.org/fhir/StructureDefinition/capabilitystatement-search-parameter-combination"
	ExamplesURL        = "https://fhir.nhs.uk/StructureDefinition/Extension-NHSDigital-CapabilityStatement-Examples"
	QueryParametersURL = "https://fhir.nhs.uk/StructureDefinition/Extension-NHSDigital-CapabilityStatement-QueryParameters"
)

type reference struct {
	Reference string `json:"reference"`
}

type extension struct {
	URL            string     `json:"url"`
	ValueCode      string     `json:"valueCode,omitempty"`
	ValueString    string     `json:"valueString,omitempty"`
	ValueMarkdown  string     `json:"valueMarkdown,omitempty"`
	ValueCanonical string     `json:"valueCanonical,omitempty"`
	ValueBoolean   *bool      `json:"valueBoolean,omitempty"`
	ValueInteger   *int       `json:"valueInteger,omitempty"`
	ValueReference *reference `json:"valueReference,omitempty"`
	Extension      extensions `json:"extension,omitempty"`
}

type extensions []extension

func (e extensions) all(url string) []extension {
	var out []extension
	for _, x := range e {
		if x.URL == url {
			out = append(out, x)
		}
	}
	return out
}

func (e extensions) first(url string) *extension {
	for i := range e {
		if e[i].URL == url {
			return &e[i]
		}
	}
	return nil
}

// text returns the string-like value of the extension.
func (x *extension) text() string {
	switch {
	case x == nil:
		return ""
	case x.ValueString != "":
		return x.ValueString
	case x.ValueMarkdown != "":
		return x.ValueMarkdown
	case x.ValueCode != "":
		return x.ValueCode
	case x.ValueCanonical != "":
		return x.ValueCanonical
	case x.ValueReference != nil:
		return x.ValueReference.Reference
	}
	return ""
}

func (e extensions) expectation() Expectation {
	return Expectation(e.first(ExpectationURL).text())
}

func (e extensions) examples() []ExampleRef {
	var out []ExampleRef
	for _, outer := range e.all(ExamplesURL) {
		for _, ex := range outer.Extension.all("example") {
			ref := ExampleRef{
				Reference:   ex.Extension.first("value").text(),
				Summary:     ex.Extension.first("summary").text(),
				Description: ex.Extension.first("description").text(),
			}
			if req := ex.Extension.first("request"); req != nil && req.ValueBoolean != nil {
				ref.Request = *req.ValueBoolean
			}
			out = append(out, ref)
		}
	}
	return out
}

func (e extensions) combinations() []Combination {
	var out []Combination
	for _, x := range e.all(CombinationURL) {
		c := Combination{Expectation: x.Extension.expectation()}
		for _, r := range x.Extension.all("required") {
			c.Required = append(c.Required, r.text())
		}
		for _, o := range x.Extension.all("optional") {
			c.Optional = append(c.Optional, o.text())
		}
		out = append(out, c)
	}
	return out
}

func (e extensions) queryConstraints() *QueryConstraints {
	x := e.first(QueryParametersURL)
	if x == nil {
		return nil
	}
	c := &QueryConstraints{
		Example:       x.Extension.first("exampleParameter").text(),
		AllowedValues: x.Extension.first("allowedValues").text(),
	}
	if r := x.Extension.first("required"); r != nil && r.ValueBoolean != nil {
		c.Required = *r.ValueBoolean
	}
	if m := x.Extension.first("minimum"); m != nil {
		c.Minimum = m.ValueInteger
	}
	if m := x.Extension.first("maximum"); m != nil {
		c.Maximum = m.ValueInteger
	}
	if s := x.Extension.first("showCodeAndSystem"); s != nil {
		c.ShowCodeAndSystem = s.ValueBoolean
	}
	return c
}
