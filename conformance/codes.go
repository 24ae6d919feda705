package conformance

import (
	"github.com/Gobd/fhiroas"
)

// InteractionCode is a resource level RESTful interaction.
type InteractionCode string

// Resource level interactions.
const (
	Read            InteractionCode = "read"
	VRead           InteractionCode = "vread"
	Update          InteractionCode = "update"
	Patch           InteractionCode = "patch"
	Delete          InteractionCode = "delete"
	HistoryInstance InteractionCode = "history-instance"
	HistoryType     InteractionCode = "history-type"
	Create          InteractionCode = "create"
	SearchType      InteractionCode = "search-type"
)

// InteractionCodes lists every resource level interaction in table order.
var InteractionCodes = []InteractionCode{
	SearchType, Read, VRead, Update, Create, Patch, Delete, HistoryType, HistoryInstance,
}

func (c InteractionCode) ValueRules() []fhiroas.Rule {
	return []fhiroas.Rule{fhiroas.In(Read, VRead, Update, Patch, Delete, HistoryInstance, HistoryType, Create, SearchType)}
}

// SystemInteractionCode is a whole-system RESTful interaction.
type SystemInteractionCode string

// System level interactions.
const (
	Transaction   SystemInteractionCode = "transaction"
	Batch         SystemInteractionCode = "batch"
	SearchSystem  SystemInteractionCode = "search-system"
	HistorySystem SystemInteractionCode = "history-system"
)

func (c SystemInteractionCode) ValueRules() []fhiroas.Rule {
	return []fhiroas.Rule{fhiroas.In(Transaction, Batch, SearchSystem, HistorySystem)}
}

// Expectation is a conformance expectation code (SHALL, SHOULD, MAY, SHOULD-NOT).
type Expectation string

const (
	Shall     Expectation = "SHALL"
	Should    Expectation = "SHOULD"
	May       Expectation = "MAY"
	ShouldNot Expectation = "SHOULD-NOT"
)

func (e Expectation) ValueRules() []fhiroas.Rule {
	return []fhiroas.Rule{fhiroas.In(Shall, Should, May, ShouldNot)}
}

// SearchParamType is the type of a search parameter.
type SearchParamType string

const (
	NumberParam    SearchParamType = "number"
	DateParam      SearchParamType = "date"
	StringParam    SearchParamType = "string"
	TokenParam     SearchParamType = "token"
	ReferenceParam SearchParamType = "reference"
	CompositeParam SearchParamType = "composite"
	QuantityParam  SearchParamType = "quantity"
	URIParam       SearchParamType = "uri"
	SpecialParam   SearchParamType = "special"
)

func (t SearchParamType) ValueRules() []fhiroas.Rule {
	return []fhiroas.Rule{fhiroas.In(NumberParam, DateParam, StringParam, TokenParam, ReferenceParam,
		CompositeParam, QuantityParam, URIParam, SpecialParam)}
}
