package openapi

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Gobd/fhiroas/conformance"
	"github.com/Gobd/fhiroas/registry"
	"github.com/Gobd/fhiroas/transform"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofhir/fhirpath"
	"github.com/rs/zerolog"
)

// DefaultMaxChainDepth bounds the number of links followed in one chain.
const DefaultMaxChainDepth = 8

// ResolvedParam is a search parameter resolved against a resource type.
// The chain tail, if any, is resolved against the target resource type.
type ResolvedParam struct {
	Name        string
	Code        string
	Type        conformance.SearchParamType
	Expression  string
	Description string
	// Target is the resource type the chain continues on.
	Target string
	// Schema is the schema of the last resolved link.
	Schema *openapi3.Schema
	Docs   Fragments
	Tail   *ResolvedParam
	Found  bool
}

// ChainResolver resolves declared search parameters, following chains
// (subject.name) and modifiers (subject:Patient, subject:identifier).
// Registry entries are cloned before they are rewritten.
type ChainResolver struct {
	Params   registry.SearchParameters
	MaxDepth int
	Log      zerolog.Logger

	exprErrs sync.Map // expression -> error, nil when it compiles
}

// NewChainResolver returns a resolver over params.
func NewChainResolver(params registry.SearchParameters, maxDepth int, log zerolog.Logger) *ChainResolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxChainDepth
	}
	return &ChainResolver{Params: params, MaxDepth: maxDepth, Log: log}
}

// Resolve resolves decl declared on resourceType.
func (c *ChainResolver) Resolve(resourceType string, decl conformance.SearchParam) *ResolvedParam {
	return c.resolve(resourceType, decl, 0)
}

func (c *ChainResolver) resolve(resourceType string, decl conformance.SearchParam, depth int) *ResolvedParam {
	links := strings.Split(decl.Name, ".")
	base, modifier, _ := strings.Cut(links[0], ":")
	r := &ResolvedParam{Name: decl.Name, Code: links[0], Schema: fallbackSchema()}

	if depth >= c.MaxDepth {
		r.Docs = r.Docs.Note(fmt.Sprintf("**Caution:** search parameter chain is too deep, documentation stops after %d links at `%s`.", c.MaxDepth, decl.Name))
		c.Log.Warn().Str("resource", resourceType).Str("param", decl.Name).Msg("search parameter chain too deep")
		return r
	}

	sp, ok := c.lookup(resourceType, base, decl.Definition)
	if !ok {
		r.Docs = r.Docs.Note("**Caution:** This does not appear to be a valid search parameter. Please check HL7 FHIR conformance.")
		c.Log.Warn().Str("resource", resourceType).Str("param", base).Msg("search parameter not found")
		return r
	}
	sp = sp.Clone()
	r.Found = true

	sp.Expression = narrowExpression(sp.Expression, resourceType)
	sp.Description = narrowDescription(transform.UnescapeHTML(sp.Description), resourceType)

	switch {
	case modifier == "identifier":
		sp.Code += ":" + modifier
		sp.Type = conformance.TokenParam
		sp.Expression = identifierExpression(sp.Expression)
	case modifier != "":
		sp.Expression += ".where(resolve() is " + modifier + ")"
		sp.Target = []string{modifier}
	}

	r.Code = sp.Code
	r.Type = sp.Type
	r.Expression = sp.Expression
	r.Description = sp.Description

	schema, note := ParamSchema(sp.Type)
	r.Schema = schema

	typ := string(sp.Type)
	var expectation string
	if decl.Expectation != "" {
		expectation = "**" + string(decl.Expectation) + "**"
	}
	r.Docs = r.Docs.Row(
		expectation,
		fmt.Sprintf("[%s](https://www.hl7.org/fhir/R4/%s.html#search)", links[0], resourceType),
		fmt.Sprintf("[%s](https://www.hl7.org/fhir/R4/search.html#%s)", typ, typ),
		transform.EscapePipe(sp.Expression),
		transform.EscapeMarkdown(sp.Description, true),
	)
	if note != "" {
		r.Docs = r.Docs.Note("`" + links[0] + "` " + note)
	}
	if err := c.checkExpression(sp.Expression); err != nil {
		r.Docs = r.Docs.Note(fmt.Sprintf("**Caution:** expression of `%s` is not valid FHIRPath: %s", links[0], transform.EscapeMarkdown(err.Error(), true)))
	}

	if len(links) == 1 {
		return r
	}
	r.Docs = r.Docs.Note("Chained search parameter. Please see [chained](http://www.hl7.org/fhir/search.html#chaining)")
	if sp.Type != conformance.ReferenceParam {
		r.Docs = r.Docs.Note("Caution: This does not appear to be a valid search parameter. Chained search parameters **MUST** always be on reference types. Please check HL7 FHIR conformance.")
		return r
	}

	r.Target = chainTarget(sp.Target)
	if modifier != "" {
		r.Target = modifier
	}
	r.Tail = c.resolve(r.Target, conformance.SearchParam{Name: strings.Join(links[1:], ".")}, depth+1)
	r.Docs = r.Docs.Concat(r.Tail.Docs)
	r.Schema = r.Tail.Schema
	return r
}

func (c *ChainResolver) lookup(resourceType, code, definition string) (*registry.SearchParameter, bool) {
	if definition != "" {
		return c.Params.SearchParameter(definition)
	}
	return c.Params.SearchParameterFor(resourceType, code)
}

func (c *ChainResolver) checkExpression(expr string) error {
	if expr == "" {
		return nil
	}
	if v, ok := c.exprErrs.Load(expr); ok {
		err, _ := v.(error)
		return err
	}
	_, err := fhirpath.Compile(expr)
	c.exprErrs.Store(expr, err)
	return err
}

// chainTarget picks the resource type an unmodified chain continues on.
// Group is never chosen; with no other target the chain continues on
// Resource.
func chainTarget(targets []string) string {
	target := "Resource"
	for _, t := range targets {
		if t != "Group" {
			target = t
		}
	}
	return target
}

// narrowExpression picks the branch of a union expression that applies to
// resourceType.
func narrowExpression(expr, resourceType string) string {
	if !strings.Contains(expr, "|") {
		return expr
	}
	for _, branch := range strings.Split(expr, "|") {
		branch = strings.TrimSpace(branch)
		if startsWithType(strings.TrimLeft(branch, "("), resourceType) {
			return branch
		}
	}
	return expr
}

// narrowDescription picks the bullet of a multi resource description that
// applies to resourceType.
func narrowDescription(desc, resourceType string) string {
	if !strings.Contains(desc, "*") {
		return desc
	}
	for _, bullet := range strings.Split(desc, "*") {
		if startsWithType(strings.TrimLeft(bullet, " ["), resourceType) {
			return strings.TrimSpace(bullet)
		}
	}
	return desc
}

// startsWithType reports whether s begins with the whole name resourceType,
// so Medication does not match MedicationRequest.
func startsWithType(s, resourceType string) bool {
	rest, ok := strings.CutPrefix(s, resourceType)
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	c := rest[0]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
}

// identifierExpression rewrites a reference expression to search on the
// identifier of the reference instead of the resolved resource.
func identifierExpression(expr string) string {
	parts := slices.DeleteFunc(strings.Split(expr, "."), func(p string) bool {
		return strings.HasPrefix(p, "where(resolve()")
	})
	if len(parts) == 0 || parts[len(parts)-1] != "identifier" {
		parts = append(parts, "identifier")
	}
	return strings.Join(parts, ".")
}
