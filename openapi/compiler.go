package openapi

import (
	"net/http"

	"github.com/Gobd/fhiroas/conformance"
	"github.com/Gobd/fhiroas/registry"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"
)

// Package is an installed implementation guide package. UK profile links
// are rewritten to resolve against these.
type Package struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Options tune a Compiler.
type Options struct {
	// Enhance adds HL7 documentation links, conformance expectations,
	// combination tables, operation parameter tables and supported messages.
	Enhance bool
	// MaxChainDepth bounds search parameter chains. Zero means
	// DefaultMaxChainDepth.
	MaxChainDepth int
	Packages      []Package
	Logger        zerolog.Logger
}

// Registries are the collaborators a Compiler resolves definitions from.
// Nil members behave as empty registries.
type Registries struct {
	SearchParameters registry.SearchParameters
	Definitions      registry.Definitions
	ValueSets        registry.ValueSets
	Examples         registry.Examples
}

// Compiler turns conformance descriptions into OpenAPI documents. It holds
// no per-document state and is safe for concurrent use.
type Compiler struct {
	reg    Registries
	opts   Options
	log    zerolog.Logger
	chains *ChainResolver
}

// NewCompiler returns a compiler over reg.
func NewCompiler(reg Registries, opts Options) *Compiler {
	empty := registry.NewStore()
	if reg.SearchParameters == nil {
		reg.SearchParameters = empty
	}
	if reg.Definitions == nil {
		reg.Definitions = empty
	}
	if reg.ValueSets == nil {
		reg.ValueSets = empty
	}
	if reg.Examples == nil {
		reg.Examples = empty
	}
	log := opts.Logger.With().Str("component", "compiler").Logger()
	return &Compiler{
		reg:    reg,
		opts:   opts,
		log:    log,
		chains: NewChainResolver(reg.SearchParameters, opts.MaxChainDepth, log),
	}
}

// NewStoreCompiler is NewCompiler with every registry served by store.
func NewStoreCompiler(store *registry.Store, opts Options) *Compiler {
	return NewCompiler(Registries{store, store, store, store}, opts)
}

// build is the state of one Compile call.
type build struct {
	*Compiler
	desc    *conformance.Description
	doc     *openapi3.T
	xml     bool
	schemas firstWins[*openapi3.SchemaRef]
	tags    firstWins[*openapi3.Tag]
}

// Compile builds the OpenAPI document for desc. Problems with individual
// search parameters or operations are written into the document rather
// than returned. Compile fails with [ErrDuplicateOperation] when two
// declarations map to the same path and method.
func (c *Compiler) Compile(desc *conformance.Description) (*openapi3.T, error) {
	b := &build{
		Compiler: c,
		desc:     desc,
		doc:      DocBase(desc.Title, desc.Description, desc.Version),
		xml:      desc.XML(),
	}
	b.info()
	b.tags.Add(SystemTag, &openapi3.Tag{Name: SystemTag, Description: "Server-level operations"})

	if err := b.systemInteractions(); err != nil {
		return nil, err
	}
	for i := range desc.Operations {
		if err := b.operation("", &desc.Operations[i]); err != nil {
			return nil, err
		}
	}
	for i := range desc.Resources {
		if err := b.resource(&desc.Resources[i]); err != nil {
			return nil, err
		}
	}

	b.finish()
	c.log.Debug().Str("title", desc.Title).Int("paths", b.doc.Paths.Len()).Msg("compiled")
	return b.doc, nil
}

func (b *build) resource(res *conformance.Resource) error {
	b.tag(res.Type, res.Profile, res.Documentation)
	for i := range res.Interactions {
		in := &res.Interactions[i]
		path, method, ok := InteractionRoute(in.Code, res.Type)
		if !ok {
			b.log.Warn().Str("resource", res.Type).Str("interaction", string(in.Code)).Msg("not a resource interaction, skipped")
			continue
		}
		op, err := b.interaction(res, in)
		if err != nil {
			return err
		}
		if err := b.add(path, method, op); err != nil {
			return err
		}
	}
	for i := range res.Operations {
		if err := b.operation(res.Type, &res.Operations[i]); err != nil {
			return err
		}
	}
	return nil
}

// add registers op and gives it the standard error responses.
func (b *build) add(path, method string, op *openapi3.Operation) error {
	if op.Responses == nil {
		op.Responses = openapi3.NewResponsesWithCapacity(3)
	}
	b.standardResponses(op.Responses)
	if err := AddPath(b.doc, path, method, op); err != nil {
		return err
	}
	b.log.Debug().Str("method", method).Str("path", path).Msg("operation added")
	return nil
}

func (b *build) systemInteractions() error {
	metadata := &openapi3.Operation{Tags: []string{SystemTag}}
	b.externalDocs(metadata, "capabilities", "capabilities")
	metadata.Responses = b.okResponse(b.content("CapabilityStatement", "", nil))
	if err := b.add("/metadata", http.MethodGet, metadata); err != nil {
		return err
	}

	if b.desc.HasInteraction(conformance.Transaction) || b.desc.HasInteraction(conformance.Batch) {
		op := &openapi3.Operation{Tags: []string{SystemTag}}
		b.externalDocs(op, "transaction", "transaction")
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithContent(b.content("Bundle", "", nil))}
		op.Responses = b.okResponse(b.content("Bundle", "", nil))
		if err := b.add("/", http.MethodPost, op); err != nil {
			return err
		}
	}

	if b.desc.HasInteraction(conformance.SearchSystem) {
		op := &openapi3.Operation{Tags: []string{SystemTag}}
		b.externalDocs(op, "search", "search")
		op.Responses = b.okResponse(b.content("Bundle", "", nil))
		if err := b.add("/", http.MethodGet, op); err != nil {
			return err
		}
	}

	if b.desc.HasInteraction(conformance.HistorySystem) {
		op := &openapi3.Operation{Tags: []string{SystemTag}, Parameters: historyParameters()}
		b.externalDocs(op, "history", "history")
		op.Responses = b.okResponse(b.content("Bundle", "", nil))
		if err := b.add("/_history", http.MethodGet, op); err != nil {
			return err
		}
	}
	return nil
}

// externalDocs links op to a section of the FHIR RESTful API page.
func (b *build) externalDocs(op *openapi3.Operation, name, anchor string) {
	if !b.opts.Enhance {
		return
	}
	op.ExternalDocs = &openapi3.ExternalDocs{
		Description: "FHIR RESTful API - " + name,
		URL:         "https://hl7.org/fhir/R4/http.html#" + anchor,
	}
}
