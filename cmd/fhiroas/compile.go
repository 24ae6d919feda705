package main

import (
	"fmt"
	"os"

	"github.com/Gobd/fhiroas/conformance"
	"github.com/Gobd/fhiroas/internal/config"
	"github.com/Gobd/fhiroas/openapi"
	"github.com/Gobd/fhiroas/registry"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"
)

// compile loads the configured definitions and compiles the configured
// CapabilityStatement against them.
func compile(cfg *config.Config, log zerolog.Logger) (*openapi3.T, error) {
	store := registry.NewStore()
	for _, path := range cfg.Definitions {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		var stats registry.LoadStats
		if info.IsDir() {
			stats, err = store.LoadDir(path)
		} else {
			stats, err = store.LoadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("load definitions: %w", err)
		}
		log.Info().
			Str("path", path).
			Int("searchParameters", stats.SearchParameters).
			Int("operationDefinitions", stats.OperationDefinitions).
			Int("examples", stats.Examples).
			Msg("definitions loaded")
	}

	desc, err := conformance.LoadFile(cfg.Capability)
	if err != nil {
		return nil, fmt.Errorf("load capability statement: %w", err)
	}

	opts := cfg.CompilerOptions()
	opts.Logger = log
	doc, err := openapi.NewStoreCompiler(store, opts).Compile(desc)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", cfg.Capability, err)
	}
	log.Info().Str("title", doc.Info.Title).Int("paths", doc.Paths.Len()).Msg("document compiled")
	return doc, nil
}
