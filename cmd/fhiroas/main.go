// Command fhiroas compiles a FHIR CapabilityStatement into an OpenAPI
// document, written to a file or served with Swagger UI.
package main

import (
	"os"

	"github.com/Gobd/fhiroas/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := config.New()
	var file string

	root := &cobra.Command{
		Use:          "fhiroas",
		Short:        "Compile FHIR CapabilityStatements into OpenAPI documents",
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&file, "config", "", "config file (json, yaml or toml)")
	flags.StringP(config.KeyCapability, "c", "", "CapabilityStatement JSON file")
	flags.StringSliceP(config.KeyDefinitions, "d", nil, "FHIR definition files or package directories")
	flags.Bool(config.KeyEnhance, false, "add HL7 documentation links, expectations and operation tables")
	flags.Int("max-chain-depth", 0, "maximum number of links followed in a chained search parameter")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	bind(v, flags.Lookup(config.KeyCapability), config.KeyCapability)
	bind(v, flags.Lookup(config.KeyDefinitions), config.KeyDefinitions)
	bind(v, flags.Lookup(config.KeyEnhance), config.KeyEnhance)
	bind(v, flags.Lookup("max-chain-depth"), config.KeyMaxChainDepth)
	bind(v, flags.Lookup("log-level"), config.KeyLogLevel)
	bind(v, flags.Lookup("log-format"), config.KeyLogFormat)

	load := func() (*config.Config, error) {
		cfg, err := config.Load(v, file)
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}
	root.AddCommand(generateCmd(v, load))
	root.AddCommand(serveCmd(v, load))
	return root
}

func bind(v *viper.Viper, f *pflag.Flag, key string) {
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
