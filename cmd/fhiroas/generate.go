package main

import (
	"os"

	"github.com/Gobd/fhiroas/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func generateCmd(v *viper.Viper, load func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the OpenAPI document to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			doc, err := compile(cfg, log)
			if err != nil {
				return err
			}
			b, err := encode(doc, cfg.Format)
			if err != nil {
				return err
			}
			if cfg.Output == "" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			if err := os.WriteFile(cfg.Output, b, 0o644); err != nil {
				return err
			}
			log.Info().Str("output", cfg.Output).Str("format", cfg.Format).Msg("document written")
			return nil
		},
	}
	cmd.Flags().StringP(config.KeyOutput, "o", "", "output file, stdout when empty")
	cmd.Flags().StringP(config.KeyFormat, "f", "", "output format (json, yaml)")
	bind(v, cmd.Flags().Lookup(config.KeyOutput), config.KeyOutput)
	bind(v, cmd.Flags().Lookup(config.KeyFormat), config.KeyFormat)
	return cmd
}
