package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/internal/config"
	"github.com/vango-dev/fiber/internal/errors"
)

func configCmd(dir *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration fiberctl would run with: the values of
fiber.json or fiber.yaml merged over the defaults.

Examples:
  fiberctl config
  fiberctl config --format yaml
  fiberctl config init --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dir)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal(config.ConfigBaseName + "." + format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.PersistentFlags().StringVarP(&format, "format", "f", "json", "Output format (json or yaml)")

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Exists(*dir) {
				return errors.New("F043").
					WithSubject("%s", *dir).
					WithSuggestion("Edit the existing file or remove it before running config init.")
			}
			path := filepath.Join(*dir, config.ConfigBaseName+"."+format)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Created %s", path)
			return nil
		},
	})

	return cmd
}
