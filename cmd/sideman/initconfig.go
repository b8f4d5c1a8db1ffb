package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacogrande/sideman-sub001/internal/config"
)

func newInitConfigCommand(a *app) *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.GetDefaultConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveConfigFile(config.DefaultConfig(), path); err != nil {
				return err
			}
			a.log.Info("Wrote default configuration to %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "o", "", "Where to write the config (default ~/.config/sideman/config.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
