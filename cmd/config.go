package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/qbar/internal/config"
)

func newConfigCmd() *cobra.Command {
	var (
		defaults bool
		path     bool
	)
	c := &cobra.Command{
		Use:   "config",
		Short: "Print the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if defaults {
				_, err := out.Write(config.DefaultYAML())
				return err
			}
			a := appFrom(cmd)
			if path {
				if a.run.ConfigFile == "" {
					fmt.Fprintln(out, "(built-in defaults)")
					return nil
				}
				fmt.Fprintln(out, a.run.ConfigFile)
				return nil
			}
			b, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = out.Write(b)
			return err
		},
	}
	c.Flags().BoolVar(&defaults, "defaults", false, "print the built-in defaults instead")
	c.Flags().BoolVar(&path, "path", false, "print which config file is in use")
	return c
}
