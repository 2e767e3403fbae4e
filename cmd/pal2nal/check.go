package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/pal2nal/internal/check"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the batch layout, table source and reconstructor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer log.Close()

			if check.RunCheck(cmd.Context(), cfg, log) > 0 {
				return exitCode(1)
			}
			return nil
		},
	}
}
