package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/pal2nal/internal/check"
	"github.com/backmassage/pal2nal/internal/discover"
	"github.com/backmassage/pal2nal/internal/pipeline"
)

func (a *app) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Report record counts and header correspondence for every pair",
		Long: `Read every discovered pair and print its record counts and whether every
protein header has a nucleotide record. Nothing is reconstructed or written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer log.Close()

			if err := check.CheckDeps(cfg); err != nil {
				log.Error("%v", err)
				return exitCode(1)
			}
			matcher, err := discover.ParseMatcher(string(cfg.Match))
			if err != nil {
				log.Error("%v", err)
				return exitCode(1)
			}
			res, err := discover.Discover(discover.FromConfig(cfg), matcher, discover.Options{ReadOnly: true})
			if err != nil {
				log.Error("File discovery failed: %v", err)
				return exitCode(1)
			}

			ctx, stop := notifyContext(cmd.Context(), log)
			defer stop()

			sum := pipeline.Analyze(ctx, cfg, pipeline.Deps{Log: log, Discovery: res}, cmd.OutOrStdout())
			switch {
			case sum.Interrupted:
				return exitCode(130)
			case sum.Errors > 0:
				return exitCode(1)
			}
			return nil
		},
	}
}
