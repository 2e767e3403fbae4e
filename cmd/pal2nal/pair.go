package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/backmassage/pal2nal/internal/display"
	"github.com/backmassage/pal2nal/internal/fasta"
	"github.com/backmassage/pal2nal/internal/fetch"
	"github.com/backmassage/pal2nal/internal/pairing"
	"github.com/backmassage/pal2nal/internal/pipeline"
)

func (a *app) pairCmd() *cobra.Command {
	var aaRef, ntRef, out string

	cmd := &cobra.Command{
		Use:   "pair --aa FILE --nt FILE [--out FILE]",
		Short: "Convert a single alignment pair",
		Long: `Convert one protein alignment and its nucleotide source. Either input may
be an http(s) URL; downloads are cached in --cache-dir and reused.
Without --out (or with --out -) the codon alignment is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer log.Close()
			ctx := cmd.Context()

			table, err := loadTable(ctx, cfg)
			if err != nil {
				log.Error("%v", err)
				return exitCode(1)
			}

			opts := fetch.Options{CacheDir: cfg.CacheDir, Timeout: cfg.FetchTimeout}
			aaPath, err := fetch.Resolve(ctx, aaRef, opts)
			if err != nil {
				log.Error("%v", err)
				return exitCode(1)
			}
			ntPath, err := fetch.Resolve(ctx, ntRef, opts)
			if err != nil {
				log.Error("%v", err)
				return exitCode(1)
			}

			tbl, err := pairing.Read(ctx, aaPath, ntPath)
			if err != nil {
				log.Error("%v", err)
				return exitCode(1)
			}
			rec, err := newReconstructor(cfg, log)
			if err != nil {
				log.Error("%v", err)
				return exitCode(1)
			}
			name := out
			if name == "" || name == "-" {
				name = "stdout"
			}
			records, err := rec.Reconstruct(ctx, name, table, tbl.Entries)
			if err != nil {
				log.Error("%s: %v (aa=%s, nt=%s)", name, err, filepath.Base(aaPath), filepath.Base(ntPath))
				return exitCode(1)
			}

			if out == "" || out == "-" {
				return fasta.Format(cmd.OutOrStdout(), records)
			}
			if cfg.DryRun {
				log.Success("[DRY] Would write %s to %s", display.Plural(len(records), "record"), out)
				return nil
			}
			added, err := fasta.NewWriter(pipeline.WriterMode(cfg.WriteMode)).WriteFile(ctx, out, records)
			if err != nil {
				log.Error("%v", err)
				return exitCode(1)
			}
			log.Success("%s (%s)", out, display.Plural(added, "record"))
			return nil
		},
	}

	cmd.Flags().StringVar(&aaRef, "aa", "", "Protein alignment (path or URL)")
	cmd.Flags().StringVar(&ntRef, "nt", "", "Nucleotide sequences (path or URL)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("aa")
	_ = cmd.MarkFlagRequired("nt")
	return cmd
}
