package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/backmassage/pal2nal/internal/config"
	"github.com/backmassage/pal2nal/internal/gencode"
)

func (a *app) tablesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tables [id]",
		Short: "List the genetic code tables or dump one",
		Long: `Without an id, list the table ids of the configured --table-source.
With an id, print that table's symbol -> codon sets, including the
computed ambiguity codes (B, Z, J, X).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), a.configFile)
			if err != nil {
				return err
			}
			set, err := gencode.Load(cmd.Context(), cfg.TableSource, gencode.Options{
				CacheDir: cfg.CacheDir,
				Timeout:  cfg.FetchTimeout,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(args) == 0 {
				return printTables(w, set, format)
			}
			t, err := set.Select(args[0])
			if err != nil {
				return err
			}
			return printTable(w, t, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text | json | yaml")
	return cmd
}

func printTables(w io.Writer, set *gencode.Set, format string) error {
	if format == "text" {
		fmt.Fprintf(w, "%d tables from %s\n", set.Len(), set.Source())
		for _, id := range set.IDs() {
			fmt.Fprintln(w, id)
		}
		return nil
	}
	all := make(map[string]map[string][]string, set.Len())
	for _, id := range set.IDs() {
		t, err := set.Select(id)
		if err != nil {
			return err
		}
		all[id] = t.Map()
	}
	return encode(w, format, all)
}

func printTable(w io.Writer, t *gencode.Table, format string) error {
	if format == "text" {
		fmt.Fprintf(w, "Table %s\n", t.ID())
		for _, sym := range t.Symbols() {
			fmt.Fprintf(w, "  %c  %s\n", sym, strings.Join(t.Codons(sym), " "))
		}
		return nil
	}
	return encode(w, format, t.Map())
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.Errorf("unknown format %q (use text|json|yaml)", format)
	}
}
