package config

// This file registers the CLI flags shared by every command and the pflag
// Value adapters for the enum fields. Flag values feed [Load] through viper
// bindings; --color/--no-color are applied afterwards so they override any
// configured color mode.

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"input":          "input",
	"aa-dir":         "aa_dir",
	"nt-dir":         "nt_dir",
	"out-dir":        "out_dir",
	"aa-suffix":      "aa_suffix",
	"nt-suffix":      "nt_suffix",
	"out-suffix":     "out_suffix",
	"table":          "table",
	"table-source":   "table_source",
	"cache-dir":      "cache_dir",
	"fetch-timeout":  "fetch_timeout",
	"processes":      "processes",
	"match":          "match",
	"write-mode":     "write_mode",
	"merge-into":     "merge_into",
	"skip-existing":  "skip_existing",
	"dry-run":        "dry_run",
	"strict":         "strict",
	"reconstructor":  "reconstructor",
	"command":        "command",
	"report":         "report",
	"watch":          "watch",
	"watch-debounce": "watch_debounce",
	"verbose":        "verbose",
	"log":            "log",
}

// RegisterFlags defines all configuration flags on fs with defaults taken
// from cfg.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	defineLayoutFlags(fs, cfg)
	defineTableFlags(fs, cfg)
	defineDispatchFlags(fs, cfg)
	defineDisplayFlags(fs, cfg)
}

// defineLayoutFlags registers -i/--input and the directory/suffix overrides.
func defineLayoutFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.InputDir, "input", "i", cfg.InputDir, "Batch root containing the alignment directories")
	fs.StringVar(&cfg.AADir, "aa-dir", cfg.AADir, "Protein alignment directory (relative to --input)")
	fs.StringVar(&cfg.NTDir, "nt-dir", cfg.NTDir, "Nucleotide source directory (relative to --input)")
	fs.StringVar(&cfg.OutputDir, "out-dir", cfg.OutputDir, "Output directory (relative to --input)")
	fs.StringVar(&cfg.AASuffix, "aa-suffix", cfg.AASuffix, "File name suffix of protein alignments")
	fs.StringVar(&cfg.NTSuffix, "nt-suffix", cfg.NTSuffix, "File name suffix of nucleotide sources")
	fs.StringVar(&cfg.OutSuffix, "out-suffix", cfg.OutSuffix, "File name suffix of outputs")
}

// defineTableFlags registers -t/--table, --table-source, --cache-dir, --fetch-timeout.
func defineTableFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.TableID, "table", "t", cfg.TableID, "Genetic code table id")
	fs.StringVar(&cfg.TableSource, "table-source", cfg.TableSource, "Table source: embedded, a JSON file, or a URL")
	fs.StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "Directory for downloaded sources")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "Time limit per download")
}

// defineDispatchFlags registers -p/--processes and the behavior flags.
func defineDispatchFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Workers, "processes", "p", cfg.Workers, "Concurrent pairs (0 = one per CPU)")
	fs.Var(&matchPolicyValue{&cfg.Match}, "match", "Pairing policy: positional | stem")
	fs.Var(&writeModeValue{&cfg.WriteMode}, "write-mode", "Existing outputs: overwrite | append")
	fs.StringVar(&cfg.MergeInto, "merge-into", cfg.MergeInto, "Merge all pairs into this file under the output directory")
	fs.BoolVar(&cfg.SkipExisting, "skip-existing", cfg.SkipExisting, "Skip pairs whose output already exists")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", cfg.DryRun, "Read and reconstruct, but write nothing")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Require every codon to encode its residue")
	fs.Var(&reconstructorValue{&cfg.Reconstructor}, "reconstructor", "Backend: builtin | command")
	fs.StringVar(&cfg.Command, "command", cfg.Command, "External command template ({aa} {nt} {table} {name})")
	fs.StringVar(&cfg.ReportFile, "report", cfg.ReportFile, "Write a JSON run report to this file")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "Re-run whenever the input directories change")
	fs.DurationVar(&cfg.WatchDebounce, "watch-debounce", cfg.WatchDebounce, "Quiet period before a watch re-run")
}

// defineDisplayFlags registers -v/--verbose, --color, --no-color, -l/--log.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")
	fs.Bool("color", false, "Force colored logs")
	fs.Bool("no-color", false, "Disable colored logs")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "Append logs to file")
}

// applyColorFlags lets --no-color, then --color, override the color mode.
func applyColorFlags(fs *pflag.FlagSet, cfg *Config) {
	if noColor, err := fs.GetBool("no-color"); err == nil && noColor {
		cfg.ColorMode = ColorNever
		return
	}
	if force, err := fs.GetBool("color"); err == nil && force {
		cfg.ColorMode = ColorAlways
	}
}

// pflag.Value adapters so we can use enum types with fs.Var.

type matchPolicyValue struct{ p *MatchPolicy }

func (v *matchPolicyValue) String() string { return string(*v.p) }
func (v *matchPolicyValue) Type() string   { return "policy" }
func (v *matchPolicyValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "positional":
		*v.p = MatchPositional
	case "stem":
		*v.p = MatchStem
	default:
		return errors.Errorf("invalid match policy %q (use 'positional' or 'stem')", s)
	}
	return nil
}

type writeModeValue struct{ p *WriteMode }

func (v *writeModeValue) String() string { return string(*v.p) }
func (v *writeModeValue) Type() string   { return "mode" }
func (v *writeModeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "overwrite":
		*v.p = WriteOverwrite
	case "append":
		*v.p = WriteAppend
	default:
		return errors.Errorf("invalid write mode %q (use 'overwrite' or 'append')", s)
	}
	return nil
}

type reconstructorValue struct{ p *ReconstructorKind }

func (v *reconstructorValue) String() string { return string(*v.p) }
func (v *reconstructorValue) Type() string   { return "kind" }
func (v *reconstructorValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "builtin":
		*v.p = ReconstructorBuiltin
	case "command":
		*v.p = ReconstructorCommand
	default:
		return errors.Errorf("invalid reconstructor %q (use 'builtin' or 'command')", s)
	}
	return nil
}
