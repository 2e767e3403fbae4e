// Package config holds runtime configuration: defaults, layered loading
// (config file, environment, flags) and validation. Defaults match the
// original pal2nal batch script: input root "Parent", 4 processes, table 1.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// --- Enum types for validated string fields ---

// MatchPolicy selects how AA and NT listings are paired.
type MatchPolicy string

const (
	MatchPositional MatchPolicy = "positional" // Zip sorted listings, keep equal stems (default).
	MatchStem       MatchPolicy = "stem"       // Join listings on stem.
)

// WriteMode controls what happens to an existing output file.
type WriteMode string

const (
	WriteOverwrite WriteMode = "overwrite" // Replace the file (default).
	WriteAppend    WriteMode = "append"    // Merge new records into the file.
)

// ReconstructorKind selects the codon reconstruction backend.
type ReconstructorKind string

const (
	ReconstructorBuiltin ReconstructorKind = "builtin" // In-process back-translation (default).
	ReconstructorCommand ReconstructorKind = "command" // External program per pair.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then overlaid by [Load] before being passed (by pointer) to packages that
// need it. The mapstructure keys are the config-file and PAL2NAL_* env names.
type Config struct {
	// Layout. Relative sub-directories resolve under InputDir.
	InputDir  string `mapstructure:"input" validate:"required"`
	AADir     string `mapstructure:"aa_dir" validate:"required"`
	NTDir     string `mapstructure:"nt_dir" validate:"required"`
	OutputDir string `mapstructure:"out_dir" validate:"required"`
	AASuffix  string `mapstructure:"aa_suffix" validate:"required"`
	NTSuffix  string `mapstructure:"nt_suffix" validate:"required"`
	OutSuffix string `mapstructure:"out_suffix" validate:"required"`

	// Genetic code.
	TableID      string        `mapstructure:"table" validate:"required"`
	TableSource  string        `mapstructure:"table_source"` // "" or "embedded" for the built-in NCBI set.
	CacheDir     string        `mapstructure:"cache_dir"`    // Where remote sources are stored.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`

	// Dispatch.
	Workers       int               `mapstructure:"processes" validate:"gte=0"` // 0 = one per CPU.
	Match         MatchPolicy       `mapstructure:"match"`
	WriteMode     WriteMode         `mapstructure:"write_mode"`
	MergeInto     string            `mapstructure:"merge_into"` // File name under OutputDir; requires append.
	SkipExisting  bool              `mapstructure:"skip_existing"`
	DryRun        bool              `mapstructure:"dry_run"`
	Strict        bool              `mapstructure:"strict"`
	Reconstructor ReconstructorKind `mapstructure:"reconstructor"`
	Command       string            `mapstructure:"command"`
	ReportFile    string            `mapstructure:"report"`

	// Watch mode: re-run whenever the input directories change.
	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce" validate:"gte=0"`

	// Display and logging.
	Verbose   bool      `mapstructure:"verbose"`
	ColorMode ColorMode `mapstructure:"color"`
	LogFile   string    `mapstructure:"log"`
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [Load] applies file, environment and flag overrides.
func DefaultConfig() Config {
	return Config{
		InputDir:      "Parent",
		AADir:         "mafft",
		NTDir:         "nt",
		OutputDir:     "nt_aligned",
		AASuffix:      "aa.fa",
		NTSuffix:      "nt.fa",
		OutSuffix:     ".nt.fa",
		TableID:       "1",
		TableSource:   "embedded",
		CacheDir:      ".",
		FetchTimeout:  30 * time.Second,
		Workers:       4,
		Match:         MatchPositional,
		WriteMode:     WriteOverwrite,
		Reconstructor: ReconstructorBuiltin,
		WatchDebounce: 500 * time.Millisecond,
		ColorMode:     ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

var validate = validator.New()

// Validate checks required fields and ranges, then that enum fields hold
// valid values and that dependent options agree.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.Errorf("invalid %s: failed %q check", fe.Field(), fe.Tag())
		}
		return err
	}

	switch c.Match {
	case MatchPositional, MatchStem:
		// valid
	default:
		return errors.New("invalid match policy (use 'positional' or 'stem')")
	}

	switch c.WriteMode {
	case WriteOverwrite, WriteAppend:
		// valid
	default:
		return errors.New("invalid write mode (use 'overwrite' or 'append')")
	}

	switch c.Reconstructor {
	case ReconstructorBuiltin:
		// valid
	case ReconstructorCommand:
		if strings.TrimSpace(c.Command) == "" {
			return errors.New("reconstructor 'command' needs --command")
		}
	default:
		return errors.New("invalid reconstructor (use 'builtin' or 'command')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.MergeInto != "" {
		if c.WriteMode != WriteAppend {
			return errors.New("--merge-into requires --write-mode append")
		}
		if strings.ContainsRune(c.MergeInto, filepath.Separator) || c.MergeInto == "." || c.MergeInto == ".." {
			return errors.Errorf("--merge-into must be a file name, got %q", c.MergeInto)
		}
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is neither input
// directory. Writing into an input directory would let a later listing pick
// up generated files. All arguments must be absolute, cleaned paths.
func (c *Config) ValidatePaths(aaAbs, ntAbs, outAbs string) error {
	if outAbs == aaAbs || outAbs == ntAbs {
		return errors.New("output directory must differ from the input directories")
	}
	return nil
}
