package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/data/Parent", "/data/Parent"},
		{"single trailing slash", "/data/Parent/", "/data/Parent"},
		{"multiple trailing slashes", "/data/Parent///", "/data/Parent"},
		{"root path", "/", "/"},
		{"relative path", "Parent", "Parent"},
		{"relative with slash", "Parent/", "Parent"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDirArg(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeDirArg(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.InputDir != "Parent" {
		t.Errorf("default InputDir = %q, want %q", cfg.InputDir, "Parent")
	}
	if cfg.Workers != 4 {
		t.Errorf("default Workers = %d, want 4", cfg.Workers)
	}
	if cfg.TableID != "1" {
		t.Errorf("default TableID = %q, want %q", cfg.TableID, "1")
	}
	if cfg.Match != MatchPositional {
		t.Errorf("default Match = %q, want %q", cfg.Match, MatchPositional)
	}
	if cfg.WriteMode != WriteOverwrite {
		t.Errorf("default WriteMode = %q, want %q", cfg.WriteMode, WriteOverwrite)
	}
	if cfg.DryRun || cfg.SkipExisting || cfg.Strict {
		t.Error("behavior flags should default to off")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidate_Enums(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"stem policy", func(c *Config) { c.Match = MatchStem }, false},
		{"unknown policy", func(c *Config) { c.Match = "fuzzy" }, true},
		{"append mode", func(c *Config) { c.WriteMode = WriteAppend }, false},
		{"empty mode", func(c *Config) { c.WriteMode = "" }, true},
		{"unknown reconstructor", func(c *Config) { c.Reconstructor = "perl" }, true},
		{"command without template", func(c *Config) { c.Reconstructor = ReconstructorCommand }, true},
		{"command with template", func(c *Config) {
			c.Reconstructor = ReconstructorCommand
			c.Command = "pal2nal.pl {aa} {nt}"
		}, false},
		{"bad color", func(c *Config) { c.ColorMode = "rainbow" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_StructTags(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty input", func(c *Config) { c.InputDir = "" }},
		{"empty table", func(c *Config) { c.TableID = "" }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_MergeInto(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeInto = "all.nt.fa"
	assert.Error(t, cfg.Validate(), "merge requires append")

	cfg.WriteMode = WriteAppend
	assert.NoError(t, cfg.Validate())

	cfg.MergeInto = filepath.Join("sub", "all.nt.fa")
	assert.Error(t, cfg.Validate(), "merge target must be a bare name")
}

func TestValidatePaths(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.ValidatePaths("/r/mafft", "/r/nt", "/r/nt_aligned"))
	assert.Error(t, cfg.ValidatePaths("/r/mafft", "/r/nt", "/r/nt"))
	assert.Error(t, cfg.ValidatePaths("/r/mafft", "/r/nt", "/r/mafft"))
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := DefaultConfig()
	RegisterFlags(fs, &cfg)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_DefaultsOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"processes: 2\ntable: \"5\"\nmatch: stem\nfetch_timeout: 5s\ninput: FromFile\n"), 0o644))
	t.Setenv("PAL2NAL_TABLE", "11")
	t.Setenv("PAL2NAL_INPUT", "FromEnv/")

	cfg, err := Load(newFlags(t, "-p", "8", "--write-mode", "append", "--no-color"), file)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers, "flag beats file")
	assert.Equal(t, "11", cfg.TableID, "env beats file")
	assert.Equal(t, "FromEnv", cfg.InputDir, "env beats file, trailing slash trimmed")
	assert.Equal(t, MatchStem, cfg.Match, "file beats default")
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, WriteAppend, cfg.WriteMode)
	assert.Equal(t, ColorNever, cfg.ColorMode)
}

func TestLoad_DiscoversDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pal2nal.yaml"), []byte("strict: true\n"), 0o644))

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnumFlags_RejectUnknown(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := DefaultConfig()
	RegisterFlags(fs, &cfg)
	assert.Error(t, fs.Parse([]string{"--match", "fuzzy"}))
	assert.Error(t, fs.Parse([]string{"--reconstructor", "perl"}))
}
