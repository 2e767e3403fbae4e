package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PAL2NAL_PROCESSES=8.
const EnvPrefix = "PAL2NAL"

// DefaultConfigName is looked up in the working directory when no config
// file is given.
const DefaultConfigName = "pal2nal"

// Load layers configuration sources. Precedence (highest to lowest):
//  1. Flags set on the command line
//  2. PAL2NAL_* environment variables
//  3. The config file (configFile, or ./pal2nal.yaml if present)
//  4. Built-in defaults
//
// fs may be nil. The result is not validated.
func Load(fs *pflag.FlagSet, configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "reading config")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, errors.Wrapf(err, "binding --%s", name)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshaling config")
	}
	if fs != nil {
		applyColorFlags(fs, &cfg)
	}
	cfg.InputDir = NormalizeDirArg(cfg.InputDir)
	return cfg, nil
}

// setDefaults registers every key so environment overrides are seen by
// Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("input", d.InputDir)
	v.SetDefault("aa_dir", d.AADir)
	v.SetDefault("nt_dir", d.NTDir)
	v.SetDefault("out_dir", d.OutputDir)
	v.SetDefault("aa_suffix", d.AASuffix)
	v.SetDefault("nt_suffix", d.NTSuffix)
	v.SetDefault("out_suffix", d.OutSuffix)

	v.SetDefault("table", d.TableID)
	v.SetDefault("table_source", d.TableSource)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("fetch_timeout", d.FetchTimeout.String())

	v.SetDefault("processes", d.Workers)
	v.SetDefault("match", string(d.Match))
	v.SetDefault("write_mode", string(d.WriteMode))
	v.SetDefault("merge_into", d.MergeInto)
	v.SetDefault("skip_existing", d.SkipExisting)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("reconstructor", string(d.Reconstructor))
	v.SetDefault("command", d.Command)
	v.SetDefault("report", d.ReportFile)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("watch_debounce", d.WatchDebounce.String())

	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("color", string(d.ColorMode))
	v.SetDefault("log", d.LogFile)
}
