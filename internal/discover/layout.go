package discover

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/pal2nal/internal/config"
)

// Layout describes the directory structure of a batch root. Relative
// directories are resolved under Root.
type Layout struct {
	Root      string
	AADir     string
	NTDir     string
	OutDir    string
	AASuffix  string
	NTSuffix  string
	OutSuffix string
}

// DefaultLayout returns the standard mafft/nt/nt_aligned layout under root.
func DefaultLayout(root string) Layout {
	return Layout{
		Root:      root,
		AADir:     "mafft",
		NTDir:     "nt",
		OutDir:    "nt_aligned",
		AASuffix:  "aa.fa",
		NTSuffix:  "nt.fa",
		OutSuffix: ".nt.fa",
	}
}

// FromConfig returns the layout configured in cfg.
func FromConfig(cfg *config.Config) Layout {
	return Layout{
		Root:      cfg.InputDir,
		AADir:     cfg.AADir,
		NTDir:     cfg.NTDir,
		OutDir:    cfg.OutputDir,
		AASuffix:  cfg.AASuffix,
		NTSuffix:  cfg.NTSuffix,
		OutSuffix: cfg.OutSuffix,
	}
}

func (l Layout) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(l.Root, dir)
}

// AAPath returns the amino-acid alignment directory.
func (l Layout) AAPath() string { return l.resolve(l.AADir) }

// NTPath returns the nucleotide source directory.
func (l Layout) NTPath() string { return l.resolve(l.NTDir) }

// OutPath returns the output directory.
func (l Layout) OutPath() string { return l.resolve(l.OutDir) }

// OutputPath returns the output file for stem.
func (l Layout) OutputPath(stem string) string {
	return filepath.Join(l.OutPath(), stem+l.OutSuffix)
}

// Stem strips the final extension from name, then one more:
// "geneA.aa.fa" → "geneA". A leading dot does not start an extension.
func Stem(name string) string {
	return stripExt(stripExt(filepath.Base(name)))
}

func stripExt(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
