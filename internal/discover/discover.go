package discover

import (
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Pair is one unit of batch work.
type Pair struct {
	AA   string
	NT   string
	Out  string
	Stem string
}

// Options tunes discovery.
type Options struct {
	// MergeInto, when set, sends every pair to OutDir/MergeInto. Collision
	// resolution is disabled in that case.
	MergeInto string
	// ReadOnly skips creating the output directory.
	ReadOnly bool
	// OnSkip is called for listing entries that did not form a pair.
	OnSkip func(Mismatch)
	// OnCollision is called when a pair's output path was already claimed
	// and a dup variant was assigned.
	OnCollision func(p Pair, requested string)
}

// Result holds the sorted listings of one batch root.
type Result struct {
	Layout  Layout
	AAFiles []string
	NTFiles []string

	matcher Matcher
	opts    Options
}

// Discover lists both input directories and creates the output directory.
func Discover(layout Layout, m Matcher, opts Options) (*Result, error) {
	if m == nil {
		m = Positional{}
	}
	aa, err := List(layout.AAPath(), layout.AASuffix)
	if err != nil {
		return nil, errors.Wrap(err, "list amino-acid alignments")
	}
	nt, err := List(layout.NTPath(), layout.NTSuffix)
	if err != nil {
		return nil, errors.Wrap(err, "list nucleotide sources")
	}
	if !opts.ReadOnly {
		if err := os.MkdirAll(layout.OutPath(), 0o755); err != nil {
			return nil, errors.Wrap(err, "create output directory")
		}
	}
	return &Result{Layout: layout, AAFiles: aa, NTFiles: nt, matcher: m, opts: opts}, nil
}

// Pairs yields the matched pairs with their output paths. The sequence is
// lazy and may be ranged over more than once; each pass resolves output
// paths afresh.
func (r *Result) Pairs() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		resolver := NewCollisionResolver(r.Layout.OutSuffix)
		for m := range r.matcher.Match(r.AAFiles, r.NTFiles, r.opts.OnSkip) {
			p := Pair{AA: m.AA, NT: m.NT, Stem: m.Stem}
			if r.opts.MergeInto != "" {
				p.Out = filepath.Join(r.Layout.OutPath(), r.opts.MergeInto)
			} else {
				requested := r.Layout.OutputPath(m.Stem)
				p.Out = resolver.Resolve(m.AA, requested)
				if p.Out != requested && r.opts.OnCollision != nil {
					r.opts.OnCollision(p, requested)
				}
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Count returns the number of pairs without resolving output paths.
func (r *Result) Count() int {
	n := 0
	for range r.matcher.Match(r.AAFiles, r.NTFiles, nil) {
		n++
	}
	return n
}

// List returns the regular files (symlinks followed) in dir whose names end
// with suffix, sorted lexicographically.
func List(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}
