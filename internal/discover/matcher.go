package discover

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/pkg/errors"
)

// Match is one amino-acid file paired with its nucleotide file.
type Match struct {
	AA   string
	NT   string
	Stem string
}

// Mismatch describes a listing entry that did not form a pair. It is not an
// error: such entries are skipped.
type Mismatch struct {
	AA     string
	NT     string
	Reason string
}

// Matcher decides which entries of the sorted AA and NT listings form pairs.
type Matcher interface {
	Name() string
	Match(aa, nt []string, skip func(Mismatch)) iter.Seq[Match]
}

// Positional zips the sorted listings by index and keeps index i only when
// both entries share a stem. Entries beyond the shorter listing are
// skipped.
type Positional struct{}

func (Positional) Name() string { return "positional" }

func (Positional) Match(aa, nt []string, skip func(Mismatch)) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		n := min(len(aa), len(nt))
		for i := range n {
			as, ns := Stem(aa[i]), Stem(nt[i])
			if as != ns {
				notify(skip, Mismatch{AA: aa[i], NT: nt[i], Reason: fmt.Sprintf("stem %q != %q", as, ns)})
				continue
			}
			if !yield(Match{AA: aa[i], NT: nt[i], Stem: as}) {
				return
			}
		}
		for _, p := range aa[n:] {
			notify(skip, Mismatch{AA: p, Reason: "no nucleotide file at this position"})
		}
		for _, p := range nt[n:] {
			notify(skip, Mismatch{NT: p, Reason: "no amino-acid file at this position"})
		}
	}
}

// ByStem joins the listings on stem, independent of position. Pairs come
// out in stem order. A stem with several nucleotide files is ambiguous and
// skipped.
type ByStem struct{}

func (ByStem) Name() string { return "stem" }

func (ByStem) Match(aa, nt []string, skip func(Mismatch)) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		ntByStem := make(map[string][]string, len(nt))
		for _, p := range nt {
			s := Stem(p)
			ntByStem[s] = append(ntByStem[s], p)
		}

		type entry struct{ stem, path string }
		entries := make([]entry, len(aa))
		for i, p := range aa {
			entries[i] = entry{Stem(p), p}
		}
		slices.SortStableFunc(entries, func(a, b entry) int {
			return cmp.Compare(a.stem, b.stem)
		})

		used := make(map[string]bool, len(ntByStem))
		for _, e := range entries {
			cands := ntByStem[e.stem]
			if len(cands) > 0 {
				used[e.stem] = true
			}
			if len(cands) != 1 {
				reason := fmt.Sprintf("no nucleotide file with stem %q", e.stem)
				if len(cands) > 1 {
					reason = fmt.Sprintf("%d nucleotide files with stem %q", len(cands), e.stem)
				}
				notify(skip, Mismatch{AA: e.path, Reason: reason})
				continue
			}
			if !yield(Match{AA: e.path, NT: cands[0], Stem: e.stem}) {
				return
			}
		}
		for _, p := range nt {
			if !used[Stem(p)] {
				notify(skip, Mismatch{NT: p, Reason: "no amino-acid file with this stem"})
			}
		}
	}
}

// ParseMatcher returns the matcher named by s ("positional" or "stem").
func ParseMatcher(s string) (Matcher, error) {
	switch s {
	case "", "positional":
		return Positional{}, nil
	case "stem":
		return ByStem{}, nil
	default:
		return nil, errors.Errorf("unknown match policy %q (use positional|stem)", s)
	}
}

func notify(skip func(Mismatch), m Mismatch) {
	if skip != nil {
		skip(m)
	}
}
