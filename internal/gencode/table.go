package gencode

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Symbols with fixed meaning. Ambiguity codes are always derived from their
// members, never taken from the source.
const (
	Stop     byte = '*'
	Wildcard byte = 'X'
)

var ambiguity = map[byte][2]byte{
	'B': {'D', 'N'},
	'Z': {'E', 'Q'},
	'J': {'I', 'L'},
}

var codonRe = regexp.MustCompile(`^[ACGT]{3}$`)

// allCodons lists the 64 codons in lexicographic order.
var allCodons = func() []string {
	const bases = "ACGT"
	out := make([]string, 0, 64)
	for _, a := range bases {
		for _, b := range bases {
			for _, c := range bases {
				out = append(out, string([]rune{a, b, c}))
			}
		}
	}
	return out
}()

// Table maps amino-acid symbols to the codons that encode them.
type Table struct {
	id     string
	codons map[byte][]string
	index  map[byte]map[string]struct{}
}

// NewTable builds a table from raw symbol → codon lists. Codons are upper
// cased with U read as T; B, Z, J, X and * are filled in as described in the
// package documentation.
func NewTable(id string, raw map[string][]string) (*Table, error) {
	codons := make(map[byte][]string, len(raw)+5)
	for sym, list := range raw {
		if len(sym) != 1 {
			return nil, errors.Errorf("table %s: symbol %q must be a single character", id, sym)
		}
		s := upper(sym[0])
		if _, derived := ambiguity[s]; derived || s == Wildcard {
			continue
		}
		for _, c := range list {
			norm := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(c)), "U", "T")
			if !codonRe.MatchString(norm) {
				return nil, errors.Errorf("table %s: symbol %c: invalid codon %q", id, s, c)
			}
			if !slices.Contains(codons[s], norm) {
				codons[s] = append(codons[s], norm)
			}
		}
		if _, ok := codons[s]; !ok {
			codons[s] = []string{}
		}
	}

	for sym, members := range ambiguity {
		codons[sym] = union(codons[members[0]], codons[members[1]])
	}
	codons[Wildcard] = slices.Clone(allCodons)
	if _, ok := codons[Stop]; !ok {
		codons[Stop] = []string{}
	}

	t := &Table{id: id, codons: codons, index: make(map[byte]map[string]struct{}, len(codons))}
	for sym, list := range codons {
		set := make(map[string]struct{}, len(list))
		for _, c := range list {
			set[c] = struct{}{}
		}
		t.index[sym] = set
	}
	return t, nil
}

// ID returns the table identifier.
func (t *Table) ID() string { return t.id }

// Codons returns the codons for sym (case-insensitive), or nil if the table
// does not define sym. The returned slice must not be modified.
func (t *Table) Codons(sym byte) []string {
	return t.codons[upper(sym)]
}

// Encodes reports whether codon (upper case, T not U) encodes sym.
func (t *Table) Encodes(sym byte, codon string) bool {
	set, ok := t.index[upper(sym)]
	if !ok {
		return false
	}
	_, ok = set[codon]
	return ok
}

// Symbols returns the defined symbols in byte order.
func (t *Table) Symbols() []byte {
	out := make([]byte, 0, len(t.codons))
	for s := range t.codons {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Map returns a copy of the table keyed by symbol string, suitable for
// serialisation.
func (t *Table) Map() map[string][]string {
	out := make(map[string][]string, len(t.codons))
	for s, list := range t.codons {
		out[string(s)] = slices.Clone(list)
	}
	return out
}

// Set holds every table of one source, keyed by id.
type Set struct {
	source string
	tables map[string]*Table
}

// Source returns where the set was loaded from.
func (s *Set) Source() string { return s.source }

// Len returns the number of tables.
func (s *Set) Len() int { return len(s.tables) }

// Select returns the table with the given id.
func (s *Set) Select(id string) (*Table, error) {
	t, ok := s.tables[strings.TrimSpace(id)]
	if !ok {
		return nil, &UnknownTableError{ID: id, Available: s.IDs()}
	}
	return t, nil
}

// IDs returns the table ids, numeric ids first in numeric order, then any
// others lexicographically.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aErr := strconv.Atoi(ids[i])
		b, bErr := strconv.Atoi(ids[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
