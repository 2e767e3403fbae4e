package reconstruct

import (
	"context"
	"strings"

	"github.com/backmassage/pal2nal/internal/fasta"
	"github.com/backmassage/pal2nal/internal/gencode"
	"github.com/backmassage/pal2nal/internal/pairing"
)

// Backtranslator reconstructs codon alignments in-process. Each residue
// column consumes the next nucleotide triplet; each gap column becomes
// "---". Nucleotide case is preserved.
//
// With Strict set, every ACGT triplet must encode its residue under the
// table and leftover nucleotides (other than a single terminal stop codon)
// are an error. Without it, only running out of nucleotides fails.
type Backtranslator struct {
	Strict bool
}

// Reconstruct implements [Reconstructor].
func (b Backtranslator) Reconstruct(ctx context.Context, _ string, table *gencode.Table, entries []pairing.Entry) ([]fasta.Record, error) {
	out := make([]fasta.Record, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seq, err := b.thread(table, e)
		if err != nil {
			return nil, err
		}
		out = append(out, fasta.Record{Header: e.AA.Header, Seq: seq})
	}
	return out, nil
}

func (b Backtranslator) thread(table *gencode.Table, e pairing.Entry) (string, error) {
	nt := ungap(e.NT.Seq)
	aa := e.AA.Seq

	var sb strings.Builder
	sb.Grow(len(aa) * 3)
	pos := 0
	for i := 0; i < len(aa); i++ {
		c := aa[i]
		if isGap(c) {
			sb.WriteString("---")
			continue
		}
		if pos+3 > len(nt) {
			return "", &LengthError{Header: e.AA.Header, Need: residues(aa) * 3, Have: len(nt)}
		}
		codon := nt[pos : pos+3]
		pos += 3
		if b.Strict {
			norm := normalize(codon)
			if isACGT(norm) && !table.Encodes(c, norm) {
				return "", &MismatchError{Header: e.AA.Header, Column: i + 1, Residue: c, Codon: codon, TableID: table.ID()}
			}
		}
		sb.WriteString(codon)
	}

	rest := nt[pos:]
	if b.Strict && rest != "" && !(len(rest) == 3 && table.Encodes(gencode.Stop, normalize(rest))) {
		return "", &LengthError{Header: e.AA.Header, Need: pos, Have: len(nt)}
	}
	return sb.String(), nil
}

func isGap(c byte) bool { return c == '-' || c == '.' }

// ungap drops alignment gaps and whitespace from a nucleotide sequence.
func ungap(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '.', ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}

func residues(aa string) int {
	n := 0
	for i := 0; i < len(aa); i++ {
		if !isGap(aa[i]) {
			n++
		}
	}
	return n
}

func normalize(codon string) string {
	return strings.ReplaceAll(strings.ToUpper(codon), "U", "T")
}

func isACGT(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}
