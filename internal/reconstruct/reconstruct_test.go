package reconstruct

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/pal2nal/internal/fasta"
	"github.com/backmassage/pal2nal/internal/gencode"
	"github.com/backmassage/pal2nal/internal/pairing"
)

func standardTable(t *testing.T) *gencode.Table {
	t.Helper()
	set, err := gencode.Load(context.Background(), gencode.EmbeddedSource, gencode.Options{})
	require.NoError(t, err)
	tbl, err := set.Select("1")
	require.NoError(t, err)
	return tbl
}

func entry(h, aa, nt string) pairing.Entry {
	return pairing.Entry{AA: fasta.Record{Header: h, Seq: aa}, NT: fasta.Record{Header: h, Seq: nt}}
}

func TestBacktranslator(t *testing.T) {
	tbl := standardTable(t)
	tests := []struct {
		name   string
		strict bool
		e      pairing.Entry
		want   string
	}{
		{"plain", true, entry("s", "MK", "ATGAAA"), "ATGAAA"},
		{"gap columns", true, entry("s", "M-K.", "ATGAAA"), "ATG---AAA---"},
		{"gapped nucleotides", true, entry("s", "MK", "AT-GAA.A"), "ATGAAA"},
		{"terminal stop dropped", true, entry("s", "MK", "ATGAAATAA"), "ATGAAA"},
		{"stop in alignment", true, entry("s", "MK*", "ATGAAATGA"), "ATGAAATGA"},
		{"lowercase and U", true, entry("s", "mk", "augaaa"), "augaaa"},
		{"ambiguous base accepted", true, entry("s", "MK", "ATGAAN"), "ATGAAN"},
		{"wildcard residue", true, entry("s", "XK", "CCCAAA"), "CCCAAA"},
		{"lenient mismatch", false, entry("s", "MK", "ATGCCC"), "ATGCCC"},
		{"lenient trailing", false, entry("s", "M", "ATGCC"), "ATG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Backtranslator{Strict: tt.strict}.Reconstruct(context.Background(), "out", tbl, []pairing.Entry{tt.e})
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, fasta.Record{Header: "s", Seq: tt.want}, recs[0])
		})
	}
}

func TestBacktranslator_Mismatch(t *testing.T) {
	_, err := Backtranslator{Strict: true}.Reconstruct(context.Background(), "out", standardTable(t),
		[]pairing.Entry{entry("s1", "M-K", "ATGCCC")})
	var me *MismatchError
	require.True(t, errors.As(err, &me), "got %v", err)
	assert.Equal(t, "s1", me.Header)
	assert.Equal(t, 3, me.Column)
	assert.Equal(t, byte('K'), me.Residue)
	assert.Equal(t, "CCC", me.Codon)
}

func TestBacktranslator_TooShort(t *testing.T) {
	for _, strict := range []bool{true, false} {
		_, err := Backtranslator{Strict: strict}.Reconstruct(context.Background(), "out", standardTable(t),
			[]pairing.Entry{entry("s1", "MKK", "ATGAAA")})
		var le *LengthError
		require.True(t, errors.As(err, &le), "strict=%v: got %v", strict, err)
		assert.Equal(t, 9, le.Need)
		assert.Equal(t, 6, le.Have)
	}
}

func TestBacktranslator_StrictTrailing(t *testing.T) {
	_, err := Backtranslator{Strict: true}.Reconstruct(context.Background(), "out", standardTable(t),
		[]pairing.Entry{entry("s1", "M", "ATGAAA")})
	var le *LengthError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Error(), "left over")
}

func TestBacktranslator_PreservesEntryOrder(t *testing.T) {
	recs, err := Backtranslator{}.Reconstruct(context.Background(), "out", standardTable(t), []pairing.Entry{
		entry("b", "M", "ATG"),
		entry("a", "K", "AAA"),
	})
	require.NoError(t, err)
	assert.Equal(t, "b", recs[0].Header)
	assert.Equal(t, "a", recs[1].Header)
}

func TestNew(t *testing.T) {
	r, err := New(KindBuiltin, true, "")
	require.NoError(t, err)
	assert.Equal(t, Backtranslator{Strict: true}, r)

	_, err = New(KindCommand, false, "")
	assert.Error(t, err)

	_, err = New("perl", false, "")
	assert.Error(t, err)
}

func TestCommand_Build(t *testing.T) {
	c, err := NewCommand("pal2nal.pl {aa} {nt} -codontable {table} -output fasta --tag={name}")
	require.NoError(t, err)
	assert.Equal(t, "pal2nal.pl", c.Program())
	assert.Equal(t,
		[]string{"pal2nal.pl", "/w/aa.fa", "/w/nt.fa", "-codontable", "11", "-output", "fasta", "--tag=g1"},
		c.Build("/w/aa.fa", "/w/nt.fa", "11", "g1"))

	c, err = NewCommand(`"/opt/my tools/pal2nal.pl" {aa} {nt} -output fasta`)
	require.NoError(t, err)
	assert.Equal(t, "/opt/my tools/pal2nal.pl", c.Program())
	assert.Equal(t,
		[]string{"/opt/my tools/pal2nal.pl", "/w/aa.fa", "/w/nt.fa", "-output", "fasta"},
		c.Build("/w/aa.fa", "/w/nt.fa", "11", "g1"))

	c, err = NewCommand(`/opt/my\ tools/run '{aa}' --label 'gene {name}'`)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"/opt/my tools/run", "/w/a b.fa", "--label", "gene g1"},
		c.Build("/w/a b.fa", "/w/nt.fa", "11", "g1"))
}

func TestNewCommand_RequiresInput(t *testing.T) {
	_, err := NewCommand("echo hello")
	assert.Error(t, err)
}

func TestNewCommand_UnterminatedQuote(t *testing.T) {
	_, err := NewCommand(`"/opt/my tools/pal2nal.pl {aa} {nt}`)
	assert.Error(t, err)
}

func TestCommand_StderrCopied(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	c, err := NewCommand(`sh -c 'echo codon warning >&2; cat "$0"' {nt}`)
	require.NoError(t, err)
	var live bytes.Buffer
	c.Stderr = &live

	recs, err := c.Reconstruct(context.Background(), "g1", standardTable(t), []pairing.Entry{entry("s1", "M", "ATG")})
	require.NoError(t, err)
	assert.Equal(t, []fasta.Record{{Header: "s1", Seq: "ATG"}}, recs)
	assert.Equal(t, "codon warning\n", live.String())
}

func TestCommand_ReconstructReadsStdout(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	c, err := NewCommand("cat {nt}")
	require.NoError(t, err)

	recs, err := c.Reconstruct(context.Background(), "g1", standardTable(t), []pairing.Entry{
		entry("s2", "M", "ATG"),
		entry("s1", "K", "AAA"),
	})
	require.NoError(t, err)
	assert.Equal(t, []fasta.Record{{Header: "s2", Seq: "ATG"}, {Header: "s1", Seq: "AAA"}}, recs)
}

func TestCommand_NonZeroExit(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	c, err := NewCommand("false {aa} {nt}")
	require.NoError(t, err)

	_, err = c.Reconstruct(context.Background(), "g1", standardTable(t), []pairing.Entry{entry("s", "M", "ATG")})
	var ce *CommandError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, 1, ce.ExitCode)
}

func TestCommandError_Hint(t *testing.T) {
	ce := &CommandError{
		Args:   []string{"pal2nal.pl"},
		Stderr: "\n#---  ERROR: inconsistency between the following pep and nuc seqs  ---#\n",
		Cause:  errors.New("exit status 1"),
	}
	assert.Equal(t, "protein and nucleotide sequences disagree", ce.Hint())
	assert.Contains(t, ce.Error(), "inconsistency")
}
