package pairing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/pal2nal/internal/fasta"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRead_ReordersNTToAAOrder(t *testing.T) {
	dir := t.TempDir()
	aa := writeFile(t, dir, "g.aa.fa", ">s1\nMK\n>s2\nM-\n")
	nt := writeFile(t, dir, "g.nt.fa", ">s2\nATG\n>s1\nATGAAA\n")

	tbl, err := Read(context.Background(), aa, nt)
	require.NoError(t, err)

	require.Len(t, tbl.Entries, 2)
	assert.Equal(t, []fasta.Record{{Header: "s1", Seq: "MK"}, {Header: "s2", Seq: "M-"}}, tbl.AA())
	assert.Equal(t, []fasta.Record{{Header: "s1", Seq: "ATGAAA"}, {Header: "s2", Seq: "ATG"}}, tbl.NT())
	assert.Zero(t, tbl.UnusedNT)
}

func TestRead_ExtraNTIgnored(t *testing.T) {
	dir := t.TempDir()
	aa := writeFile(t, dir, "g.aa.fa", ">s1\nM\n")
	nt := writeFile(t, dir, "g.nt.fa", ">s0\nCCC\n>s1\nATG\n>s9\nGGG\n")

	tbl, err := Read(context.Background(), aa, nt)
	require.NoError(t, err)
	assert.Len(t, tbl.Entries, 1)
	assert.Equal(t, 2, tbl.UnusedNT)
}

func TestRead_MissingHeader(t *testing.T) {
	dir := t.TempDir()
	aa := writeFile(t, dir, "g.aa.fa", ">s1\nM\n>s3\nK\n")
	nt := writeFile(t, dir, "g.nt.fa", ">s1\nATG\n>s2\nAAA\n")

	_, err := Read(context.Background(), aa, nt)
	var ce *CorrespondenceError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "s3", ce.Header)
	assert.Equal(t, aa, ce.AAPath)
	assert.Equal(t, nt, ce.NTPath)
}

func TestRead_DuplicateHeaders(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name, aa, nt string
		wantPath     string
	}{
		{"nt", ">s1\nM\n", ">s1\nATG\n>s1\nATG\n", "g.nt.fa"},
		{"aa", ">s1\nM\n>s1\nM\n", ">s1\nATG\n", "g.aa.fa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := filepath.Join(dir, tt.name)
			require.NoError(t, os.MkdirAll(sub, 0o755))
			aa := writeFile(t, sub, "g.aa.fa", tt.aa)
			nt := writeFile(t, sub, "g.nt.fa", tt.nt)

			_, err := Read(context.Background(), aa, nt)
			var de *DuplicateHeaderError
			require.True(t, errors.As(err, &de), "got %v", err)
			assert.Equal(t, "s1", de.Header)
			assert.Equal(t, filepath.Join(sub, tt.wantPath), de.Path)
		})
	}
}

func TestRead_Deterministic(t *testing.T) {
	dir := t.TempDir()
	aa := writeFile(t, dir, "g.aa.fa", ">c\nM\n>a\nM\n>b\nM\n")
	nt := writeFile(t, dir, "g.nt.fa", ">b\nATG\n>a\nATG\n>c\nATG\n")

	first, err := Read(context.Background(), aa, nt)
	require.NoError(t, err)
	for range 5 {
		again, err := Read(context.Background(), aa, nt)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRead_MissingFile(t *testing.T) {
	dir := t.TempDir()
	aa := writeFile(t, dir, "g.aa.fa", ">s1\nM\n")
	_, err := Read(context.Background(), aa, filepath.Join(dir, "absent.nt.fa"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
