// Package pairing puts the records of an amino-acid alignment and its
// nucleotide source into correspondence by header.
//
// The two files need not list records in the same order. The result always
// follows the amino-acid file's order, since that is the alignment being
// converted.
package pairing

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/backmassage/pal2nal/internal/fasta"
)

// Entry is one amino-acid record with the nucleotide record of the same
// header.
type Entry struct {
	AA fasta.Record
	NT fasta.Record
}

// Table is the ordered correspondence for one file pair.
type Table struct {
	Entries []Entry
	// UnusedNT counts nucleotide records no amino-acid record refers to.
	UnusedNT int
}

// AA returns the amino-acid records in order.
func (t Table) AA() []fasta.Record {
	out := make([]fasta.Record, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = e.AA
	}
	return out
}

// NT returns the nucleotide records, reordered to follow the amino-acid file.
func (t Table) NT() []fasta.Record {
	out := make([]fasta.Record, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = e.NT
	}
	return out
}

// CorrespondenceError reports an amino-acid header with no nucleotide record.
type CorrespondenceError struct {
	Header string
	AAPath string
	NTPath string
}

func (e *CorrespondenceError) Error() string {
	return fmt.Sprintf("header %q from %s has no record in %s", e.Header, e.AAPath, e.NTPath)
}

// DuplicateHeaderError reports a header that occurs more than once in one
// file, which would make the correspondence ambiguous.
type DuplicateHeaderError struct {
	Header string
	Path   string
}

func (e *DuplicateHeaderError) Error() string {
	return fmt.Sprintf("duplicate header %q in %s", e.Header, e.Path)
}

// Read builds the correspondence table for aaPath and ntPath. The
// nucleotide file is indexed in one pass; the amino-acid file is then
// streamed and each header resolved against the index.
func Read(ctx context.Context, aaPath, ntPath string) (Table, error) {
	index := make(map[string]fasta.Record)
	err := fasta.ScanFile(ctx, ntPath, func(r fasta.Record) error {
		if _, dup := index[r.Header]; dup {
			return &DuplicateHeaderError{Header: r.Header, Path: ntPath}
		}
		index[r.Header] = r
		return nil
	})
	if err != nil {
		return Table{}, errors.Wrap(err, "index nucleotide records")
	}

	var (
		entries []Entry
		seen    = make(map[string]struct{})
	)
	err = fasta.ScanFile(ctx, aaPath, func(r fasta.Record) error {
		if _, dup := seen[r.Header]; dup {
			return &DuplicateHeaderError{Header: r.Header, Path: aaPath}
		}
		seen[r.Header] = struct{}{}
		nt, ok := index[r.Header]
		if !ok {
			return &CorrespondenceError{Header: r.Header, AAPath: aaPath, NTPath: ntPath}
		}
		entries = append(entries, Entry{AA: r, NT: nt})
		return nil
	})
	if err != nil {
		return Table{}, errors.Wrap(err, "resolve amino-acid records")
	}

	return Table{Entries: entries, UnusedNT: len(index) - len(entries)}, nil
}
