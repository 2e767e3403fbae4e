// Package fasta reads and writes FASTA text.
//
// Parsing is streaming: [Scan] and [ScanFile] call back once per record in
// file order, so callers decide what to keep in memory. Gzip input is
// detected by its magic bytes.
//
// Writing goes through [Writer], which never leaves a half-written target:
// records are written to a temporary file in the destination directory and
// renamed into place. In [Append] mode the existing file is merged with the
// new records and exact duplicates are dropped, so repeated runs converge on
// the same content.
package fasta
