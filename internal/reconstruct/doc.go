// Package reconstruct turns a correspondence table into a codon alignment.
//
// A [Reconstructor] receives the selected genetic code table and the
// ordered amino-acid/nucleotide entries of one file pair and returns the
// nucleotide alignment records. Two implementations are provided:
//
//   - [Backtranslator] threads the nucleotide sequence through the protein
//     alignment in-process, emitting "---" for every gap column.
//   - [Command] hands the pair to an external program (for example
//     pal2nal.pl) and parses its FASTA output.
//
// Both are pure functions of their inputs and safe for concurrent use.
package reconstruct
