// Package discover finds amino-acid/nucleotide alignment file pairs under a
// batch root and computes where each pair's output goes.
//
// The default layout is:
//
//	<root>/mafft/<stem>.aa.fa       protein alignments
//	<root>/nt/<stem>.nt.fa          nucleotide sources
//	<root>/nt_aligned/<stem>.nt.fa  codon alignments (created)
//
// A file's stem is its name with the last two extensions removed. Listings
// are sorted byte-wise; a [Matcher] decides which entries form a pair.
// Pairs are produced lazily and every pair gets a distinct output path
// unless output is explicitly merged into one file.
package discover
