// Package gencode loads genetic code tables: for each table id, the set of
// codons that encode each amino-acid symbol.
//
// Tables come from the embedded NCBI set, a local JSON file, or a remote
// URL (downloaded once into a cache directory). A loaded [Set] is immutable
// and safe for concurrent use; callers pass the selected [*Table] to
// workers explicitly.
//
// Codons are upper cased and U is read as T. Every table also defines:
//
//   - B, the union of the D and N codons
//   - Z, the union of the E and Q codons
//   - J, the union of the I and L codons
//   - X, all 64 codons
//   - *, the stop codons, present even when the source lists none
//
// Values the source gives for B, Z, J or X are ignored and replaced by the
// derived sets above.
package gencode
