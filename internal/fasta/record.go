package fasta

// Record is one FASTA entry. Header is the text after the '>' marker with
// surrounding whitespace removed; Seq is the concatenation of the trimmed
// sequence lines that follow it.
type Record struct {
	Header string
	Seq    string
}
