package reconstruct

import (
	"fmt"
	"regexp"
	"strings"
)

// MismatchError reports a codon that does not encode the aligned residue
// under the selected table.
type MismatchError struct {
	Header  string
	Column  int // 1-based alignment column
	Residue byte
	Codon   string
	TableID string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: column %d: codon %s does not encode %c under table %s",
		e.Header, e.Column, e.Codon, e.Residue, e.TableID)
}

// LengthError reports a nucleotide sequence whose length does not fit the
// protein alignment.
type LengthError struct {
	Header string
	Need   int
	Have   int
}

func (e *LengthError) Error() string {
	if e.Have < e.Need {
		return fmt.Sprintf("%s: nucleotide sequence too short (%d nt, alignment needs %d)", e.Header, e.Have, e.Need)
	}
	return fmt.Sprintf("%s: %d nucleotides left over after the alignment (%d nt, alignment uses %d)",
		e.Header, e.Have-e.Need, e.Have, e.Need)
}

// CommandError reports a failed external reconstructor run.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Args[0], e.Cause)
	if hint := e.Hint(); hint != "" {
		msg += " (" + hint + ")"
	}
	if tail := stderrTail(e.Stderr, 5); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// Hint classifies the captured stderr.
func (e *CommandError) Hint() string {
	switch {
	case reInconsistent.MatchString(e.Stderr):
		return "protein and nucleotide sequences disagree"
	case reCountMismatch.MatchString(e.Stderr):
		return "record counts differ"
	case reMissingInput.MatchString(e.Stderr):
		return "input file not readable"
	}
	return ""
}

var (
	reInconsistent = regexp.MustCompile(
		`(?i)inconsistency between the following pep and nuc seqs|` +
			`frame ?shift|does not (encode|correspond)`)

	reCountMismatch = regexp.MustCompile(
		`(?i)number of (input )?seqs differ|different number of sequences`)

	reMissingInput = regexp.MustCompile(
		`(?i)no such file|cannot open|can't open|permission denied`)
)

// stderrTail returns the last n non-empty lines of s joined by " | ".
func stderrTail(s string, n int) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
