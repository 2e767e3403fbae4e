package reconstruct

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"github.com/pkg/errors"

	"github.com/backmassage/pal2nal/internal/fasta"
	"github.com/backmassage/pal2nal/internal/gencode"
	"github.com/backmassage/pal2nal/internal/pairing"
)

// Template placeholders substituted per argument.
const (
	PlaceholderAA    = "{aa}"
	PlaceholderNT    = "{nt}"
	PlaceholderTable = "{table}"
	PlaceholderName  = "{name}"
)

// Command runs an external reconstructor once per pair. The template is
// split with shell-style quoting, so a quoted program path may contain
// spaces; placeholders may appear anywhere inside an argument.
// The program must print the codon alignment as FASTA on stdout.
type Command struct {
	template []string
	// Stderr, when set, receives a live copy of the program's stderr.
	Stderr io.Writer
}

// NewCommand parses template, e.g. "pal2nal.pl {aa} {nt} -codontable {table} -output fasta".
func NewCommand(template string) (*Command, error) {
	fields, err := shlex.Split(template)
	if err != nil {
		return nil, errors.Wrapf(err, "parse reconstructor command %q", template)
	}
	if len(fields) == 0 {
		return nil, errors.New("reconstructor command is empty")
	}
	if !strings.Contains(template, PlaceholderAA) && !strings.Contains(template, PlaceholderNT) {
		return nil, errors.Errorf("reconstructor command %q must reference %s or %s", template, PlaceholderAA, PlaceholderNT)
	}
	return &Command{template: fields}, nil
}

// Program returns the executable named by the template.
func (c *Command) Program() string { return c.template[0] }

// Build returns the argument slice with placeholders substituted.
func (c *Command) Build(aaPath, ntPath, tableID, name string) []string {
	r := strings.NewReplacer(
		PlaceholderAA, aaPath,
		PlaceholderNT, ntPath,
		PlaceholderTable, tableID,
		PlaceholderName, name,
	)
	args := make([]string, len(c.template))
	for i, f := range c.template {
		args[i] = r.Replace(f)
	}
	return args
}

// Reconstruct implements [Reconstructor]. The reordered records are written
// to a private temp directory so the program sees both files in the same
// order.
func (c *Command) Reconstruct(ctx context.Context, name string, table *gencode.Table, entries []pairing.Entry) ([]fasta.Record, error) {
	dir, err := os.MkdirTemp("", "pal2nal-*")
	if err != nil {
		return nil, errors.Wrap(err, "create work directory")
	}
	defer os.RemoveAll(dir)

	pt := pairing.Table{Entries: entries}
	aaPath := filepath.Join(dir, "aa.fa")
	ntPath := filepath.Join(dir, "nt.fa")
	if err := writeRecords(aaPath, pt.AA()); err != nil {
		return nil, err
	}
	if err := writeRecords(ntPath, pt.NT()); err != nil {
		return nil, err
	}

	args := c.Build(aaPath, ntPath, table.ID(), name)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		ce := &CommandError{Args: args, ExitCode: -1, Stderr: stderr.String(), Cause: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ce.ExitCode = exitErr.ExitCode()
		}
		return nil, ce
	}

	recs, err := fasta.ParseBytes(stdout.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s output", args[0])
	}
	if len(recs) == 0 && len(entries) > 0 {
		return nil, &CommandError{Args: args, Stderr: stderr.String(), Cause: errors.New("no FASTA records on stdout")}
	}
	return recs, nil
}

func writeRecords(path string, recs []fasta.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create work file")
	}
	if err := fasta.Format(f, recs); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}
