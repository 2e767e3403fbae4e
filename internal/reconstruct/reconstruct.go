package reconstruct

import (
	"context"

	"github.com/pkg/errors"

	"github.com/backmassage/pal2nal/internal/fasta"
	"github.com/backmassage/pal2nal/internal/gencode"
	"github.com/backmassage/pal2nal/internal/pairing"
)

// Reconstructor produces the codon alignment for one file pair. name
// identifies the pair in errors and temp files (usually the output path).
type Reconstructor interface {
	Reconstruct(ctx context.Context, name string, table *gencode.Table, entries []pairing.Entry) ([]fasta.Record, error)
}

// Kind names a reconstructor implementation.
type Kind string

const (
	KindBuiltin Kind = "builtin"
	KindCommand Kind = "command"
)

// New returns the reconstructor for kind. template is only used by
// KindCommand.
func New(kind Kind, strict bool, template string) (Reconstructor, error) {
	switch kind {
	case "", KindBuiltin:
		return Backtranslator{Strict: strict}, nil
	case KindCommand:
		c, err := NewCommand(template)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, errors.Errorf("unknown reconstructor %q (use builtin|command)", kind)
	}
}
