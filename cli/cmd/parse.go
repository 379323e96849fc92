package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/refill/data"
	"github.com/ardnew/refill/ref"
)

// Parse reports the descriptor encoded by a candidate string.
type Parse struct {
	Candidate string `arg:"" help:"Compact descriptor, or a YAML/JSON mapping in structured form."`

	Compact bool        `help:"Print the canonical compact form."                    short:"c"`
	Output  data.Format `default:"json"                                              help:"Output format of the structured form." short:"o"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) error {
	d := ref.Parse(p.Candidate)

	if d.IsZero() {
		// Not compact; try a structured mapping.
		tree, err := data.Decode(ctx, strings.NewReader(p.Candidate), data.FormatYAML)
		if err == nil {
			d = ref.Parse(tree)
		}
	}

	if d.IsZero() {
		return ErrNotDescriptor.With(slog.String("candidate", p.Candidate))
	}

	w := stdoutFrom(ctx)

	if p.Compact {
		s, err := d.Compact()
		if err != nil {
			return data.ErrEncode.Wrap(err).With(slog.String("candidate", p.Candidate))
		}

		_, err = fmt.Fprintln(w, s)

		return err
	}

	return data.Encode(ctx, w, d.Structured(), p.Output, 0)
}
