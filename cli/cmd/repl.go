package cmd

import (
	"context"

	"github.com/ardnew/refill/cli/cmd/repl"
	"github.com/ardnew/refill/data"
	"github.com/ardnew/refill/log"
	"github.com/ardnew/refill/ref"
)

// Repl resolves descriptors interactively.
type Repl struct {
	DataFlags `embed:""`

	Output      data.Format `default:"yaml" help:"Result format (yaml, json, dump)." short:"o"`
	Suggestions int         `default:"3"    help:"Alternative names listed for an unresolved path."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	tree, err := r.load(ctx)
	if err != nil {
		return err
	}

	logger := log.Default()

	return repl.Run(ctx, repl.Config{
		Data:     tree,
		CacheDir: kongVar(ctx, CacheIdentifier, ""),
		Format:   r.Output,
		Logger:   logger,
		Options: []ref.Option{
			ref.WithSuggestions(r.Suggestions),
			ref.WithLogger(logger),
		},
	})
}
