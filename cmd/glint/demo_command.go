package main

import (
	"os"

	"github.com/spf13/cobra"

	"glint/internal/corpus"
)

func newDemoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "demo [examples.json]",
		Short: "Run the NER demonstration over an example set",
		Long: `Runs the pretrained model over each example text, splitting long
texts into overlapping chunks, and prints the text with entities
highlighted plus a summary table. Without an argument the embedded
example set is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				examples []corpus.Example
				err      error
			)
			if len(args) == 1 {
				examples, err = corpus.Load(args[0])
			} else {
				examples, err = corpus.Embedded()
			}
			if err != nil {
				return err
			}
			return ctx.runExamples(os.Stdout, examples, true)
		},
	}
}
