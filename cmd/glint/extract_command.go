package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"glint/internal/corpus"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract entities from a single text or stdin",
		Example: `  glint extract "My name is Jane Doe and I work at Acme Corp"
  cat article.txt | glint extract`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 && args[0] != "-" {
				text = args[0]
			} else {
				raw, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(raw)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("no text to process")
			}
			examples := []corpus.Example{{Name: "input", Text: text}}
			return ctx.runExamples(os.Stdout, examples, false)
		},
	}
}
