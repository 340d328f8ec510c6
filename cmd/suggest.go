package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/qbar/internal/input"
	"github.com/oakwood-commons/qbar/internal/vocabulary"
)

func newSuggestCmd() *cobra.Command {
	var fuzzy bool
	c := &cobra.Command{
		Use:   "suggest [text]",
		Short: "Print the completion and the suggestions the bar would offer for text",
		Example: "  qbar suggest pay\n" +
			"  qbar suggest --fuzzy pay:amo",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			text := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if fuzzy {
				return writeEntries(out, a.vocab.Search(text))
			}

			ctrl := input.New(a.vocab)
			ctrl.SetText(text)
			if s := ctrl.Suggestion(); s != "" {
				fmt.Fprintf(out, "completion: %s\n", s)
			}
			rows := ctrl.Suggestions()
			entries := make([]vocabulary.Entry, len(rows))
			for i, r := range rows {
				entries[i] = r.Entry
			}
			return writeEntries(out, entries)
		},
	}
	c.Flags().BoolVar(&fuzzy, "fuzzy", false, "rank every selector by fuzzy match instead of prefix visibility")
	return c
}

func writeEntries(w io.Writer, entries []vocabulary.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		example := ""
		if e.Example != "" {
			example = "Ex. " + e.Selector + " " + e.Example
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Selector, e.DisplayName, example)
	}
	return tw.Flush()
}
