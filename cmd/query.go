package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/qbar/internal/formatter"
	"github.com/oakwood-commons/qbar/internal/limiter"
	"github.com/oakwood-commons/qbar/internal/query"
)

func newQueryCmd() *cobra.Command {
	var (
		output string
		width  int
		window limiter.Config
	)
	c := &cobra.Command{
		Use:   "query <text...>",
		Short: "Parse a query, fetch the matching records and print them",
		Example: "  qbar query 'order:amount >3'\n" +
			"  qbar query payment:currency =usd -o json\n" +
			"  qbar query 'payment:amount 0.5..1.5' --tail 2",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			format, err := formatter.ParseFormat(output)
			if err != nil {
				return err
			}
			if err := window.Validate(); err != nil {
				return err
			}

			text := strings.Join(args, " ")
			q, err := query.Parse(text)
			if err != nil {
				return err
			}
			if q == nil {
				return fmt.Errorf("%q has no value to filter on; add one such as >3, =EUR or 1..5", text)
			}

			src, err := buildSource(a.cfg, a.log)
			if err != nil {
				return err
			}
			records, err := src.Search(cmd.Context(), q.Params())
			if err != nil {
				return fmt.Errorf("search %s: %w", q.Selector(), err)
			}
			a.log.V(1).Info("query finished", "selector", q.Selector(), "matched", len(records))
			records = limiter.Apply(window, records)

			if format == formatter.OutputTable && len(records) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no matching records")
				return nil
			}
			tty := stdoutIsTerminal()
			if width == 0 && tty {
				width = formatter.TerminalWidth()
			}
			return formatter.Render(cmd.OutOrStdout(), records, formatter.Options{
				Format:  format,
				NoColor: a.cfg.UI.NoColor || !tty,
				Width:   width,
			})
		},
	}
	f := c.Flags()
	f.StringVarP(&output, "output", "o", "table", "output format: table|json|yaml")
	f.IntVar(&width, "width", 0, "table width in columns (default: terminal width)")
	f.IntVar(&window.Limit, "limit", 0, "print at most N records")
	f.IntVar(&window.Offset, "offset", 0, "skip the first N records")
	f.IntVar(&window.Tail, "tail", 0, "print the last N records (excludes --limit, ignores --offset)")
	return c
}
