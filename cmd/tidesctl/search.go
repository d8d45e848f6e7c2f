package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/matheus3301/tides/internal/feed"
	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "List conversations, optionally matching term",
	Args:  cobra.ArbitraryArgs,
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "conversations to fetch (default: page_size from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	c, err := openCore(ctx)
	if err != nil {
		return err
	}
	defer c.close()
	if err := c.signedIn(); err != nil {
		return err
	}

	limit := searchLimit
	if limit <= 0 {
		limit = c.cfg.PageSize
	}
	f := feed.New(c.client, limit, nil, nil)
	if err := f.SearchTerm(ctx, strings.Join(args, " ")); err != nil {
		return err
	}

	snap := f.Snapshot()
	out := cmd.OutOrStdout()
	if snap.Empty() {
		fmt.Fprintln(out, "No contact")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range snap.Entries {
		mark := " "
		if !e.IsRead {
			mark = "●"
		}
		at := ""
		if !e.LastMessageAt.IsZero() {
			at = e.LastMessageAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, e.DisplayName, e.ConversationType, at, oneLine(e.LastMessageBody))
	}
	return w.Flush()
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 60 {
		return string(r[:59]) + "…"
	}
	return s
}
