package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/matheus3301/tides/internal/notify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var notificationsTab string

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List recent notifications",
	Args:  cobra.NoArgs,
	RunE:  runNotifications,
}

func init() {
	notificationsCmd.Flags().StringVar(&notificationsTab, "tab", notify.TabAll, "severity tab: All, Critical, Warning or Info")
	rootCmd.AddCommand(notificationsCmd)
}

func runNotifications(cmd *cobra.Command, _ []string) error {
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

	panel := notify.New(c.client, notify.DefaultLimit, nil, nil)
	if err := panel.SelectTab(notificationsTab); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return panel.Load(gctx) })
	g.Go(func() error {
		_, err := panel.RefreshUnread(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rows := panel.Visible()
	fmt.Fprintf(out, "%d unread, %d shown (%s)\n", panel.Unread(), len(rows), panel.Tab())
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, n := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.Time, n.Severity, n.Header, n.Message)
	}
	return w.Flush()
}
