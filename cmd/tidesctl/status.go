package main

import (
	"errors"
	"fmt"

	"github.com/matheus3301/tides/internal/control"
	"github.com/matheus3301/tides/internal/lock"
	"github.com/matheus3301/tides/internal/organization"
	"github.com/matheus3301/tides/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session's organization and whether a client is connected",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	name, err := sessionName()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	report := map[string]any{
		"session":      name,
		"running":      false,
		"signedIn":     false,
		"organization": "",
	}
	pid, held := lock.Holder(session.Dir(name))

	g, gctx := errgroup.WithContext(ctx)
	var probe *control.Report
	if held {
		g.Go(func() error {
			r, err := control.Probe(gctx, session.SocketPath(name))
			if err != nil {
				return fmt.Errorf("client pid %d is not answering: %w", pid, err)
			}
			probe = r
			return nil
		})
	}
	var org *organization.Organization
	var signedIn bool
	g.Go(func() error {
		c, err := openCore(gctx)
		if err != nil {
			return err
		}
		defer c.close()
		org, err = c.orgs.Current()
		if err != nil && !errors.Is(err, organization.ErrNotConfigured) {
			return err
		}
		signedIn = c.client.Authenticated()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	report["signedIn"] = signedIn
	if org != nil {
		report["organization"] = org.Name
		report["shortcode"] = org.Shortcode
		report["url"] = org.URL
	}
	if probe != nil {
		report["running"] = true
		report["pid"] = pid
		report["state"] = probe.State
		report["health"] = probe.Health.GetStatus().String()
	}

	if statusJSON {
		st, err := structpb.NewStruct(report)
		if err != nil {
			return err
		}
		out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "session:      %s\n", name)
	if org != nil {
		fmt.Fprintf(w, "organization: %s (%s)\n", org.Name, org.Shortcode)
		fmt.Fprintf(w, "server:       %s\n", org.URL)
	} else {
		fmt.Fprintln(w, "organization: not configured")
	}
	fmt.Fprintf(w, "signed in:    %t\n", signedIn)
	if probe != nil {
		fmt.Fprintf(w, "client:       pid %d, %s (%s)\n", pid, probe.State, probe.Health.GetStatus())
	} else {
		fmt.Fprintln(w, "client:       not running")
	}
	return nil
}
