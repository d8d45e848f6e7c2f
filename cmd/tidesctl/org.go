package main

import (
	"errors"
	"fmt"

	"github.com/matheus3301/tides/internal/lock"
	"github.com/matheus3301/tides/internal/organization"
	"github.com/matheus3301/tides/internal/session"
	"github.com/spf13/cobra"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Show or change the session's organization",
}

var orgShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the selected organization",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		c, err := openCore(ctx)
		if err != nil {
			return err
		}
		defer c.close()

		org, err := c.orgs.Current()
		if errors.Is(err, organization.ErrNotConfigured) {
			fmt.Fprintln(cmd.OutOrStdout(), "no organization selected")
			return nil
		}
		if err != nil {
			return err
		}
		printOrganization(cmd, org)
		return nil
	},
}

var orgSetCmd = &cobra.Command{
	Use:   "set <code>",
	Short: "Select the organization with the given code and sign out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refuseWhileOpen(); err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		c, err := openCore(ctx)
		if err != nil {
			return err
		}
		defer c.close()

		org, err := c.orgs.Submit(ctx, args[0])
		if err != nil {
			return err
		}
		if err := c.orgs.SignOut(); err != nil {
			return err
		}
		printOrganization(cmd, org)
		return nil
	},
}

var orgResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the organization and the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := refuseWhileOpen(); err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		c, err := openCore(ctx)
		if err != nil {
			return err
		}
		defer c.close()
		if err := c.orgs.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "organization cleared")
		return nil
	},
}

func init() {
	orgCmd.AddCommand(orgShowCmd, orgSetCmd, orgResetCmd)
	rootCmd.AddCommand(orgCmd)
}

// refuseWhileOpen keeps settings changes away from a running client.
func refuseWhileOpen() error {
	name, err := sessionName()
	if err != nil {
		return err
	}
	if pid, held := lock.Holder(session.Dir(name)); held {
		return fmt.Errorf("session %q is open in pid %d: use :server in the client", name, pid)
	}
	return nil
}

func printOrganization(cmd *cobra.Command, org *organization.Organization) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "name:      %s\n", org.Name)
	fmt.Fprintf(w, "shortcode: %s\n", org.Shortcode)
	fmt.Fprintf(w, "api:       %s\n", org.URL)
	fmt.Fprintf(w, "socket:    %s\n", org.WSURL)
}
