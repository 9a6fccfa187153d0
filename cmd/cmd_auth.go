package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// passwordEnv supplies the password when --password is omitted.
const passwordEnv = "ONBOARD_PASSWORD"

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session",
		Long: `Exchange email and password for a token pair, store it in the configured
session backend and load the profile. A failed login leaves no session.

The password may be passed through ` + passwordEnv + ` instead of --password.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if email == "" || password == "" {
				return fmt.Errorf("%w: --email and --password (or %s) are required", errUsage, passwordEnv)
			}
			if err := c.portal.Auth.Login(cmd.Context(), email, password); err != nil {
				return shown(err, c.portal.Auth.State().Error)
			}
			u := c.portal.Auth.State().User
			fmt.Fprintf(c.stdout, "Logged in as %s <%s>\n", u.FullName, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (or "+passwordEnv+")")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.portal.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in candidate",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.portal.Auth.Restore(cmd.Context()); err != nil {
				return shown(err, c.portal.Auth.State().Error)
			}
			u := c.portal.Auth.State().User
			org := "-"
			if u.OrgID != nil {
				org = strconv.FormatInt(*u.OrgID, 10)
			}
			t := newTable(c.stdout, "ID", "NAME", "EMAIL", "ROLE", "ORG")
			t.row(strconv.FormatInt(u.ID, 10), u.FullName, u.Email, u.Role, org)
			return t.flush()
		},
	}
}
