package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

func newUsersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and maintain the user directory",
		Long: `Inspect and maintain the user directory.

Examples:
  portalctl users list                 # Every record
  portalctl users list --live          # Registered identities only
  portalctl users purge-demo --email <email> --password <password>`,
	}

	var mockOnly, liveOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List directory records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mockOnly && liveOnly {
				return fmt.Errorf("--mock and --live are mutually exclusive")
			}
			return c.runUsersList(cmd, mockOnly, liveOnly)
		},
	}
	list.Flags().BoolVar(&mockOnly, "mock", false, "Only demo identities")
	list.Flags().BoolVar(&liveOnly, "live", false, "Only registered identities")

	var email, password string
	purge := &cobra.Command{
		Use:   "purge-demo",
		Short: "Remove every demo identity from the directory",
		Long: `Remove every demo identity (isMock) from the directory.

The purge runs as a live administrator: the given credentials must resolve
to a System Admin (Live) account, which holds canAccessSystemConfig.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runPurgeDemo(cmd, email, password)
		},
	}
	purge.Flags().StringVar(&email, "email", "", "Administrator email")
	purge.Flags().StringVar(&password, "password", "", "Administrator password")
	_ = purge.MarkFlagRequired("email")
	_ = purge.MarkFlagRequired("password")

	cmd.AddCommand(list, purge)
	return cmd
}

func (c *cli) runUsersList(cmd *cobra.Command, mockOnly, liveOnly bool) error {
	core, closeFn, err := c.open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	recs := core.Directory.Match(func(u domain.UserRecord) bool {
		switch {
		case mockOnly:
			return u.IsMock
		case liveOnly:
			return !u.IsMock
		}
		return true
	})

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, dimStyle.Render("no records"))
		return nil
	}
	for _, u := range recs {
		kind := infoStyle.Render("live")
		if u.IsMock {
			kind = dimStyle.Render("demo")
		}
		contact := u.Email
		if contact == "" {
			contact = u.WalletAddress
		}
		fmt.Fprintf(out, "%s  %-28s %-20s %s %s\n",
			kind, boldStyle.Render(u.Name), u.Role.Label(), dimStyle.Render(u.ID), contact)
	}
	return nil
}

func (c *cli) runPurgeDemo(cmd *cobra.Command, email, password string) error {
	ctx := cmd.Context()
	core, closeFn, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	p := c.portal(core, cmd, "")
	if _, err := p.Login(ctx, ports.LoginRequest{
		Role:     domain.RoleAdmin,
		Method:   domain.MethodWeb2,
		Mode:     domain.ModeLive,
		Email:    email,
		Password: password,
	}); err != nil {
		return err
	}
	defer p.Logout(ctx)

	if _, err := p.PurgeDemoUsers(ctx); err != nil {
		return err
	}
	return nil
}
