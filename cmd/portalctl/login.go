package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
	"github.com/kalakrut/portal/internal/core/service"
)

type loginFlags struct {
	role     string
	method   string
	mode     string
	email    string
	password string
	wallet   string
	register bool
}

func (f *loginFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.role, "role", "", "Role key or label (required)")
	cmd.Flags().StringVar(&f.method, "method", "web2", "Login method: web2 or web3")
	cmd.Flags().StringVar(&f.mode, "mode", "demo", "Login mode: demo or live")
	cmd.Flags().StringVar(&f.email, "email", "", "Email for live web2 logins")
	cmd.Flags().StringVar(&f.password, "password", "", "Password for live web2 logins")
	cmd.Flags().StringVar(&f.wallet, "wallet", "", "Wallet address for web3 logins")
	cmd.Flags().BoolVar(&f.register, "register", false, "Register an unknown live web2 email")
	_ = cmd.MarkFlagRequired("role")
}

func (f *loginFlags) request() (ports.LoginRequest, error) {
	role, ok := domain.ParseRole(f.role)
	if !ok {
		return ports.LoginRequest{}, fmt.Errorf("unknown role %q", f.role)
	}
	return ports.LoginRequest{
		Role:     role,
		Method:   domain.LoginMethod(strings.ToLower(f.method)),
		Mode:     domain.LoginMode(strings.ToLower(f.mode)),
		Email:    f.email,
		Password: f.password,
	}, nil
}

func newLoginCmd(c *cli) *cobra.Command {
	f := &loginFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Resolve a login and show the resulting session",
		Long: `Resolve a login attempt against the directory and print the session
that would be opened, with its capability flags.

Examples:
  portalctl login --role artist --mode demo
  portalctl login --role "DAO Governor" --method web3 --mode live --wallet 0xabc...
  portalctl login --role admin --mode live --email <email> --password <password>`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runLogin(cmd, f)
		},
	}
	f.bind(cmd)
	return cmd
}

func (c *cli) runLogin(cmd *cobra.Command, f *loginFlags) error {
	p, closeFn, err := c.login(cmd, f)
	if err != nil {
		return err
	}
	defer closeFn()

	s, _ := p.Session()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", boldStyle.Render(s.User.Name), dimStyle.Render(s.User.ID))
	fmt.Fprintf(out, "  role     %s\n", s.User.Role.Label())
	fmt.Fprintf(out, "  mode     %s / %s\n", s.Mode, s.Method)
	fmt.Fprintf(out, "  view     %s\n", p.Route().View)
	fmt.Fprintln(out, "  capabilities")
	flags := p.Capabilities().Flags()
	for _, name := range allCapabilityNames() {
		fmt.Fprintf(out, "    %s %s\n", flagMark(flags[name]), name)
	}
	return nil
}

// login opens the core and logs a fresh portal in. The returned func logs out
// and closes the backing store.
func (c *cli) login(cmd *cobra.Command, f *loginFlags) (*service.Portal, func(), error) {
	req, err := f.request()
	if err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()
	core, closeFn, err := c.open(ctx)
	if err != nil {
		return nil, nil, err
	}

	p := c.portal(core, cmd, f.wallet)
	if f.register {
		_, _, err = p.LoginOrRegister(ctx, req)
	} else {
		_, err = p.Login(ctx, req)
	}
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return p, func() {
		p.Logout(ctx)
		closeFn()
	}, nil
}
