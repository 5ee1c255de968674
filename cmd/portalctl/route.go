package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalakrut/portal/internal/core/domain"
)

func newRouteCmd(c *cli) *cobra.Command {
	f := &loginFlags{}
	cmd := &cobra.Command{
		Use:   "route <view>",
		Short: "Show what a role would see when navigating to a view",
		Long: `Log in with the given flags, navigate to <view> and print the view the
router settles on, with the flags that were missing when access is denied.

Example:
  portalctl route treasury --role reveller --mode demo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoute(cmd, f, domain.View(args[0]))
		},
	}
	f.bind(cmd)
	return cmd
}

func (c *cli) runRoute(cmd *cobra.Command, f *loginFlags, view domain.View) error {
	p, closeFn, err := c.login(cmd, f)
	if err != nil {
		return err
	}
	defer closeFn()

	route := p.Navigate(view)

	out := cmd.OutOrStdout()
	prefix := successPrefix
	switch route.Outcome {
	case domain.RouteDenied, domain.RouteBlocked:
		prefix = errorPrefix
	case domain.RouteFallback:
		prefix = warningPrefix
	}
	fmt.Fprintf(out, "%s %s %s %s %s\n", prefix, route.Requested, arrowPrefix, boldStyle.Render(string(route.View)),
		dimStyle.Render("("+string(route.Outcome)+")"))
	if len(route.Missing) > 0 {
		fmt.Fprintf(out, "  missing: %s\n", strings.Join(route.Missing, " or "))
	}
	return nil
}
