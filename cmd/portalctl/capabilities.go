package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalakrut/portal/internal/core/domain"
)

func newCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities [role]",
		Short: "Show the capability flags granted to roles",
		Long: `Show which capability flags each role holds.

With no argument every role is listed. A role may be given by key
(dao_governor) or by label ("DAO Governor").`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCapabilities,
	}
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	roles := domain.AllRoles()
	if len(args) == 1 {
		r, ok := domain.ParseRole(args[0])
		if !ok {
			return fmt.Errorf("unknown role %q", args[0])
		}
		roles = []domain.Role{r}
	}

	out := cmd.OutOrStdout()
	for _, r := range roles {
		caps := domain.EvaluateCapabilities(r)
		fmt.Fprintf(out, "%s %s\n", boldStyle.Render(r.Label()), dimStyle.Render("("+string(r)+")"))
		flags := caps.Flags()
		for _, name := range allCapabilityNames() {
			fmt.Fprintf(out, "  %s %s\n", flagMark(flags[name]), name)
		}
	}
	return nil
}

func allCapabilityNames() []string {
	all := domain.CapabilitySet(0)
	for _, r := range domain.AllRoles() {
		all |= domain.EvaluateCapabilities(r)
	}
	return all.Names()
}
