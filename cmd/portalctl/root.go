package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kalakrut/portal/internal/app"
	"github.com/kalakrut/portal/internal/core/service"
	"github.com/kalakrut/portal/internal/infrastructure/wallet"
	"github.com/kalakrut/portal/internal/pkg/config"
	"github.com/kalakrut/portal/pkg/logger"
)

// cli carries state shared by every subcommand once the root has run.
type cli struct {
	cfg      *config.Config
	logLevel string
	backend  string
	seedFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "portalctl",
		Short: "Inspect and administer the KalaKrut portal directory",
		Long: `portalctl works directly against the configured directory store.

Configuration is read from the environment (and .env when present), exactly
like the server. Flags override the store backend and seed file.

Examples:
  portalctl capabilities                      # Flag matrix for every role
  portalctl users list --mock                 # Demo identities only
  portalctl login --role artist --mode demo   # Try a demo login
  portalctl route treasury --role "DAO Governor" --mode demo`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if c.backend != "" {
				cfg.Store.Backend = c.backend
			}
			if c.seedFile != "" {
				cfg.SeedFile = c.seedFile
			}
			c.cfg = cfg

			logger.Init(logger.Options{Level: c.logLevel, Output: os.Stderr, Pretty: true, Service: "portalctl"})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.backend, "store", "", "Override STORE_BACKEND (memory, file, mongo, redis, postgres)")
	root.PersistentFlags().StringVar(&c.seedFile, "seed", "", "Override SEED_FILE")

	root.AddCommand(
		newCapabilitiesCmd(),
		newUsersCmd(c),
		newLoginCmd(c),
		newRouteCmd(c),
	)
	return root
}

// open connects the store and bootstraps the core. The returned func closes
// the backing connections.
func (c *cli) open(ctx context.Context) (*app.Core, func(), error) {
	backing, err := app.OpenBacking(ctx, c.cfg, logger.Component("store"))
	if err != nil {
		return nil, nil, err
	}
	core, err := app.BuildCore(ctx, c.cfg, backing.Store, logger.Component("core"))
	if err != nil {
		backing.Close()
		return nil, nil, err
	}
	return core, backing.Close, nil
}

func (c *cli) portal(core *app.Core, cmd *cobra.Command, walletAddress string) *service.Portal {
	deps := core.PortalDeps(printNotifier{w: cmd.OutOrStdout()}, logger.Component("portal"))
	return service.NewPortal(deps, wallet.NewProvided(walletAddress))
}
