// Package cli implements permitctl, the operator command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/webdevsha/permitak/internal/app"
	"github.com/webdevsha/permitak/internal/infrastructure/config"
	"github.com/webdevsha/permitak/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// runtime is the state shared by every subcommand
type runtime struct {
	version    string
	loadConfig func() (*config.Config, error)

	cfg *config.Config
	log *zap.Logger
}

// NewRootCommand builds the permitctl command tree
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&runtime{version: version, loadConfig: config.Load})
}

func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "permitctl",
		Short:         "Operate the Permit Akaun rent ledger",
		Version:       rt.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := rt.loadConfig()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = logger.New(config.LogConfig{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.log != nil {
				logger.Sync(rt.log)
			}
		},
	}

	root.AddCommand(
		newArrearsCommand(rt),
		newSweepCommand(rt),
		newTokenCommand(rt),
	)
	return root
}

// container connects to the database and builds the services. Receipt
// storage is never needed from the command line.
func (rt *runtime) container(ctx context.Context) (*app.Container, error) {
	return app.Build(ctx, rt.cfg, rt.log, app.Options{Version: rt.version, SkipStorage: true})
}
