package root

import (
	"github.com/spf13/cobra"

	"github.com/bsidebar/insights/pkg/cli"
	"github.com/bsidebar/insights/pkg/config"
	"github.com/bsidebar/insights/pkg/telemetry"
)

type shareFlags struct {
	configuration bool
	activity      bool
}

func newShareCmd(root *rootFlags) *cobra.Command {
	var flags shareFlags

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Show or change which optional data is shared",
		Long: `Configuration data (flattened settings) and activity data (installation
date, bookmark count, actions) are only sent after opting in. Without flags
the current choice is printed.`,
		Example: `  insights share
  insights share --configuration --activity=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, root)
		},
	}

	cmd.Flags().BoolVar(&flags.configuration, "configuration", false, "Share configuration data")
	cmd.Flags().BoolVar(&flags.activity, "activity", false, "Share activity data")

	return cmd
}

func (f *shareFlags) run(cmd *cobra.Command, root *rootFlags) error {
	ctx := cmd.Context()
	out := cli.NewPrinter(cmd.OutOrStdout())

	cfg, err := config.Load(root.configPath)
	if err != nil {
		return err
	}

	p, err := openPipeline(ctx, cfg)
	if err != nil {
		out.PrintError(err)
		return RuntimeError{Err: err}
	}
	defer p.Close()

	perms, set, err := p.model.SharePermissions(ctx)
	if err != nil {
		out.PrintError(err)
		return RuntimeError{Err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("configuration") || flags.Changed("activity") {
		if flags.Changed("configuration") {
			perms.Config = f.configuration
		}
		if flags.Changed("activity") {
			perms.Activity = f.activity
		}
		if err := p.model.SetSharePermissions(ctx, perms); err != nil {
			out.PrintError(err)
			return RuntimeError{Err: err}
		}
		set = true
	}

	out.Printf("Sharing: %s\n", telemetry.ShareState(perms, set))
	return nil
}
