package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bsidebar/insights/pkg/cli"
	"github.com/bsidebar/insights/pkg/config"
	"github.com/bsidebar/insights/pkg/telemetry"
)

type trackFlags struct {
	always     bool
	dryRun     bool
	fields     map[string]string
	maxRetries int
}

func newTrackCmd(root *rootFlags) *cobra.Command {
	var flags trackFlags

	cmd := &cobra.Command{
		Use:   "track <kind> [value]",
		Short: "Record an event and send it right away",
		Example: `  insights track action open-sidebar
  insights track configuration --field name=language_code --field value=de`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.run(cmd, root, args)
		},
	}

	cmd.Flags().BoolVar(&flags.always, "always", false, "Record the event even if its category is not shared")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Record the event but do not send it")
	cmd.Flags().StringToStringVar(&flags.fields, "field", nil, "Send a structured value (repeatable key=value)")
	cmd.Flags().IntVar(&flags.maxRetries, "max-retries", 3, "Retries before the batch is dropped")

	return cmd
}

func (f *trackFlags) run(cmd *cobra.Command, root *rootFlags, args []string) error {
	ctx := cmd.Context()
	out := cli.NewPrinter(cmd.OutOrStdout())

	var value any
	switch {
	case len(f.fields) > 0 && len(args) == 2:
		return fmt.Errorf("either a value or --field can be given, not both")
	case len(f.fields) > 0:
		values := make(map[string]any, len(f.fields))
		for k, v := range f.fields {
			values[k] = v
		}
		value = values
	case len(args) == 2:
		value = args[1]
	}

	cfg, err := config.Load(root.configPath)
	if err != nil {
		return err
	}

	p, err := openPipeline(ctx, cfg, telemetry.WithMaxRetries(f.maxRetries))
	if err != nil {
		out.PrintError(err)
		return RuntimeError{Err: err}
	}
	defer p.Close()

	if !p.client.Enabled() {
		out.Println("Telemetry is disabled.")
		return nil
	}

	kind := args[0]
	p.client.Track(ctx, kind, value, f.always)
	if p.client.Pending() == 0 {
		out.Println(notRecordedReason(kind, cfg.DevMode))
		return nil
	}
	out.PrintEvent(telemetry.NewEvent(kind, value))

	if f.dryRun {
		return nil
	}

	res := p.client.Flush(ctx, nil)
	out.PrintResult(res)
	if res.Attempts > 0 && !res.Success {
		return RuntimeError{Err: fmt.Errorf("batch dropped after %d attempt(s)", res.Attempts)}
	}
	return nil
}

func notRecordedReason(kind string, devMode bool) string {
	if devMode {
		return fmt.Sprintf("Event %q not recorded: development mode drops all events.", kind)
	}
	return fmt.Sprintf("Event %q not recorded: its category is not shared.", kind)
}
