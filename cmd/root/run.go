package root

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bsidebar/insights/pkg/cli"
	"github.com/bsidebar/insights/pkg/config"
	"github.com/bsidebar/insights/pkg/telemetry"
)

// dailyCheckInterval is how often a long-running process looks for a new
// day. The snapshot itself is taken at most once per day.
const dailyCheckInterval = time.Hour

func newRunCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the telemetry pipeline until interrupted",
		Long:  "Flush queued events on a fixed interval and take the daily snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, root)
		},
	}
}

func runPipeline(cmd *cobra.Command, root *rootFlags) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

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

	if !p.client.Enabled() {
		out.Println("Telemetry is disabled.")
		return nil
	}

	ctx = telemetry.WithClient(ctx, p.client)
	out.PrintWelcomeMessage(AppName, cfg.Endpoint)

	p.client.Start(ctx)
	p.client.CheckDaily(ctx)

	ticker := time.NewTicker(dailyCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.client.Wait()
			if n := p.client.Pending(); n > 0 {
				out.Printf("Discarding %d queued event(s)\n", n)
			}
			return nil
		case <-ticker.C:
			p.client.CheckDaily(ctx)
		}
	}
}
