package root

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bsidebar/insights/pkg/cli"
	"github.com/bsidebar/insights/pkg/server"
)

type collectFlags struct {
	listenAddr string
	failFirst  int
}

func newCollectCmd() *cobra.Command {
	var flags collectFlags

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Start a local collection endpoint",
		Long:  `Accept batches on /api/evaluate and count events per kind. Meant for development.`,
		Args:  cobra.NoArgs,
		RunE:  flags.runCollectCommand,
	}

	cmd.Flags().StringVarP(&flags.listenAddr, "listen", "l", "127.0.0.1:8080", "Address to listen on")
	cmd.Flags().IntVar(&flags.failFirst, "fail-first", 0, "Reject the first N batches to exercise client retries")

	return cmd
}

func (f *collectFlags) runCollectCommand(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cli.NewPrinter(cmd.OutOrStdout())

	ln, err := server.Listen(ctx, f.listenAddr)
	if err != nil {
		out.PrintError(err)
		return RuntimeError{Err: err}
	}
	defer ln.Close()

	s := server.New(server.WithFailFirst(f.failFirst))
	out.Printf("Listening on %s\n", ln.Addr())

	if err := s.Serve(ctx, ln); err != nil {
		out.PrintError(err)
		return RuntimeError{Err: err}
	}

	out.PrintStats(s.Stats())
	return nil
}
