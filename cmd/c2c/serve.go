package main

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"c2c/internal/proxy"
	"c2c/internal/trace"
)

var serveCmd = &cobra.Command{
	Use:   "serve [flags] <address>",
	Short: "Serve compile requests over a socket",
	Long: `Listen on a TCP address (host:port) or a unix socket (unix:/path) and answer
framed compile requests until a shutdown request or a signal arrives.
With --shutdown, connect to a running server and stop it instead`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("shutdown", false, "ask the server at <address> to stop")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := cmd.Flags().GetBool("shutdown")
	if err != nil {
		return fmt.Errorf("failed to get shutdown flag: %w", err)
	}
	if shutdown {
		c, err := proxy.Dial(ctx, args[0])
		if err != nil {
			return err
		}
		defer c.Close()
		return c.Shutdown()
	}

	network, address := proxy.SplitAddress(args[0])
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, network, address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", args[0], err)
	}
	tracer, err := trace.New(opts.Trace())
	if err != nil {
		ln.Close()
		return err
	}
	defer tracer.Close()

	fmt.Fprintf(cmd.ErrOrStderr(), "c2c: serving on %s\n", ln.Addr())
	srv := proxy.NewServer(proxy.Compile(opts), tracer)
	return srv.Serve(ctx, ln)
}
