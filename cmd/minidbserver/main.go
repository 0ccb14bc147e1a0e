// Command minidbserver runs the minidb TCP server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/freeeve/minidb/internal/executor"
	"github.com/freeeve/minidb/internal/logging"
	"github.com/freeeve/minidb/internal/server"
)

func main() {
	var dataDir string
	var port int
	var verbose bool

	root := &cobra.Command{
		Use:   "minidbserver",
		Short: "Serve SQL over a line-delimited TCP protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(verbose)
			log := logging.For("main")

			exec, err := executor.New(dataDir)
			if err != nil {
				return fmt.Errorf("failed to initialize executor: %w", err)
			}

			srv := server.New(exec)
			addr := fmt.Sprintf(":%d", port)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe(addr)
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server exited: %w", err)
				}
				return nil
			case sig := <-sigCh:
				log.Info("received shutdown signal", "signal", sig.String())
				return srv.Shutdown()
			}
		},
	}

	root.Flags().StringVar(&dataDir, "data-dir", "./data", "directory to store table data in")
	root.Flags().IntVar(&port, "port", 9876, "TCP port to listen on")
	root.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
