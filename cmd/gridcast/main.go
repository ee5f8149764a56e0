package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridcast",
		Short: "Shared real-time canvas server",
		Long: `Gridcast serves a shared pixel canvas over a binary WebSocket
protocol. Every connected client sees the same stream: commands mutate
a Game-of-Life simulation or an algorithmic painting, and every result
is broadcast to all clients in a single global order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
