// Command meshpin-node runs a single cluster node: libp2p swarm
// membership, local content-addressed state, and a JSON-RPC 2.0 API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "meshpin-node",
		Short: "Run a meshpin cluster node",
	}
	root.AddCommand(startServerCmd())
	return root
}
