// Command eventserver runs the real-time event delivery server: the
// Connection Manager, its four transport routes, and a small set of
// illustrative background producers.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "eventserver",
	Short: "Real-time event delivery server",
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
