package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "modcache",
	Short: "Inspect module resolution against in-memory chain state",
	Long: `modcache publishes module files into an in-memory versioned state and
resolves their structs and call targets through the block and transaction caches.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(interactiveCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to modcache.toml")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
