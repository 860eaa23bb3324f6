package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "framec",
		Short: "Compile and inspect FrameUI documents",
		Long: `framec compiles FrameUI markup and its stylesheets into the binary
document format, and lays documents out for inspection.

Settings are read from framec.yaml next to the input document; flags
override them.`,
		SilenceUsage: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&flags.sass, "sass", "", "dart-sass executable")
	pf.StringVar(&flags.diagnostics, "diagnostics", "", "lowest diagnostic level shown: error, warn or info")

	rootCmd.AddCommand(newCompileCmd(&flags))
	rootCmd.AddCommand(newLayoutCmd(&flags))
	rootCmd.AddCommand(newQueryCmd(&flags))
	rootCmd.AddCommand(newWatchCmd(&flags))
	return rootCmd
}
