// catprint is the voice-note-to-thermal-print backend and its companion
// image tools.
package main

import (
	"github.com/spf13/cobra"
)

func main() {
	_ = rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "catprint",
	Short: "Voice note to thermal printer backend and image tools",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		reduceCmd(),
		visualizeCmd(),
		printCmd(),
		bannerCmd(),
	)
}
