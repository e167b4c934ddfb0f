// Package cmd implements the command-line interface for provdev.
package cmd

import (
	"fmt"
	"os"

	"github.com/provdev-cli/provdev/build"
	"github.com/provdev-cli/provdev/color"
	"github.com/provdev-cli/provdev/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.SetOut(os.Stdout)
}

// buildCmd runs the configured build command once and reports its output.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the configured build command for the served module tree",
	Long:  `Run the configured build command once, the same way the /build endpoint does, and print its combined output.`,
	Run: func(cmd *cobra.Command, args []string) {
		output, err := build.Run()
		handleErr(err)

		if output != "" {
			cmd.Print(output)
		}

		fmt.Printf("%s build finished\n", style.Fg(color.Green)("✓"))
	},
}
