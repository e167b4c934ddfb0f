// Package cmd implements the command-line interface for provdev.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/provdev-cli/provdev/color"
	"github.com/provdev-cli/provdev/constant"
	"github.com/provdev-cli/provdev/key"
	"github.com/provdev-cli/provdev/log"
	"github.com/provdev-cli/provdev/server"
	"github.com/provdev-cli/provdev/style"
	"github.com/provdev-cli/provdev/util"
	"github.com/provdev-cli/provdev/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().IntP("port", "p", 7700, "Port the development server listens on")
	lo.Must0(viper.BindPFlag(key.ServerPort, rootCmd.PersistentFlags().Lookup("port")))

	rootCmd.PersistentFlags().String("host", "0.0.0.0", "Interface the development server binds to")
	lo.Must0(viper.BindPFlag(key.ServerHost, rootCmd.PersistentFlags().Lookup("host")))

	rootCmd.PersistentFlags().StringP("dist", "d", "dist", "Module tree root to serve providers from")
	lo.Must0(viper.BindPFlag(key.DistRoot, rootCmd.PersistentFlags().Lookup("dist")))

	rootCmd.PersistentFlags().String("base-url", "", "Base URL passed to providers via the context")
	lo.Must0(viper.BindPFlag(key.ContextBaseURL, rootCmd.PersistentFlags().Lookup("base-url")))

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the provdev application.
var rootCmd = &cobra.Command{
	Use:   constant.Provdev,
	Short: "A local development server for Lua content-provider modules",
	Long: style.Bold(constant.Provdev) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - serve, reload and poke provider modules over HTTP while you edit them"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(server.New().ListenAndServe())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.ErrorTitle("error"), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
