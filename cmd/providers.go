// Package cmd implements the command-line interface for provdev.
package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/provdev-cli/provdev/color"
	"github.com/provdev-cli/provdev/constant"
	"github.com/provdev-cli/provdev/filesystem"
	"github.com/provdev-cli/provdev/key"
	"github.com/provdev-cli/provdev/manifest"
	"github.com/provdev-cli/provdev/style"
	"github.com/provdev-cli/provdev/util"
	"github.com/provdev-cli/provdev/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(providersCmd)
}

// providersCmd serves as the parent command for inspecting and scaffolding provider modules.
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect and scaffold provider modules in the served tree",
}

func init() {
	providersCmd.AddCommand(providersListCmd)

	providersListCmd.Flags().BoolP("raw", "r", false, "Suppress header in the output")
	providersListCmd.SetOut(os.Stdout)
}

// providersListCmd displays the providers currently present in the served tree.
var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display the providers currently present in the served module tree",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader := !lo.Must(cmd.Flags().GetBool("raw"))
		headerStyle := style.New().Foreground(color.HiBlue).Bold(true).Render

		reporter := manifest.New(where.Dist(), viper.GetString(key.DistManifest))
		providers, err := reporter.Providers()
		handleErr(err)

		if printHeader {
			cmd.Println(headerStyle("Providers:"))
		}

		for _, p := range providers {
			cmd.Println(p)
		}
	},
}

func init() {
	providersCmd.AddCommand(providersGenCmd)

	providersGenCmd.Flags().StringP("name", "n", "", "The name of the new provider")
	providersGenCmd.Flags().StringP("url", "u", "", "The base URL of the upstream content source")

	lo.Must0(providersGenCmd.MarkFlagRequired("name"))
}

// providersGenCmd scaffolds a boilerplate provider directory.
var providersGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Scaffold a new provider directory using predefined module templates",
	Long:  `Generate a boilerplate provider directory with module scripts for the supported functions.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		s := struct {
			Name    string
			BaseURL string
		}{
			Name:    lo.Must(cmd.Flags().GetString("name")),
			BaseURL: lo.Must(cmd.Flags().GetString("url")),
		}

		funcMap := template.FuncMap{
			"repeat": strings.Repeat,
			"plus":   func(a, b int) int { return a + b },
			"max":    util.Max[int],
		}

		dir := filepath.Join(where.Dist(), util.SanitizeFilename(s.Name))
		handleErr(filesystem.API().MkdirAll(dir, os.ModePerm))

		for stem, body := range constant.ProviderTemplates {
			tmpl, err := template.New(stem).Funcs(funcMap).Parse(body)
			handleErr(err)

			target := filepath.Join(dir, stem+constant.ModuleExtension)
			f, err := filesystem.API().Create(target)
			handleErr(err)

			err = tmpl.Execute(f, s)
			util.Ignore(f.Close)
			handleErr(err)
		}

		cmd.Println(dir)
	},
}
