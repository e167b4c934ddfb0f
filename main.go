// Package main is the entry point for the provdev application.
package main

import (
	"github.com/provdev-cli/provdev/cmd"
	"github.com/provdev-cli/provdev/config"
	"github.com/provdev-cli/provdev/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
