// main is the entry point for the contriboard CLI.
package main

import (
	"github.com/huangsam/contriboard/cmd"
	"github.com/huangsam/contriboard/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
