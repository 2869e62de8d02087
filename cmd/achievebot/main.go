package main

import (
	"os"

	"github.com/MEKXH/achievebot/cmd/achievebot/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
