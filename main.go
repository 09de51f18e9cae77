package main

import (
	"os"

	"github.com/ucformula/sponsor-scout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
