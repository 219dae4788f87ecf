package main

import (
	"os"

	"github.com/mwrona/maskfold/cmd/maskfold/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
