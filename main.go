package main

import (
	"os"

	"github.com/oakmont-embedded/gh-fwbump/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
