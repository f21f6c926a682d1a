package main

import (
	"os"
)

func main() {
	cli := NewViperCLI()

	if err := cli.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
