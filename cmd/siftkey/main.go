package main

import (
	"os"

	"siftkey/cmd/siftkey/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
