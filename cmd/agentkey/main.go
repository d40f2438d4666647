package main

import (
	"os"

	"github.com/majorcontext/agentkey/cmd/agentkey/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
