package main

import (
	"fmt"
	"os"

	"github.com/teranos/stubgen/cmd/stubgen/cmd"
	"github.com/teranos/stubgen/logger"
)

func main() {
	err := cmd.NewRootCmd().Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}
