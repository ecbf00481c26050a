package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/zeu5/maze-mdp/benchmarks"
)

// main entry point to all the commands
func main() {
	rootCommand := benchmarks.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
