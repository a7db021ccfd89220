package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "planner"}

	root.AddCommand(serveCMD(), selectCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
