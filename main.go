package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/Majid-Chaudhary/oltp-sample/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		color.Red("❌ Error: %v", err)
		os.Exit(1)
	}
}
