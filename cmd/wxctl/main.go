package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lvyanru/weather-apiserver/internal/cli/commands"
	"github.com/lvyanru/weather-apiserver/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "unknown command") {
			ui.PrintError("%s", errMsg)
			fmt.Println("\nRun 'wxctl --help' for usage.")
		}
		os.Exit(1)
	}
}
