package main

import (
	"fmt"
	"os"

	"github.com/askoura/rednote-downloader/internal/config"
	"github.com/askoura/rednote-downloader/internal/tui"
)

func main() {
	settings, err := config.Load(defaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rednote-dl.json"
	}
	return home + "/.config/rednote-dl/settings.json"
}
