package main

import (
	"fmt"
	"os"

	"github.com/askoura/rednote-downloader/internal/config"
	"github.com/askoura/rednote-downloader/internal/progress"
	"github.com/spf13/cobra"
)

var (
	configFlag  string
	outputFlag  string
	verboseFlag bool

	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "rednote-dl",
	Short: "Download media from RedNote post links",
	Long: "rednote-dl resolves shared RedNote post links, extracts the post's\n" +
		"media assets, and downloads them to local storage exactly once per post.\n\n" +
		"For interactive mode, use: rednote-tui",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.Load(configFlag)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if outputFlag != "" {
			settings.DownloadsPath = outputFlag
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", defaultConfigPath(), "path to config file")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "download directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "show verbose output")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rednote-dl.json"
	}
	return home + "/.config/rednote-dl/settings.json"
}

// printProgress renders pipeline events for the terminal, mirroring the
// severity levels with short prefixes.
func printProgress(e progress.Event) {
	if e.Level == progress.LevelVerbose && !verboseFlag {
		return
	}

	var prefix string
	switch e.Level {
	case progress.LevelError:
		prefix = "error: "
	case progress.LevelWarning:
		prefix = "warning: "
	case progress.LevelSuccess:
		prefix = "ok: "
	default:
		prefix = ""
	}
	fmt.Println(prefix + e.Message)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
