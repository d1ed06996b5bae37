package main

import (
	"fmt"

	"github.com/askoura/rednote-downloader/internal/ledger"
	"github.com/askoura/rednote-downloader/internal/pipeline"
	"github.com/askoura/rednote-downloader/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the clipboard and download every post link that appears",
	Long: "Polls the clipboard on an interval. Every recognized post link is queued\n" +
		"and downloaded in the background. Copy the text \"" + watch.StopCommand + "\" (or press\n" +
		"Ctrl+C) to stop; links discovered before the stop are still processed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		intervalFlag, _ := cmd.Flags().GetDuration("interval")
		efficient, _ := cmd.Flags().GetBool("efficient")

		if intervalFlag > 0 {
			settings.PollIntervalSeconds = intervalFlag.Seconds()
		}

		led, err := ledger.Open(settings.LedgerPath)
		if err != nil {
			return err
		}
		defer led.Close()

		ctx, cancel := signalContext()
		defer cancel()

		pipe := pipeline.New(settings, led, printProgress)
		monitor := pipe.NewMonitor(pipeline.Options{Download: true, Efficient: efficient})

		fmt.Printf("watching clipboard every %.1fs, copy %q to stop\n",
			settings.PollIntervalSeconds, watch.StopCommand)
		monitor.Run(ctx)

		fmt.Println("watch stopped")
		return nil
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "clipboard poll interval (0 uses the configured value)")
	watchCmd.Flags().Bool("efficient", false, "skip the politeness delay between requests")
}
