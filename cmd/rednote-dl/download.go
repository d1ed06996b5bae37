package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/askoura/rednote-downloader/internal/ledger"
	"github.com/askoura/rednote-downloader/internal/pipeline"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <link or text containing links> ...",
	Short: "Download the posts referenced by the given links",
	Long: "Resolves every recognized post link in the arguments (canonical, share,\n" +
		"and short links), extracts each post, and downloads its media assets.\n" +
		"Posts already recorded as complete are skipped.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		indicesFlag, _ := cmd.Flags().GetString("images")
		noDownload, _ := cmd.Flags().GetBool("no-download")
		efficient, _ := cmd.Flags().GetBool("efficient")

		indices, err := parseIndices(indicesFlag)
		if err != nil {
			return err
		}

		led, err := ledger.Open(settings.LedgerPath)
		if err != nil {
			return err
		}
		defer led.Close()

		ctx, cancel := signalContext()
		defer cancel()

		pipe := pipeline.New(settings, led, printProgress)
		posts := pipe.Extract(ctx, strings.Join(args, " "), pipeline.Options{
			Download:  !noDownload,
			Indices:   indices,
			Efficient: efficient,
		})

		if len(posts) == 0 {
			return fmt.Errorf("no posts could be extracted")
		}
		fmt.Printf("processed %d post(s)\n", len(posts))
		return nil
	},
}

func init() {
	downloadCmd.Flags().String("images", "", "only download these image positions, e.g. 1,3,5")
	downloadCmd.Flags().Bool("no-download", false, "extract and record metadata without downloading assets")
	downloadCmd.Flags().Bool("efficient", false, "skip the politeness delay between requests")
}

// parseIndices parses a comma-separated list of 1-based asset positions.
func parseIndices(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var indices []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid image position %q", part)
		}
		indices = append(indices, n)
	}
	return indices, nil
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	return ctx, cancel
}
