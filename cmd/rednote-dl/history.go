package main

import (
	"fmt"

	"github.com/askoura/rednote-downloader/internal/ledger"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the post IDs already downloaded",
	Long: "Prints every post ID recorded as fully downloaded. Forgetting an ID with\n" +
		"--forget makes the next download of that post run again from scratch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		forget, _ := cmd.Flags().GetStringSlice("forget")

		led, err := ledger.Open(settings.LedgerPath)
		if err != nil {
			return err
		}
		defer led.Close()

		ctx := cmd.Context()
		for _, id := range forget {
			if err := led.Remove(ctx, id); err != nil {
				return fmt.Errorf("forget %s: %w", id, err)
			}
			fmt.Printf("forgot %s\n", id)
		}
		if len(forget) > 0 {
			return nil
		}

		ids, err := led.All(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("no downloads recorded")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringSlice("forget", nil, "remove these post IDs from the download record")
}
