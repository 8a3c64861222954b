package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	var itineraryPath string
	cmd := &cobra.Command{
		Use:     "ask [question]",
		Short:   "Ask a question about a saved itinerary",
		Example: `  tripplan ask --itinerary plans/Trip_Itinerary_20240602_143005.md "What do I do on day 2?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(itineraryPath)
			if err != nil {
				return fmt.Errorf("read itinerary: %w", err)
			}
			question := strings.TrimSpace(strings.Join(args, " "))

			ctx := cmd.Context()
			planner, cleanup, err := newPlanner(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			answer, err := planner.Ask(ctx, string(data), question)
			if err != nil {
				return fmt.Errorf("could not get an answer: %w", err)
			}
			return printMarkdown(cmd.OutOrStdout(), answer)
		},
	}
	cmd.Flags().StringVar(&itineraryPath, "itinerary", "", "Markdown itinerary written by 'tripplan plan'")
	_ = cmd.MarkFlagRequired("itinerary")
	return cmd
}
