package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tripplanner/internal/export"
	"tripplanner/internal/trip"
)

type planOptions struct {
	travelType string
	interests  []string
	season     string
	duration   int
	budget     string
	outDir     string
	formats    []string
}

func newPlanCmd() *cobra.Command {
	def := trip.DefaultInputs()
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a complete trip plan",
		Example: `  tripplan plan --travel-type Cultural --interests History,Food --season Fall --duration 5 --budget '$1000-$2000'
  tripplan plan --fake --out-dir plans --format md,docx,pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.travelType, "travel-type", def.TravelType, fmt.Sprintf("Travel type %v", trip.TravelTypes))
	cmd.Flags().StringSliceVar(&opts.interests, "interests", nil, fmt.Sprintf("Interests %v", trip.Interests))
	cmd.Flags().StringVar(&opts.season, "season", def.Season, fmt.Sprintf("Season %v", trip.Seasons))
	cmd.Flags().IntVar(&opts.duration, "duration", def.Duration, fmt.Sprintf("Trip duration in days (%d-%d)", trip.MinDuration, trip.MaxDuration))
	cmd.Flags().StringVar(&opts.budget, "budget", def.Budget, fmt.Sprintf("Budget range %v", trip.Budgets))
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "Write the plan files into this directory")
	cmd.Flags().StringSliceVar(&opts.formats, "format", []string{"md"}, "File formats to write with --out-dir (md, docx, pdf)")
	return cmd
}

func (o *planOptions) inputs() trip.TripInputs {
	return trip.TripInputs{
		TravelType: o.travelType,
		Interests:  splitList(o.interests),
		Season:     o.season,
		Duration:   o.duration,
		Budget:     o.budget,
	}
}

func runPlan(cmd *cobra.Command, opts *planOptions) error {
	in := opts.inputs()
	if err := in.Validate(); err != nil {
		return err
	}
	formats := make([]export.Format, 0, len(opts.formats))
	for _, raw := range splitList(opts.formats) {
		f, err := export.ParseFormat(raw)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	ctx := cmd.Context()
	planner, cleanup, err := newPlanner(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := planner.Plan(ctx, in)
	if err != nil {
		return fmt.Errorf("trip planning failed: %w", err)
	}
	text := export.FullTripText(result)
	if err := printMarkdown(cmd.OutOrStdout(), text); err != nil {
		return err
	}
	if opts.outDir == "" {
		return nil
	}
	paths, err := writeExports(opts.outDir, text, formats, time.Now())
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", p)
	}
	return nil
}

// writeExports renders text in each format into dir and returns the paths.
func writeExports(dir, text string, formats []export.Format, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, err := export.Render(f, text)
		if err != nil {
			return paths, fmt.Errorf("render %s: %w", f, err)
		}
		p := filepath.Join(dir, export.ItineraryFileName(now, f))
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
