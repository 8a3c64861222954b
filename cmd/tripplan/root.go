package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tripplanner/internal/gateway/app"
	"tripplanner/internal/gateway/config"
	"tripplanner/internal/llm"
	"tripplanner/internal/logging"
	"tripplanner/internal/mcp"
	"tripplanner/internal/research"
	"tripplanner/internal/trip"
)

var (
	useFake   bool
	verbose   bool
	modelName string
	rawOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "tripplan",
	Short: "Plan a trip with a team of research agents",
	Long: `tripplan runs the travel planning crew from the terminal.

The crew picks cities for your travel style, researches them, builds a
day-by-day itinerary and prices it. Follow-up questions about a saved
itinerary are answered by the Q&A agent.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&useFake, "fake", false, "Use the offline fake model (no API key needed)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log agent steps and model calls")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "Gemini model id (default from GEMINI_MODEL)")
	rootCmd.PersistentFlags().BoolVar(&rawOutput, "raw", false, "Print plain markdown instead of rendering it")

	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newAskCmd())
}

// newPlanner builds a planner from the environment and the global flags.
// The returned func releases the model client.
func newPlanner(ctx context.Context, progress io.Writer) (*trip.Planner, func(), error) {
	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	if useFake {
		cfg.LLM.Fake = true
	}
	if modelName != "" {
		cfg.LLM.Model = modelName
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logging.New("local", level)
	if err != nil {
		return nil, nil, err
	}

	client, err := app.NewLLM(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	hooked := llm.WithHook(client, newProgressHook(progress))

	tools := mcp.NewRegistry()
	mcp.RegisterDefaultTools(tools, mcp.Host{
		Search: research.NewSearcher(log.Named("search")),
		Fetch:  research.NewFetcher(log.Named("fetch")),
	})
	p := trip.NewPlanner(hooked, tools, log.Named("crew"))
	p.Verbose = verbose

	cleanup := func() {
		if err := hooked.Close(); err != nil {
			log.Debug("close llm client", zap.Error(err))
		}
		_ = log.Sync()
	}
	return p, cleanup, nil
}

// printMarkdown writes md to w, rendered for the terminal unless --raw.
func printMarkdown(w io.Writer, md string) error {
	if rawOutput {
		_, err := fmt.Fprintln(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
