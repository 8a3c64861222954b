package trip

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tripplanner/internal/crew"
	"tripplanner/internal/llm"
	"tripplanner/internal/llmtool"
	"tripplanner/internal/mcp"
)

var (
	ErrNoItinerary = errors.New("trip: itinerary is empty")
	ErrNoQuestion  = errors.New("trip: question is empty")
)

// Planner builds and runs the trip crews.
type Planner struct {
	LLM llm.LLMClient
	// Tools are given to the four planning agents. Nil disables tool use.
	Tools   llmtool.ToolProvider
	Log     *zap.Logger
	Verbose bool
	// MaxIter bounds tool-loop turns per task; zero uses the crew default.
	MaxIter int
}

func NewPlanner(client llm.LLMClient, tools llmtool.ToolProvider, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{LLM: client, Tools: tools, Log: log}
}

// Plan validates in and runs city selection, city research, itinerary
// creation and budget planning in that order.
func (p *Planner) Plan(ctx context.Context, in TripInputs) (TripResult, error) {
	if err := in.Validate(); err != nil {
		return TripResult{}, err
	}
	c := p.tripCrew()
	log := p.logger()
	log.Info("planning trip",
		zap.String("travel_type", in.TravelType),
		zap.Strings("interests", in.Interests),
		zap.String("season", in.Season),
		zap.Int("duration", in.Duration),
		zap.String("budget", in.Budget),
	)
	out, err := c.Kickoff(ctx, in.Fields())
	if err != nil {
		return TripResult{}, fmt.Errorf("plan trip: %w", err)
	}
	return NormalizeResults(out.TasksOutput), nil
}

// Ask answers question using only the given itinerary text.
func (p *Planner) Ask(ctx context.Context, itinerary, question string) (string, error) {
	if strings.TrimSpace(itinerary) == "" {
		return "", ErrNoItinerary
	}
	if strings.TrimSpace(question) == "" {
		return "", ErrNoQuestion
	}
	agent := p.agent(TravelQAExpert, nil)
	agent.Grounded = true
	c := &crew.Crew{
		Agents:  []*crew.Agent{agent},
		Tasks:   []*crew.Task{ItineraryQATask.task(agent)},
		Log:     p.logger(),
		Verbose: p.Verbose,
	}
	out, err := c.Kickoff(ctx, map[string]string{"itinerary": itinerary, "question": question})
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return strings.TrimSpace(out.Raw), nil
}

func (p *Planner) tripCrew() *crew.Crew {
	selector := p.agent(CitySelectionExpert, p.Tools)
	local := p.agent(LocalDestinationExpert, p.Tools)
	planner := p.agent(ProfessionalTravelPlanner, p.Tools)
	budget := p.agent(TravelBudgetManager, p.Tools)

	selection := CitySelectionTask.task(selector)
	research := CityResearchTask.task(local, selection)
	itinerary := ItineraryCreationTask.task(planner, selection, research)
	costs := BudgetPlanningTask.task(budget, itinerary)

	return &crew.Crew{
		Agents:  []*crew.Agent{selector, local, planner, budget},
		Tasks:   []*crew.Task{selection, research, itinerary, costs},
		Log:     p.logger(),
		Verbose: p.Verbose,
	}
}

func (p *Planner) agent(profile AgentProfile, tools llmtool.ToolProvider) *crew.Agent {
	return &crew.Agent{
		Role:         profile.Role,
		Goal:         profile.Goal,
		Backstory:    profile.Backstory,
		Reasoning:    true,
		Tools:        tools,
		AllowedTools: []string{mcp.WebSearchToolName, mcp.WebFetchToolName},
		LLM:          p.LLM,
		MaxIter:      p.MaxIter,
	}
}

func (p *Planner) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}
