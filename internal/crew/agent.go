package crew

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"tripplanner/internal/llm"
	"tripplanner/internal/llmtool"
)

// DefaultMaxIter bounds tool-loop turns per task when Agent.MaxIter is unset.
const DefaultMaxIter = 8

// Agent is an LLM persona that executes tasks.
type Agent struct {
	Role      string
	Goal      string
	Backstory string
	// Reasoning makes the agent draft a plan before each task.
	Reasoning bool
	Tools     llmtool.ToolProvider
	// AllowedTools limits which of Tools the agent may call. Empty allows all.
	AllowedTools []string
	LLM          llm.LLMClient
	MaxIter      int
	// Grounded restricts answers to the task context (no outside knowledge).
	Grounded bool
}

// Persona renders the role, backstory and goal as a system-style preamble.
func (a *Agent) Persona() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. %s\n", a.Role, strings.TrimSpace(a.Backstory))
	fmt.Fprintf(&b, "Your personal goal is: %s", a.Goal)
	return b.String()
}

// assignment is a fully rendered task ready for execution.
type assignment struct {
	Name     string
	Purpose  string
	Expected string
	Context  string
}

func (a *Agent) execute(ctx context.Context, log *zap.Logger, job assignment) (string, error) {
	if a.LLM == nil {
		return "", fmt.Errorf("agent %q: no LLM configured", a.Role)
	}
	var plan string
	if a.Reasoning {
		plan = a.reason(ctx, log, job)
	}

	spec := a.promptSpec(job, plan)
	loop := &llmtool.ToolLoop{
		LLM:      a.LLM,
		Tools:    a.Tools,
		MaxIters: a.maxIter(),
		Allowed:  a.AllowedTools,
		OnToolCall: func(_ context.Context, tr llmtool.ToolResult) {
			log.Debug("tool call",
				zap.String("task", job.Name),
				zap.String("agent", a.Role),
				zap.String("tool", tr.Name),
				zap.ByteString("input", tr.Input),
				zap.String("error", tr.Error),
			)
		},
	}
	final, state, err := loop.Run(llm.WithPhase(ctx, job.Name), nil, llmtool.StructuredPromptBuilder(spec))
	if errors.Is(err, llmtool.ErrMaxIterations) {
		log.Debug("tool budget exhausted; forcing final answer",
			zap.String("task", job.Name), zap.Int("iterations", state.Iterations))
		final, err = a.forceFinal(ctx, job, spec, state)
	}
	if err != nil {
		return "", fmt.Errorf("agent %q: %w", a.Role, err)
	}
	return llmtool.FinalText(final), nil
}

func (a *Agent) promptSpec(job assignment, plan string) llmtool.StructuredPromptSpec {
	spec := llmtool.StructuredPromptSpec{
		Persona: a.Persona(),
		Purpose: job.Purpose,
		Plan:    plan,
		Context: job.Context,
		OutputFields: []llmtool.PromptField{
			{Name: "answer", Type: "string", Required: true, Description: "Your complete final answer. Expected: " + job.Expected},
		},
	}
	presets := []llmtool.PromptPreset{llmtool.PresetStrictJSON(), llmtool.PresetMarkdownAnswer()}
	if a.hasTools() {
		presets = append(presets, llmtool.PresetResearchTools())
	}
	if a.Grounded {
		presets = append(presets, llmtool.PresetGrounded())
	}
	return llmtool.ApplyPresets(spec, presets...)
}

// reason asks for a short plan. Failures are logged and the task proceeds
// without one.
func (a *Agent) reason(ctx context.Context, log *zap.Logger, job assignment) string {
	var b strings.Builder
	b.WriteString(a.Persona())
	b.WriteString("\n\nBefore working on the task below, write a short numbered plan of how you will complete it")
	if a.hasTools() {
		b.WriteString(", including which searches or pages you intend to consult")
	}
	b.WriteString(".\nReturn JSON: {\"plan\": \"<plan>\"}\n\n[TASK]\n")
	b.WriteString(job.Purpose)
	b.WriteString("\n\n[EXPECTED OUTPUT]\n")
	b.WriteString(job.Expected)
	if strings.TrimSpace(job.Context) != "" {
		b.WriteString("\n\n[CONTEXT]\n")
		b.WriteString(job.Context)
	}

	raw, err := a.LLM.GenerateJSON(llm.WithPhase(ctx, job.Name+"/reasoning"), b.String(), nil)
	if err != nil {
		log.Warn("reasoning step failed", zap.String("task", job.Name), zap.Error(err))
		return ""
	}
	var out struct {
		Plan json.RawMessage `json:"plan"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || len(out.Plan) == 0 {
		log.Warn("reasoning step returned no plan", zap.String("task", job.Name))
		return ""
	}
	plan := llmtool.FinalText(out.Plan)
	log.Debug("reasoning plan", zap.String("task", job.Name), zap.String("plan", plan))
	return plan
}

// forceFinal asks once more, without tools, using whatever the tools returned.
func (a *Agent) forceFinal(ctx context.Context, job assignment, spec llmtool.StructuredPromptSpec, state *llmtool.ToolState) (json.RawMessage, error) {
	if state != nil && len(state.ToolResults) > 0 {
		spec.Context = strings.TrimSpace(spec.Context + "\n\nResearch gathered so far:\n" + llmtool.FormatToolResults(state.ToolResults))
	}
	spec.Rules = append(spec.Rules, "No more tool calls are available. Give your best final answer now.")
	loop := &llmtool.ToolLoop{LLM: a.LLM, MaxIters: 1}
	final, _, err := loop.Run(llm.WithPhase(ctx, job.Name+"/final"), nil, llmtool.StructuredPromptBuilder(spec))
	return final, err
}

// hasTools reports whether at least one tool is both provided and allowed.
func (a *Agent) hasTools() bool {
	if a.Tools == nil {
		return false
	}
	for _, spec := range a.Tools.Specs() {
		if len(a.AllowedTools) == 0 || slices.Contains(a.AllowedTools, spec.Name) {
			return true
		}
	}
	return false
}

func (a *Agent) maxIter() int {
	if a.MaxIter > 0 {
		return a.MaxIter
	}
	return DefaultMaxIter
}
