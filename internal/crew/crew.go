package crew

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Crew runs its tasks in order. Agents is informational; every task carries
// its own agent.
type Crew struct {
	Agents  []*Agent
	Tasks   []*Task
	Log     *zap.Logger
	Verbose bool
}

// CrewOutput holds every task's output in execution order. Raw is the last
// task's output.
type CrewOutput struct {
	Raw         string       `json:"raw"`
	TasksOutput []TaskOutput `json:"tasks_output"`
}

// Kickoff renders every task from inputs, then executes them sequentially.
// Rendering happens up front so a missing input fails before any LLM call.
func (c *Crew) Kickoff(ctx context.Context, inputs map[string]string) (CrewOutput, error) {
	if len(c.Tasks) == 0 {
		return CrewOutput{}, fmt.Errorf("crew: no tasks")
	}
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}

	jobs := make([]assignment, len(c.Tasks))
	index := make(map[*Task]int, len(c.Tasks))
	for i, t := range c.Tasks {
		if err := t.validate(); err != nil {
			return CrewOutput{}, err
		}
		if _, dup := index[t]; dup {
			return CrewOutput{}, fmt.Errorf("crew: task %q listed twice", t.Name)
		}
		desc, expected, err := t.Render(inputs)
		if err != nil {
			return CrewOutput{}, err
		}
		for _, dep := range t.Context {
			j, ok := index[dep]
			if !ok || j >= i {
				return CrewOutput{}, fmt.Errorf("crew: task %q uses context from a task that has not run before it", t.Name)
			}
		}
		index[t] = i
		jobs[i] = assignment{Name: t.Name, Purpose: desc, Expected: expected}
	}

	outputs := make([]TaskOutput, 0, len(c.Tasks))
	for i, t := range c.Tasks {
		if err := ctx.Err(); err != nil {
			return CrewOutput{TasksOutput: outputs}, err
		}
		job := jobs[i]
		job.Context = c.contextFor(t, outputs, index)

		c.logf(log, "task started", zap.String("task", t.Name), zap.String("agent", t.Agent.Role))
		start := time.Now()
		raw, err := t.Agent.execute(ctx, log, job)
		if err != nil {
			return CrewOutput{TasksOutput: outputs}, fmt.Errorf("task %q: %w", t.Name, err)
		}
		c.logf(log, "task completed",
			zap.String("task", t.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("chars", len(raw)),
		)
		outputs = append(outputs, TaskOutput{
			Name:        t.Name,
			Description: job.Purpose,
			Agent:       t.Agent.Role,
			Raw:         raw,
		})
	}
	return CrewOutput{Raw: outputs[len(outputs)-1].Raw, TasksOutput: outputs}, nil
}

func (c *Crew) contextFor(t *Task, done []TaskOutput, index map[*Task]int) string {
	if t.Context == nil {
		return aggregateRaw(done)
	}
	selected := make([]TaskOutput, 0, len(t.Context))
	for _, dep := range t.Context {
		selected = append(selected, done[index[dep]])
	}
	return aggregateRaw(selected)
}

func (c *Crew) logf(log *zap.Logger, msg string, fields ...zap.Field) {
	if c.Verbose {
		log.Info(msg, fields...)
		return
	}
	log.Debug(msg, fields...)
}
