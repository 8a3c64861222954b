package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// FakeClient returns deterministic tool-loop envelopes per phase for
// offline runs and tests. Phases ending in "/reasoning" get a plan object;
// every other phase gets a final answer.
type FakeClient struct {
	mu      sync.Mutex
	answers map[string]string
	calls   []FakeCall
}

// FakeCall records a single GenerateJSON invocation.
type FakeCall struct {
	Phase  string
	Prompt string
}

func NewFakeClient() *FakeClient {
	answers := make(map[string]string, len(fakeTripAnswers))
	for k, v := range fakeTripAnswers {
		answers[k] = v
	}
	return &FakeClient{answers: answers}
}

// SetAnswer overrides the final answer returned for phase.
func (f *FakeClient) SetAnswer(phase, answer string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[phase] = answer
}

// Calls returns a copy of the recorded calls.
func (f *FakeClient) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeCall(nil), f.calls...)
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	phase := PhaseFrom(ctx)
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{Phase: phase, Prompt: prompt})
	f.mu.Unlock()

	var obj any
	switch {
	case strings.HasSuffix(phase, "/reasoning"):
		obj = map[string]any{
			"plan": fmt.Sprintf("Work through %q step by step and answer in markdown.", strings.TrimSuffix(phase, "/reasoning")),
		}
	default:
		task := strings.TrimSuffix(phase, "/final")
		f.mu.Lock()
		answer, ok := f.answers[task]
		f.mu.Unlock()
		if !ok {
			answer = "Fake answer for " + task + "."
		}
		obj = map[string]any{
			"action": "final",
			"final":  map[string]any{"answer": answer},
		}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

var fakeTripAnswers = map[string]string{
	"City Selection": "- **Kyoto**: temples, tea houses and autumn foliage.\n" +
		"- **Lisbon**: mild weather, tiled old town and seafood.\n" +
		"- **Oaxaca**: markets, mezcal and colonial architecture.",
	"City Research": "### Kyoto\n" +
		"- Attractions: Fushimi Inari, Kinkaku-ji, Arashiyama.\n" +
		"- Food: kaiseki, yudofu, matcha sweets.\n" +
		"- Customs: bow lightly, no tipping.\n" +
		"- Stay: Higashiyama or near Kyoto Station.\n" +
		"- Transport: buy an ICOCA card; buses cover the temples.\n" +
		"- Hidden gem: Honen-in at opening time.",
	"Itinerary Creation": "| Day | Time | Activity | Transport | Meals |\n" +
		"|---|---|---|---|---|\n" +
		"| 1 | 09:00 | Fushimi Inari hike | JR Nara line, 5 min | Breakfast at hotel |\n" +
		"| 1 | 14:00 | Gion walk | Bus 206, 20 min | Dinner in Pontocho |",
	"Budget Planning": "| Category | Estimate |\n" +
		"|---|---|\n" +
		"| Accommodation | $120/night |\n" +
		"| Transport | $60 |\n" +
		"| Activities | $80 |\n" +
		"| Meals | $45/day |\n" +
		"| Emergency fund | $100 |\n" +
		"| **Total** | **$1,185** |",
	"Itinerary Q&A": "On day 1 you hike Fushimi Inari in the morning and walk through Gion in the afternoon.",
}
