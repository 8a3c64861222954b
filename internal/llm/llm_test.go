package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type flakyClient struct {
	failures int32
	calls    int32
}

func (f *flakyClient) Name() string { return "flaky" }
func (f *flakyClient) Close() error { return nil }
func (f *flakyClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.failures {
		return nil, errors.New("transient")
	}
	return json.RawMessage(`{"ok":true}`), nil
}

func TestRetry_RecoversFromTransientErrors(t *testing.T) {
	inner := &flakyClient{failures: 2}
	cli := Wrap(inner, Retry(3, time.Millisecond))

	raw, err := cli.GenerateJSON(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.EqualValues(t, 3, atomic.LoadInt32(&inner.calls))
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	inner := &flakyClient{failures: 10}
	cli := Retry(2, time.Millisecond)(inner)

	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	assert.EqualError(t, err, "transient")
	assert.EqualValues(t, 2, atomic.LoadInt32(&inner.calls))
}

func TestRetry_StopsOnCanceledContext(t *testing.T) {
	inner := &flakyClient{failures: 10}
	cli := Retry(5, time.Second)(inner)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cli.GenerateJSON(ctx, "p", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 1, atomic.LoadInt32(&inner.calls))
}

func TestRateLimit_BurstThenThrottle(t *testing.T) {
	defer goleak.VerifyNone(t)

	cli := RateLimit(2, 1)(&flakyClient{})
	ctx := context.Background()
	start := time.Now()
	_, err := cli.GenerateJSON(ctx, "p", nil)
	require.NoError(t, err)
	_, err = cli.GenerateJSON(ctx, "p", nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
	require.NoError(t, cli.Close())
	require.NoError(t, cli.Close())
}

type recordingHook struct {
	before []string
	after  []string
}

func (r *recordingHook) Before(_ context.Context, phase, _ string, _ any) {
	r.before = append(r.before, phase)
}
func (r *recordingHook) After(_ context.Context, phase string, _ json.RawMessage, _ error) {
	r.after = append(r.after, phase)
}

func TestWithHooks_ReceivesPhase(t *testing.T) {
	hook := &recordingHook{}
	cli := WithHook(Wrap(NewFakeClient(), WithHooks(), WithLogging(nil)), hook)

	ctx := WithPhase(context.Background(), "City Selection")
	_, err := cli.GenerateJSON(ctx, "p", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"City Selection"}, hook.before)
	assert.Equal(t, []string{"City Selection"}, hook.after)
}

func TestFakeClient_PhaseResponses(t *testing.T) {
	f := NewFakeClient()
	f.SetAnswer("Custom", "custom answer")

	raw, err := f.GenerateJSON(WithPhase(context.Background(), "Custom"), "p", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"final","final":{"answer":"custom answer"}}`, string(raw))

	raw, err = f.GenerateJSON(WithPhase(context.Background(), "Custom/reasoning"), "p", nil)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"plan"`)

	raw, err = f.GenerateJSON(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Fake answer for unknown.")
	assert.Len(t, f.Calls(), 3)
}

func TestPhaseFrom_Default(t *testing.T) {
	assert.Equal(t, "unknown", PhaseFrom(context.Background()))
}

func TestComposePrompt(t *testing.T) {
	assert.Equal(t, "p", composePrompt("p", nil))
	assert.Contains(t, composePrompt("p", map[string]int{"a": 1}), "[INPUT JSON]")
}
