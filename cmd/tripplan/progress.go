package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// progressHook prints each agent step once, as the crew reaches it.
type progressHook struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func newProgressHook(w io.Writer) *progressHook {
	if w == nil {
		w = io.Discard
	}
	return &progressHook{w: w}
}

func (h *progressHook) Before(_ context.Context, phase, _ string, _ any) {
	step := phase
	if i := strings.IndexByte(phase, '/'); i >= 0 {
		step = phase[:i]
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if step == h.last {
		return
	}
	h.last = step
	fmt.Fprintf(h.w, "==> %s\n", step)
}

func (h *progressHook) After(_ context.Context, phase string, _ json.RawMessage, err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.w, "    %s failed: %v\n", phase, err)
}
