package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tripplanner/internal/gateway/ui"
	"tripplanner/internal/session"
)

const chatWSWriteWait = 10 * time.Second

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type chatWSInbound struct {
	Type     string `json:"type"`
	Question string `json:"question,omitempty"`
}

type chatWSOutbound struct {
	Type     string `json:"type"`
	Index    int    `json:"index,omitempty"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	HTML     string `json:"html,omitempty"`
	Message  string `json:"message,omitempty"`
}

// HandleChatWS answers follow-up questions over a websocket bound to the
// caller's session. Each "ask" produces a "thinking" message followed by
// an "answer" or an "error". Answers run off the read loop so pings and
// pongs keep flowing; one question is answered at a time.
func (h *Handler) HandleChatWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Lookup(r)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	log := h.log.With(zap.String("session", sess.ID))

	pongWait := h.ChatPongWait
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Warn("chat ws set read deadline failed", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writeCh := make(chan chatWSOutbound, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(pongWait * 9 / 10)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
	push := func(out chatWSOutbound) {
		select {
		case writeCh <- out:
		case <-ctx.Done():
		}
	}

	// busy holds a token while a question is being answered.
	busy := make(chan struct{}, 1)
	var answering sync.WaitGroup
	ask := func(question string) {
		defer answering.Done()
		out := h.chatAnswer(ctx, log, sess, question)
		// Free the slot before the reply goes out so a follow-up sent
		// right after it is accepted.
		<-busy
		push(out)
	}

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			answering.Wait()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			push(chatWSOutbound{Type: "pong"})
		case "ask":
			question := strings.TrimSpace(in.Question)
			if question == "" {
				push(chatWSOutbound{Type: "error", Message: ui.MsgAskFailed + "question is empty"})
				continue
			}
			select {
			case busy <- struct{}{}:
			default:
				push(chatWSOutbound{Type: "error", Question: question, Message: ui.MsgAskBusy})
				continue
			}
			push(chatWSOutbound{Type: "thinking", Question: question})
			answering.Add(1)
			go ask(question)
		default:
			push(chatWSOutbound{Type: "error", Message: "unknown message type"})
		}
	}
}

// chatAnswer answers one question and builds the "answer" or "error" reply.
func (h *Handler) chatAnswer(ctx context.Context, log *zap.Logger, sess *session.Session, question string) chatWSOutbound {
	answer, idx, err := h.answer(ctx, sess, question)
	if err != nil {
		msg := ui.MsgAskFailed + err.Error()
		switch {
		case errors.Is(err, session.ErrNoPlan):
			msg = ui.MsgPlanFirst
		case errors.Is(err, session.ErrPlanChanged):
			msg = ui.MsgPlanChanged
		}
		return chatWSOutbound{Type: "error", Question: question, Message: msg}
	}
	html, err := h.pages.Markdown(answer)
	if err != nil {
		log.Warn("render answer failed", zap.Error(err))
	}
	return chatWSOutbound{Type: "answer", Index: idx, Question: question, Answer: answer, HTML: string(html)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
