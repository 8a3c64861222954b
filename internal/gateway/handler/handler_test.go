package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripplanner/internal/export"
	artifactrepo "tripplanner/internal/gateway/repository/artifact"
	"tripplanner/internal/gateway/service/plan"
	"tripplanner/internal/gateway/ui"
	"tripplanner/internal/llm"
	"tripplanner/internal/session"
	"tripplanner/internal/trip"
)

var fixedNow = time.Date(2024, 6, 2, 14, 30, 5, 0, time.UTC)

type testEnv struct {
	mux      *http.ServeMux
	sessions *session.Store
	handler  *Handler
}

func newTestEnv(t *testing.T, planner Planner) *testEnv {
	t.Helper()
	sessions := session.NewStore(16, time.Hour)
	sessions.SetClock(func() time.Time { return fixedNow })
	pages, err := ui.NewRenderer()
	require.NoError(t, err)
	h := New(planner, sessions, plan.New(artifactrepo.NewMemoryStore(), zap.NewNop()), pages, zap.NewNop())
	mux := http.NewServeMux()
	h.Register(mux)
	return &testEnv{mux: mux, sessions: sessions, handler: h}
}

func fakePlanner() *trip.Planner {
	return trip.NewPlanner(llm.NewFakeClient(), nil, zap.NewNop())
}

// do sends a request carrying cookie (if any) and returns the recorder.
func (e *testEnv) do(method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) newSession(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do(http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func validForm() url.Values {
	return url.Values{
		"travel_type": {"Cultural"},
		"interests":   {"History", "Food"},
		"season":      {"Fall"},
		"duration":    {"5"},
		"budget":      {"$1000-$2000"},
	}
}

func TestIndex_BeforePlan(t *testing.T) {
	env := newTestEnv(t, fakePlanner())
	rec := env.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ui.MsgPlanFirst)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestPlanFlow(t *testing.T) {
	env := newTestEnv(t, fakePlanner())
	cookie := env.newSession(t)

	rec := env.do(http.MethodPost, "/plan", validForm(), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/?planned=1", rec.Header().Get("Location"))

	rec = env.do(http.MethodGet, "/?planned=1", nil, cookie)
	body := rec.Body.String()
	assert.Contains(t, body, ui.MsgPlanSuccess)
	assert.Contains(t, body, "<h2>City Selection</h2>")
	assert.Contains(t, body, "<h2>Budget Planning</h2>")
	assert.Contains(t, body, `value="History" checked`)
	assert.NotContains(t, body, ui.MsgPlanFirst)

	rec = env.do(http.MethodGet, "/download/itinerary.md", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Trip_Itinerary_20240602_143005.md"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "## City Selection\n\n- **Kyoto**"))
	assert.Contains(t, rec.Body.String(), "\n\n## City Research\n\n")

	rec = env.do(http.MethodGet, "/download/itinerary.docx", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	rec = env.do(http.MethodGet, "/download/itinerary.pdf", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = env.do(http.MethodGet, "/download/itinerary.txt", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlan_InvalidInput(t *testing.T) {
	env := newTestEnv(t, fakePlanner())
	cookie := env.newSession(t)
	form := validForm()
	form.Set("duration", "20")

	rec := env.do(http.MethodPost, "/plan", form, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), ui.MsgPlanFailed)
	assert.Contains(t, rec.Body.String(), "between 1 and 14")

	form.Set("duration", "many")
	rec = env.do(http.MethodPost, "/plan", form, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingPlanner struct{}

func (failingPlanner) Plan(context.Context, trip.TripInputs) (trip.TripResult, error) {
	return trip.TripResult{}, errors.New("quota exceeded")
}

func (failingPlanner) Ask(context.Context, string, string) (string, error) {
	return "", errors.New("model unavailable")
}

func TestPlan_PipelineError(t *testing.T) {
	env := newTestEnv(t, failingPlanner{})
	cookie := env.newSession(t)
	rec := env.do(http.MethodPost, "/plan", validForm(), cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Trip planning failed: quota exceeded")

	rec = env.do(http.MethodGet, "/download/itinerary.md", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlan_Busy(t *testing.T) {
	env := newTestEnv(t, fakePlanner())
	cookie := env.newSession(t)
	sess, ok := env.sessions.Get(cookie.Value)
	require.True(t, ok)
	require.True(t, sess.TryBegin())
	defer sess.End()

	rec := env.do(http.MethodPost, "/plan", validForm(), cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), ui.MsgBusy)
}

func TestAsk(t *testing.T) {
	env := newTestEnv(t, fakePlanner())
	cookie := env.newSession(t)

	rec := env.do(http.MethodPost, "/ask", url.Values{"question": {"What on day 1?"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), ui.MsgPlanFirst)

	require.Equal(t, http.StatusSeeOther, env.do(http.MethodPost, "/plan", validForm(), cookie).Code)

	rec = env.do(http.MethodPost, "/ask", url.Values{"question": {"What on day 1?"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = env.do(http.MethodGet, "/", nil, cookie)
	assert.Contains(t, rec.Body.String(), "Q1: What on day 1?")

	rec = env.do(http.MethodGet, "/download/chat.md", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Trip_QA_Chat_20240602_143005.md"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "**Q1:** What on day 1?\n**A1:** On day 1"))

	// a new plan clears the chat
	require.Equal(t, http.StatusSeeOther, env.do(http.MethodPost, "/plan", validForm(), cookie).Code)
	rec = env.do(http.MethodGet, "/download/chat.md", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAsk_PlannerError(t *testing.T) {
	env := newTestEnv(t, failingPlanner{})
	cookie := env.newSession(t)
	sess, _ := env.sessions.Get(cookie.Value)
	sess.SetPlan(trip.TripResult{}, "## Plan\n\nDay 1", "", fixedNow)

	rec := env.do(http.MethodPost, "/ask", url.Values{"question": {"Where?"}}, cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not get an answer: model unavailable")
	assert.Empty(t, sess.Snapshot().Chat)
}

func TestPlanArchive(t *testing.T) {
	env := newTestEnv(t, fakePlanner())
	cookie := env.newSession(t)
	require.Equal(t, http.StatusSeeOther, env.do(http.MethodPost, "/plan", validForm(), cookie).Code)

	sess, _ := env.sessions.Get(cookie.Value)
	planID := sess.Snapshot().PlanID
	require.NotEmpty(t, planID)

	rec := env.do(http.MethodGet, "/plans/"+planID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum planSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, planID, sum.ID)
	assert.False(t, sum.CreatedAt.IsZero())
	assert.Equal(t, "Cultural", sum.Inputs.TravelType)
	assert.Equal(t, []string{"History", "Food"}, sum.Inputs.Interests)
	assert.Equal(t, []string{"City Selection", "City Research", "Itinerary Creation", "Budget Planning"}, sum.Sections)
	assert.Equal(t, []string{"itinerary.docx", "itinerary.md", "itinerary.pdf", "plan.json"}, sum.Files)

	rec = env.do(http.MethodGet, "/plans/"+planID+"/itinerary.md", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sess.Snapshot().FullText, rec.Body.String())

	rec = env.do(http.MethodGet, "/plans/"+planID+"/missing.md", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodGet, "/plans/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, fakePlanner())
	rec := env.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestChatWS(t *testing.T) {
	env := newTestEnv(t, fakePlanner())
	srv := httptest.NewServer(env.mux)
	defer srv.Close()

	cookie := env.newSession(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	header := http.Header{}
	header.Add("Cookie", (&http.Cookie{Name: cookie.Name, Value: cookie.Value}).String())

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var out chatWSOutbound
	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "ask", Question: "Day 1?"}))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "thinking", out.Type)
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "error", out.Type)
	assert.Equal(t, ui.MsgPlanFirst, out.Message)

	sess, _ := env.sessions.Get(cookie.Value)
	sess.SetPlan(trip.TripResult{}, "## Plan\n\nDay 1: Fushimi Inari", "", fixedNow)

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "ping"}))
	out = chatWSOutbound{}
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "pong", out.Type)

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "ask", Question: "Day 1?"}))
	out = chatWSOutbound{}
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "thinking", out.Type)
	out = chatWSOutbound{}
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "answer", out.Type)
	assert.Equal(t, 1, out.Index)
	assert.Contains(t, out.Answer, "Fushimi Inari")
	assert.Contains(t, out.HTML, "<p>")

	chat := sess.Snapshot().Chat
	require.Len(t, chat, 1)
	assert.Equal(t, export.QA{Question: "Day 1?", Answer: out.Answer}, chat[0])
}

// gatedPlanner holds every answer until release is closed.
type gatedPlanner struct {
	started chan struct{}
	release chan struct{}
}

func newGatedPlanner() *gatedPlanner {
	return &gatedPlanner{started: make(chan struct{}, 4), release: make(chan struct{})}
}

func (p *gatedPlanner) Plan(context.Context, trip.TripInputs) (trip.TripResult, error) {
	return trip.TripResult{}, errors.New("not used")
}

func (p *gatedPlanner) Ask(ctx context.Context, _, _ string) (string, error) {
	p.started <- struct{}{}
	select {
	case <-p.release:
		return "On day 1 you hike Fushimi Inari.", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func dialChat(t *testing.T, srv *httptest.Server, cookie *http.Cookie) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Add("Cookie", (&http.Cookie{Name: cookie.Name, Value: cookie.Value}).String())
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat", header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readChat(t *testing.T, conn *websocket.Conn) chatWSOutbound {
	t.Helper()
	var out chatWSOutbound
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestChatWS_StaysAliveWhileAnswering(t *testing.T) {
	planner := newGatedPlanner()
	env := newTestEnv(t, planner)
	env.handler.ChatPongWait = 500 * time.Millisecond
	srv := httptest.NewServer(env.mux)
	defer srv.Close()

	cookie := env.newSession(t)
	sess, _ := env.sessions.Get(cookie.Value)
	sess.SetPlan(trip.TripResult{}, "## Plan\n\nDay 1: Fushimi Inari", "", fixedNow)
	conn := dialChat(t, srv, cookie)

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "ask", Question: "Day 1?"}))
	assert.Equal(t, "thinking", readChat(t, conn).Type)
	<-planner.started

	// the read loop still serves messages while the answer is pending
	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "ask", Question: "Day 2?"}))
	out := readChat(t, conn)
	assert.Equal(t, "error", out.Type)
	assert.Equal(t, ui.MsgAskBusy, out.Message)
	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "ping"}))
	assert.Equal(t, "pong", readChat(t, conn).Type)

	// outlive several pong windows; the client answers server pings while reading
	time.AfterFunc(3*env.handler.ChatPongWait, func() { close(planner.release) })
	out = readChat(t, conn)
	assert.Equal(t, "answer", out.Type)
	assert.Equal(t, 1, out.Index)
	assert.Contains(t, out.Answer, "Fushimi Inari")

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "ask", Question: "Day 2?"}))
	assert.Equal(t, "thinking", readChat(t, conn).Type)
	assert.Equal(t, "answer", readChat(t, conn).Type)
	assert.Len(t, sess.Snapshot().Chat, 2)
}

func TestChatWS_DropsAnswerForReplacedPlan(t *testing.T) {
	planner := newGatedPlanner()
	env := newTestEnv(t, planner)
	srv := httptest.NewServer(env.mux)
	defer srv.Close()

	cookie := env.newSession(t)
	sess, _ := env.sessions.Get(cookie.Value)
	sess.SetPlan(trip.TripResult{}, "## Plan\n\nDay 1: Kyoto", "plan-1", fixedNow)
	conn := dialChat(t, srv, cookie)

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "ask", Question: "Day 1?"}))
	assert.Equal(t, "thinking", readChat(t, conn).Type)
	<-planner.started

	sess.SetPlan(trip.TripResult{}, "## Plan\n\nDay 1: Osaka", "plan-2", fixedNow)
	close(planner.release)

	out := readChat(t, conn)
	assert.Equal(t, "error", out.Type)
	assert.Equal(t, ui.MsgPlanChanged, out.Message)
	assert.Empty(t, sess.Snapshot().Chat)
	assert.Equal(t, "plan-2", sess.Snapshot().PlanID)
}

func TestAsk_PlanReplacedWhileAnswering(t *testing.T) {
	planner := newGatedPlanner()
	env := newTestEnv(t, planner)
	cookie := env.newSession(t)
	sess, _ := env.sessions.Get(cookie.Value)
	sess.SetPlan(trip.TripResult{}, "## Plan\n\nDay 1: Kyoto", "plan-1", fixedNow)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- env.do(http.MethodPost, "/ask", url.Values{"question": {"Day 1?"}}, cookie)
	}()
	<-planner.started
	sess.SetPlan(trip.TripResult{}, "## Plan\n\nDay 1: Osaka", "plan-2", fixedNow)
	close(planner.release)

	rec := <-done
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), ui.MsgPlanChanged)
	assert.Empty(t, sess.Snapshot().Chat)
}

func TestChatWS_RequiresSession(t *testing.T) {
	env := newTestEnv(t, fakePlanner())
	rec := env.do(http.MethodGet, "/ws/chat", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
