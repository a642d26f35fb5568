package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/missions"
	"github.com/aretw0/missions/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	tracker *missions.Tracker
	streams *StreamManager
	handler http.Handler
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	streams := NewStreamManager(nil)
	tracker, err := missions.New(missions.WithLifecycleHooks(streams.Hooks()))
	require.NoError(t, err)
	opts = append([]Option{WithStreams(streams)}, opts...)
	return &fixture{
		tracker: tracker,
		streams: streams,
		handler: NewHandler(tracker, opts...),
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (f *fixture) create(t *testing.T, title string) Mission {
	t.Helper()
	rr := f.do(t, "POST", "/missions", CreateMissionRequest{Title: title})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[Mission](t, rr)
}

func TestCreateMission(t *testing.T) {
	f := newFixture(t)
	desc := "  Check the logs "

	rr := f.do(t, "POST", "/missions", CreateMissionRequest{Title: " Investigate Incident ", Description: &desc})
	require.Equal(t, http.StatusCreated, rr.Code)

	m := decodeBody[Mission](t, rr)
	assert.Equal(t, "Investigate Incident", m.Title)
	assert.Equal(t, "Check the logs", m.Description)
	assert.Equal(t, "Created", m.State)
	assert.Equal(t, "Created", m.StateLabel)
	assert.Equal(t, m.Id[:8], m.ShortId)
	assert.Empty(t, m.History)
	assert.Equal(t, "/missions/"+m.Id, rr.Header().Get("Location"))
}

func TestCreateMission_Invalid(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "POST", "/missions", CreateMissionRequest{Title: "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, codeValidation, decodeBody[Error](t, rr).Code)

	rr = f.do(t, "POST", "/missions", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, codeInvalidRequest, decodeBody[Error](t, rr).Code)

	rr = f.do(t, "POST", "/missions", `{"title":"x","owner":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "unknown fields are rejected")

	list, err := f.tracker.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetMission(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "Lookup")

	rr := f.do(t, "GET", "/missions/"+created.Id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.Id, decodeBody[Mission](t, rr).Id)

	rr = f.do(t, "GET", "/missions/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, codeNotFound, decodeBody[Error](t, rr).Code)
}

func TestListMissions(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "A")
	b := f.create(t, "B")
	c := f.create(t, "C")

	_, err := f.tracker.Transition(context.Background(), b.Id, domain.TriggerAssign)
	require.NoError(t, err)

	rr := f.do(t, "GET", "/missions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	all := decodeBody[[]Mission](t, rr)
	require.Len(t, all, 3)
	assert.Equal(t, []string{a.Id, b.Id, c.Id}, []string{all[0].Id, all[1].Id, all[2].Id})

	rr = f.do(t, "GET", "/missions?state=Assigned", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assigned := decodeBody[[]Mission](t, rr)
	require.Len(t, assigned, 1)
	assert.Equal(t, b.Id, assigned[0].Id)

	rr = f.do(t, "GET", "/missions?state=in_progress", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[[]Mission](t, rr))

	rr = f.do(t, "GET", "/missions?state=Archived", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, codeUnknownState, decodeBody[Error](t, rr).Code)
}

func TestEmptyListIsArray(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "GET", "/missions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestApplyTransition(t *testing.T) {
	f := newFixture(t)
	m := f.create(t, "Investigate Incident")
	path := "/missions/" + m.Id + "/transitions"

	rr := f.do(t, "POST", path, TransitionRequest{Trigger: "assign"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decodeBody[Mission](t, rr)
	assert.Equal(t, "Assigned", got.State)
	require.Len(t, got.History, 1)
	assert.Equal(t, HistoryEntry{Trigger: "assign", From: "Created", To: "Assigned", At: got.History[0].At}, got.History[0])

	rr = f.do(t, "POST", path, TransitionRequest{Trigger: "SubmitReview"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	e := decodeBody[Error](t, rr)
	assert.Equal(t, codeIllegalTransition, e.Code)
	require.NotNil(t, e.State)
	require.NotNil(t, e.Trigger)
	assert.Equal(t, "Assigned", *e.State)
	assert.Equal(t, "submit_review", *e.Trigger)

	rr = f.do(t, "POST", path, TransitionRequest{Trigger: "teleport"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, codeUnknownTrigger, decodeBody[Error](t, rr).Code)

	rr = f.do(t, "POST", path, TransitionRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, codeInvalidRequest, decodeBody[Error](t, rr).Code)

	rr = f.do(t, "POST", "/missions/nope/transitions", TransitionRequest{Trigger: "assign"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	after, err := f.tracker.Get(context.Background(), m.Id)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAssigned, after.State, "rejections leave the mission untouched")
	assert.Len(t, after.History, 1)
}

func TestGetAvailableTriggers(t *testing.T) {
	f := newFixture(t)
	m := f.create(t, "Triggers")

	rr := f.do(t, "GET", "/missions/"+m.Id+"/triggers", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, TriggersResponse{State: "Created", Triggers: []string{"assign"}}, decodeBody[TriggersResponse](t, rr))

	ctx := context.Background()
	for _, tr := range []domain.Trigger{domain.TriggerAssign, domain.TriggerStart} {
		_, err := f.tracker.Transition(ctx, m.Id, tr)
		require.NoError(t, err)
	}
	rr = f.do(t, "GET", "/missions/"+m.Id+"/triggers", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.ElementsMatch(t, []string{"pause", "submit_review"}, decodeBody[TriggersResponse](t, rr).Triggers)

	rr = f.do(t, "GET", "/missions/missing/triggers", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetWorkflow(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "GET", "/workflow", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	wf := decodeBody[Workflow](t, rr)
	assert.Equal(t, "Created", wf.Initial)
	assert.Len(t, wf.States, 7)
	assert.Len(t, wf.Triggers, 7)
	assert.Len(t, wf.Rules, 7)
	assert.Contains(t, wf.Rules, Rule{Trigger: "resume", From: "OnHold", To: "InProgress"})
}

func TestGetWorkflowMermaid(t *testing.T) {
	f := newFixture(t)
	m := f.create(t, "Overlay")
	_, err := f.tracker.Transition(context.Background(), m.Id, domain.TriggerAssign)
	require.NoError(t, err)

	rr := f.do(t, "GET", "/workflow/mermaid", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "graph TD"))
	assert.NotContains(t, rr.Body.String(), "classDef")

	rr = f.do(t, "GET", "/workflow/mermaid?mission_id="+m.Id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "class Created visited;")
	assert.Contains(t, rr.Body.String(), "class Assigned current;")

	rr = f.do(t, "GET", "/workflow/mermaid?mission_id=missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetHealth(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rr)["status"])
}

func TestGetInfo(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "GET", "/info", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[map[string]string](t, rr)
	assert.Equal(t, "missions-http", resp["app"])
	assert.Equal(t, missions.Version, resp["version"])
	assert.Equal(t, "1.0.0", resp["api_version"])
}

func TestOpenAPISpec(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/missions/{id}/transitions"))

	f := newFixture(t)
	rr := f.do(t, "GET", "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "operationId: applyTransition")
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "OPTIONS", "/missions", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	f = newFixture(t, WithCORS(false))
	rr = f.do(t, "GET", "/health", nil)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	f := newFixture(t, WithMetrics("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	rr := f.do(t, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "test_total 1")
}

func readEvent(t *testing.T, lines <-chan string, event string) string {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed before %q", event)
			}
			if line != "event: "+event {
				continue
			}
			select {
			case data := <-lines:
				return strings.TrimPrefix(data, "data: ")
			case <-timeout:
				t.Fatalf("timed out waiting for %q data", event)
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", event)
		}
	}
}

func openStream(t *testing.T, srv *httptest.Server, query string) <-chan string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events"+query, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	t.Cleanup(func() { resp.Body.Close() })

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	t.Cleanup(srv.Close) // runs after the stream cleanups, which end the SSE handlers

	target := f.create(t, "Watched")
	other := f.create(t, "Other")

	all := openStream(t, srv, "")
	one := openStream(t, srv, "?mission_id="+target.Id)
	readEvent(t, all, "ping")
	readEvent(t, one, "ping")

	ctx := context.Background()
	_, err := f.tracker.Transition(ctx, other.Id, domain.TriggerAssign)
	require.NoError(t, err)
	_, err = f.tracker.Transition(ctx, target.Id, domain.TriggerAssign)
	require.NoError(t, err)

	var first domain.TransitionEvent
	require.NoError(t, json.Unmarshal([]byte(readEvent(t, all, string(domain.EventMissionTransitioned))), &first))
	assert.Equal(t, other.Id, first.MissionID)

	var filtered domain.TransitionEvent
	require.NoError(t, json.Unmarshal([]byte(readEvent(t, one, string(domain.EventMissionTransitioned))), &filtered))
	assert.Equal(t, target.Id, filtered.MissionID, "filtered stream skips other missions")
	assert.Equal(t, domain.StateAssigned, filtered.To)
}

func TestSubscribeEvents_UnknownMission(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "GET", "/events?mission_id=missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("m1")
	all, cancelAll := sm.Subscribe(allMissions)
	assert.Equal(t, 2, sm.Subscribers())

	sm.Broadcast("m2", StreamMessage{Event: "x", Data: "{}"})
	sm.Broadcast("m1", StreamMessage{Event: "y", Data: "{}"})

	assert.Equal(t, "y", (<-ch).Event)
	assert.Equal(t, "x", (<-all).Event)
	assert.Equal(t, "y", (<-all).Event)

	cancel()
	cancel()
	cancelAll()
	assert.Equal(t, 0, sm.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	// Full buffers drop instead of blocking.
	slow, cancelSlow := sm.Subscribe("m1")
	defer cancelSlow()
	for i := 0; i < 20; i++ {
		sm.Broadcast("m1", StreamMessage{Event: "z"})
	}
	assert.Len(t, slow, 10)
}
