package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"guildhall/internal/agent"
	"guildhall/internal/expedition"
	"guildhall/internal/game"
	"guildhall/internal/guild"
	"guildhall/internal/mission"
	"guildhall/internal/telemetry"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	app     *App
	clock   *game.FakeClock
	handler http.Handler
	t       *testing.T
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	agents := agent.NewMemoryRepo()
	guilds := guild.NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, guilds.Seed(ctx, []guild.Guild{{ID: "g1", Name: "Test Guild"}}))
	require.NoError(t, agents.Seed(ctx, []agent.Agent{
		{ID: "a1", Name: "Ash", Level: 4, GuildID: "g1"},
		{ID: "a2", Name: "Bryn", Level: 6, GuildID: "g1"},
	}))

	clock := game.NewFakeClock(0)
	hub := NewEventHub(log.New(io.Discard, "", 0))
	engine := &game.Engine{
		Board:             mission.NewBoard(),
		Generator:         mission.NewGenerator(rand.New(rand.NewSource(7))),
		Scheduler:         expedition.NewScheduler(rand.New(rand.NewSource(7))),
		Agents:            agents,
		Guilds:            guilds,
		Telemetry:         telemetry.NewMemoryRepository(),
		Clock:             clock,
		CleanupDaysToKeep: 1,
		Notify:            hub.Broadcast,
	}

	app := &App{Engine: engine, Telemetry: engine.Telemetry, Events: hub, BootNow: time.Now()}

	mux := http.NewServeMux()
	rr := &RouteRegistry{}
	RegisterAPIRoutes(mux, rr, app)
	RegisterAdminRoutes(mux, rr)

	return &testApp{app: app, clock: clock, handler: mux, t: t}
}

func (a *testApp) request(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	a := newTestApp(t)
	rec := a.request(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, true, body["ok"])
}

func TestMissionEndpoints(t *testing.T) {
	a := newTestApp(t)
	a.app.Engine.RefillTarget = 2
	a.app.Engine.Scheduler.AutoAssignMissions = false

	_, err := a.app.Engine.Tick(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.NoError(t, err)

	rec := a.request(http.MethodGet, "/api/missions?status=available", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	missions := decodeJSON[[]mission.Mission](t, rec)
	require.Len(t, missions, 2)

	rec = a.request(http.MethodGet, "/api/missions/"+string(missions[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.request(http.MethodGet, "/api/missions/"+string(missions[0].ID)+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, "available", progress["status"])

	rec = a.request(http.MethodGet, "/api/missions/mission_999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTickAndExpeditionEndpoints(t *testing.T) {
	a := newTestApp(t)
	a.app.Engine.RefillTarget = 1

	rec := a.request(http.MethodPost, "/api/tick", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.request(http.MethodGet, "/api/expeditions/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decodeJSON[[]expedition.Expedition](t, rec)
	require.NotEmpty(t, active)

	rec = a.request(http.MethodPost, "/api/expeditions/cancel", map[string]string{"id": string(active[0].ID)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.request(http.MethodPost, "/api/expeditions/cancel", map[string]string{"id": string(active[0].ID)})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.request(http.MethodPost, "/api/expeditions/cancel", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpeedEndpoint(t *testing.T) {
	a := newTestApp(t)

	rec := a.request(http.MethodPost, "/api/speed", map[string]float64{"speed": 2.5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.5, a.app.Engine.SimulationSpeed())

	rec = a.request(http.MethodPost, "/api/speed", map[string]float64{"speed": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.request(http.MethodPost, "/api/speed", map[string]string{"speed": "fast"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAgentAndGuildEndpoints(t *testing.T) {
	a := newTestApp(t)

	rec := a.request(http.MethodGet, "/api/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	agents := decodeJSON[[]agent.Agent](t, rec)
	assert.Len(t, agents, 2)

	rec = a.request(http.MethodGet, "/api/agents/a1/missions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.request(http.MethodGet, "/api/agents/nobody/missions", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.request(http.MethodGet, "/api/guilds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	guilds := decodeJSON[[]guild.Guild](t, rec)
	assert.Len(t, guilds, 1)
}

func TestStatsEndpoint(t *testing.T) {
	a := newTestApp(t)
	a.app.Engine.RefillTarget = 1
	a.app.Engine.Scheduler.AutoAssignMissions = false

	_, err := a.app.Engine.Tick(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.NoError(t, err)

	rec := a.request(http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeJSON[telemetry.Stats](t, rec)
	assert.Equal(t, 1, stats.Ticks)
	assert.Equal(t, 1, stats.MissionsPosted)
}

func TestRoutesJSON(t *testing.T) {
	a := newTestApp(t)
	rec := a.request(http.MethodGet, "/_/admin/routes.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	routes := decodeJSON[[]RouteDoc](t, rec)
	assert.NotEmpty(t, routes)
}

func TestEventWebsocketFeed(t *testing.T) {
	a := newTestApp(t)

	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for the subscription to register before broadcasting.
	require.Eventually(t, func() bool {
		return a.app.Events.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	sent := expedition.Event{
		Type:         expedition.EventExpeditionStarted,
		Timestamp:    42,
		ExpeditionID: "exp_test",
		Data:         map[string]string{"mission_id": "mission_1"},
	}
	a.app.Events.Broadcast(sent)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got expedition.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sent.Type, got.Type)
	assert.Equal(t, sent.ExpeditionID, got.ExpeditionID)
	assert.Equal(t, "mission_1", got.Data["mission_id"])
}
