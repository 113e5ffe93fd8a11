package server

import (
	"encoding/json"
	"net/http"
	"time"

	"guildhall/internal/expedition"
	"guildhall/internal/game"
	"guildhall/internal/mission"
	"guildhall/internal/telemetry"
)

// App holds the in-memory state for the server.
// This makes it obvious what the handlers depend on.
type App struct {
	Engine    *game.Engine
	Telemetry telemetry.Repository
	Events    *EventHub

	BootNow time.Time
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func RegisterAPIRoutes(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	engine := app.Engine

	Handle(mux, rr, "GET /healthz", "Liveness check", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"ok":      true,
			"service": "guildhall",
			"uptime":  time.Since(app.BootNow).Seconds(),
		})
	})

	// Missions
	Handle(mux, rr, "GET /api/missions", "List missions, optionally filtered by ?status=", "", func(w http.ResponseWriter, r *http.Request) {
		status := mission.Status(r.URL.Query().Get("status"))
		writeJSON(w, engine.MissionsByStatus(status))
	})

	Handle(mux, rr, "GET /api/missions/{id}", "Get one mission", "", func(w http.ResponseWriter, r *http.Request) {
		m, ok := engine.Board.Get(mission.ID(r.PathValue("id")))
		if !ok {
			http.Error(w, "mission not found", 404)
			return
		}
		writeJSON(w, m)
	})

	Handle(mux, rr, "GET /api/missions/{id}/progress", "Get a mission's objective progress", "", func(w http.ResponseWriter, r *http.Request) {
		m, ok := engine.Board.Get(mission.ID(r.PathValue("id")))
		if !ok {
			http.Error(w, "mission not found", 404)
			return
		}
		writeJSON(w, map[string]any{
			"mission_id": m.ID,
			"status":     m.Status,
			"progress":   m.ProgressPercent(),
			"objectives": m.Objectives,
		})
	})

	// Agents
	Handle(mux, rr, "GET /api/agents", "List agents", "", func(w http.ResponseWriter, r *http.Request) {
		as, err := engine.Agents.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, as)
	})

	Handle(mux, rr, "GET /api/agents/{id}/missions", "Get an agent's mission record", "", func(w http.ResponseWriter, r *http.Request) {
		id := mission.AgentID(r.PathValue("id"))
		if _, ok, err := engine.Agents.Get(r.Context(), id); err != nil {
			http.Error(w, err.Error(), 500)
			return
		} else if !ok {
			http.Error(w, "agent not found", 404)
			return
		}
		tr, _ := engine.TrackerSnapshot(id)
		writeJSON(w, tr)
	})

	// Guilds
	Handle(mux, rr, "GET /api/guilds", "List guilds", "", func(w http.ResponseWriter, r *http.Request) {
		gs, err := engine.Guilds.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, gs)
	})

	// Expeditions
	Handle(mux, rr, "GET /api/expeditions/active", "List running expeditions", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, engine.ActiveExpeditions())
	})

	Handle(mux, rr, "GET /api/expeditions/completed", "List recently resolved expeditions", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, engine.CompletedExpeditions())
	})

	Handle(mux, rr, "POST /api/expeditions/cancel", "Cancel a running expedition", `{"id":"exp_..."}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", 400)
			return
		}
		if body.ID == "" {
			http.Error(w, "id is required", 400)
			return
		}
		if !engine.CancelExpedition(r.Context(), expedition.ID(body.ID)) {
			http.Error(w, "expedition not found", 404)
			return
		}
		writeJSON(w, map[string]string{"status": "cancelled"})
	})

	// Simulation control
	Handle(mux, rr, "POST /api/tick", "Run one simulation tick now", `{}`, func(w http.ResponseWriter, r *http.Request) {
		res, err := engine.Tick(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, res)
	})

	Handle(mux, rr, "POST /api/speed", "Set the simulation speed multiplier", `{"speed":2}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Speed *float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json body", 400)
			return
		}
		if body.Speed == nil || *body.Speed < 0 {
			http.Error(w, "speed must be a non-negative number", 400)
			return
		}
		engine.SetSimulationSpeed(*body.Speed)
		writeJSON(w, map[string]float64{"speed": engine.SimulationSpeed()})
	})

	// Telemetry
	Handle(mux, rr, "GET /api/stats", "Aggregate simulation statistics", "", func(w http.ResponseWriter, r *http.Request) {
		events, err := app.Telemetry.GetEvents(time.Time{}, nil)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		stats, err := telemetry.CalculateStats(events, app.BootNow)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, stats)
	})

	// Live event feed
	if app.Events != nil {
		Handle(mux, rr, "GET /api/events/ws", "Websocket feed of scheduler events", "", app.Events.ServeHTTP)
	}
}
