package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"time"

	"guildhall/internal/agent"
	"guildhall/internal/config"
	"guildhall/internal/expedition"
	"guildhall/internal/game"
	"guildhall/internal/guild"
	"guildhall/internal/mission"
	"guildhall/internal/server"
	"guildhall/internal/serverapp"
	"guildhall/internal/telemetry"
)

func main() {
	logger := log.Default()

	cfg, err := config.Load("guildhall_config.yml")
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	cfg = config.ApplyEnv(cfg)

	ctx := context.Background()
	app, err := SeedGame(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("seed game: %v", err)
	}

	handler, err := serverapp.NewHandler(serverapp.Options{
		App:    app,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("build server: %v", err)
	}

	go runTicker(ctx, app.Engine, cfg.Simulation.TickSeconds, logger)

	logger.Printf("guildhall listening on %s", cfg.Server.Addr)
	logger.Fatal(http.ListenAndServe(cfg.Server.Addr, handler))
}

func runTicker(ctx context.Context, engine *game.Engine, tickSeconds float64, logger *log.Logger) {
	ticker := time.NewTicker(time.Duration(tickSeconds * float64(time.Second)))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := engine.Tick(ctx); err != nil {
				logger.Printf("tick: %v", err)
			}
		}
	}
}

func SeedGame(ctx context.Context, cfg config.Config, logger *log.Logger) (*server.App, error) {
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	sched := expedition.NewScheduler(rng)
	sched.AutoAssignMissions = cfg.Simulation.AutoAssign
	sched.MaxConcurrent = cfg.Simulation.MaxConcurrentExpeditions
	sched.SetSimulationSpeed(cfg.Simulation.Speed)
	sched.SetPolicy(expedition.RiskPolicy{CasualtyChance: cfg.Balance.CasualtyChance})

	agents := agent.NewMemoryRepo()
	guilds := guild.NewMemoryRepo()

	if err := guilds.Seed(ctx, []guild.Guild{
		{ID: "g_emberfall", Name: "Emberfall Company", Resources: map[guild.Resource]int{
			guild.ResourceGold:     100,
			guild.ResourceSupplies: 50,
		}},
	}); err != nil {
		return nil, err
	}

	if err := agents.Seed(ctx, []agent.Agent{
		{ID: "a_kael", Name: "Kael", Level: 3, GuildID: "g_emberfall"},
		{ID: "a_mira", Name: "Mira", Level: 5, GuildID: "g_emberfall"},
		{ID: "a_orrin", Name: "Orrin", Level: 2, GuildID: "g_emberfall"},
		{ID: "a_sable", Name: "Sable", Level: 8, GuildID: "g_emberfall"},
	}); err != nil {
		return nil, err
	}

	hub := server.NewEventHub(logger)

	engine := &game.Engine{
		Board:             mission.NewBoard(),
		Generator:         mission.NewGenerator(rng),
		Scheduler:         sched,
		Agents:            agents,
		Guilds:            guilds,
		Telemetry:         telemetry.NewMemoryRepository(),
		Clock:             game.NewRealClock(),
		Logger:            logger,
		RefillTarget:      cfg.Board.RefillTarget,
		CleanupDaysToKeep: cfg.Board.CleanupDaysToKeep,
		OfflineThreshold:  cfg.Simulation.OfflineThresholdSeconds,
		Notify:            hub.Broadcast,
	}

	// Prime the board so the first clients see missions immediately.
	if _, err := engine.Tick(ctx); err != nil {
		return nil, err
	}

	return &server.App{
		Engine:    engine,
		Telemetry: engine.Telemetry,
		Events:    hub,
		BootNow:   time.Now(),
	}, nil
}
