package main

import (
	"github.com/sakura-arcade/gameserver/config"
	"github.com/sakura-arcade/gameserver/logger"
	"github.com/sakura-arcade/gameserver/monitor"
	"github.com/sakura-arcade/gameserver/persistence"
	"github.com/sakura-arcade/gameserver/room"
	"github.com/sakura-arcade/gameserver/server"
	"github.com/sakura-arcade/gameserver/services"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// The match archive is optional: without a database the server runs
	// fully in memory and finished games are simply not recorded.
	var store persistence.MatchStore
	if cfg.Database.Enabled {
		pg := cfg.Database.Postgres
		switch cfg.Database.Driver {
		case "pq":
			store, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		default:
			store, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		}
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Info("Match archive connected.")
	}
	matchService := services.NewMatchService(store)

	// Metrics endpoint
	mon := monitor.NewMonitor("sakura")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Room defaults come from config; admins adjust per room.
	defaults := room.DefaultSettings()
	if cfg.Game.BidSeconds > 0 {
		defaults.BidSeconds = cfg.Game.BidSeconds
	}
	if cfg.Game.PlaySeconds > 0 {
		defaults.PlaySeconds = cfg.Game.PlaySeconds
	}

	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, cfg.Server.RPCAddress, matchService, mon, defaults)

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
