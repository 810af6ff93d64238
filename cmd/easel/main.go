package main

import (
	"log"
	"os"

	"github.com/easelhq/easel/internal/api"
	"github.com/easelhq/easel/internal/config"
	"github.com/easelhq/easel/internal/store"
	"github.com/easelhq/easel/internal/workload"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("easel: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"deadline_window", cfg.DeadlineWindow.String(),
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	eng := workload.NewEngine(db, logger, cfg.DeadlineWindow)

	srv := api.NewServer(cfg.ListenAddr, db, eng, logger)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
