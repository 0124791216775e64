package main

import (
	"fmt"
	"log"

	"qbank/internal/app"
	"qbank/internal/audit"
	"qbank/internal/authz"
	"qbank/internal/config"
	"qbank/internal/db"
	httpserver "qbank/internal/http"
	"qbank/internal/identity"
	"qbank/internal/seed"
	"qbank/internal/service"
	"qbank/internal/store"
	"qbank/internal/workflow"
)

func main() {
	cfg := config.Load()

	logger := app.NewLogger(cfg.AppEnv)
	defer logger.Sync()

	gdb := db.Connect(cfg.DSN)
	db.AutoMigrate(gdb)

	if cfg.SeedOnStart {
		if err := seed.FirstSetup(gdb); err != nil {
			log.Fatalf("❌ Seed failed: %v", err)
		}
	}

	st := store.NewGormStore(gdb)
	sink := audit.NewDBSink(gdb, logger)
	resolver := authz.NewResolver(st, logger)
	ids := identity.NewService(st)
	questions := service.NewQuestionService(st, resolver, sink, logger, cfg.DefaultTenant)
	wf := workflow.New(st, sink, logger)

	r := httpserver.NewRouter(httpserver.Deps{
		DB:        gdb,
		Store:     st,
		Identity:  ids,
		Questions: questions,
		Workflow:  wf,
		JWTSecret: cfg.JWTSecret,
	})

	log.Printf("🚀 Server listening on :%s\n", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
}
