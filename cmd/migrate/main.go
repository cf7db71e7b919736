package main

import (
	"flag"
	"fmt"
	"log"

	"pomodoro/desktop/internal/config"
	"pomodoro/desktop/internal/db"
	"pomodoro/desktop/migrations"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	status := flag.Bool("status", false, "list pending migrations without applying them")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if *status {
		pending, err := db.PendingMigrations(database, migrations.FS)
		if err != nil {
			log.Fatalf("check migrations: %v", err)
		}
		if len(pending) == 0 {
			fmt.Println("database is up to date")
			return
		}
		for _, name := range pending {
			fmt.Println("pending:", name)
		}
		return
	}

	if err := db.RunMigrations(database, migrations.FS); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	log.Printf("migrations applied to %s", cfg.DBPath)
}
