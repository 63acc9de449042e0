package main

import (
	"log"

	"line-of-credit/internal/config"
	"line-of-credit/internal/infrastructure/db"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	gdb, err := db.OpenGorm(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("migrated line_of_credit_applications and transactions (%s)", cfg.DBDriver)
}
