package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/adicipta/procure-api/internal/config"
)

const migrationsDir = "./migrations"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("pinging database: %v", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("setting dialect: %v", err)
	}

	command := os.Args[1]
	switch command {
	case "up":
		err = goose.Up(db, migrationsDir)
	case "down":
		err = goose.Down(db, migrationsDir)
	case "status":
		err = goose.Status(db, migrationsDir)
	case "version":
		err = goose.Version(db, migrationsDir)
	case "create":
		if len(os.Args) < 3 {
			log.Fatal("create requires a migration name")
		}
		err = goose.Create(db, migrationsDir, os.Args[2], "sql")
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("migration %s failed: %v", command, err)
	}
}

func usage() {
	fmt.Println("usage: migrate <up|down|status|version|create NAME>")
}
