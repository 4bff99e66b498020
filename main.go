package main

import (
	"log"

	"fleet-server/confs"
	"fleet-server/db"
	"fleet-server/server"
)

func main() {
	// load config
	err := confs.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	settings := confs.NewSettings()

	// connect to database Postgres
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// run server
	srv := server.NewServer(database, settings)
	srv.Start()
}
