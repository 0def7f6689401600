package main

import (
	"log"

	"marketboard/db"
	"marketboard/migration"
	_ "marketboard/migration/migrations"
	"marketboard/seed"
	"marketboard/server"
	"marketboard/setup"
)

func main() {
	cfg, err := setup.Load("setup.yaml")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	conn, err := db.Open(setup.LoadEnv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	if err := migration.RunAll(conn); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	adminPassword := setup.EnvOrDefault("ADMIN_PASSWORD", "change-me")
	if seed.IsEmpty(conn) {
		log.Println("seed: empty database, generating demo data")
		if err := seed.Run(conn, cfg.Economics, adminPassword, seed.DefaultOptions()); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	err = server.ListenAndServe(server.Deps{
		DB:            conn,
		Config:        cfg,
		JWTSecret:     []byte(setup.EnvOrDefault("JWT_SECRET", "dev-secret-do-not-use-in-prod")),
		AdminPassword: adminPassword,
	})
	if err != nil {
		log.Fatalf("server: %v", err)
	}
}
