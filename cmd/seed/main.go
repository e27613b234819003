package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/croptrack/croptrack/config"
	"github.com/croptrack/croptrack/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	username := "demo"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO users (username, password_hash, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET updated_at = now()
		RETURNING id
	`, username, hash, "").Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%d username=%s password=%s\n", id, username, password)

	crops := []struct {
		name, plantingDate, status string
	}{
		{"Tomato", "2024-04-01", "planted"},
		{"Maize", "2024-03-15", "growing"},
		{"Wheat", "2023-10-20", "harvested"},
	}
	for _, c := range crops {
		if _, err := db.Exec(`
			INSERT INTO crops (user_id, name, planting_date, status)
			VALUES ($1, $2, $3, $4)
		`, id, c.name, c.plantingDate, c.status); err != nil {
			log.Fatalf("failed to seed crop %s: %v", c.name, err)
		}
	}
	fmt.Printf("seeded %d crops for user %d\n", len(crops), id)
}
