package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type seedProduct struct {
	name  string
	code  string
	stock int64
	price string
	tax   string
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	products := []seedProduct{
		{"Pen", "PEN001", 100, "10.00", "5"},
		{"Notebook", "NOTE001", 50, "40.00", "12"},
		{"Water Bottle", "BOTT001", 30, "120.00", "18"},
	}
	for _, p := range products {
		if _, err := db.Exec(`
			INSERT INTO products (code, name, stock, unit_price, tax_rate_percent)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (code) DO NOTHING;
		`, p.code, p.name, p.stock, p.price, p.tax); err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.code, err)
		}
	}

	for _, face := range []int64{2000, 500, 200, 100, 50, 20, 10, 5, 2, 1} {
		if _, err := db.Exec(`
			INSERT INTO denominations (face_value, available_count)
			VALUES ($1, 10)
			ON CONFLICT (face_value) DO NOTHING;
		`, face); err != nil {
			log.Fatalf("Failed to seed denomination %d: %v", face, err)
		}
	}

	log.Println("Seed complete")
}
