package main

import (
	"fmt"
	"log"
	"os"

	"erp-bff/internal/config"
	"erp-bff/pkg/database"

	"github.com/joho/godotenv"
)

const schemaPath = "database/schema.sql"

var expectedTables = []string{"roles", "users", "user_roles"}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v\n", err)
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatalf("Invalid database configuration: %v", err)
	}
	if dbCfg.Password == "" {
		log.Fatal("DB_PASSWORD must be set")
	}

	fmt.Println("=== Setting Up Credential Store ===")

	db, err := database.Connect(dbCfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		log.Fatalf("Failed to read schema file: %v", err)
	}

	if _, err := db.Exec(string(schema)); err != nil {
		log.Fatalf("Failed to execute schema: %v", err)
	}
	fmt.Println("Schema executed")

	missing := 0
	for _, table := range expectedTables {
		exists, err := db.TableExists(table)
		switch {
		case err != nil:
			fmt.Printf("error checking table %q: %v\n", table, err)
			missing++
		case !exists:
			fmt.Printf("table %q NOT created\n", table)
			missing++
		default:
			fmt.Printf("table %q ok\n", table)
		}
	}

	if missing > 0 {
		os.Exit(1)
	}
	fmt.Println("=== Setup Complete ===")
}
