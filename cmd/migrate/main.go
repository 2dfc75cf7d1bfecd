package main

import (
	"log"
	"os"

	"codeframe-be/internal/model"
	"codeframe-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Answer{},
		&model.AnswerEmbedding{},
		&model.GenerationJob{},
		&model.Cluster{},
		&model.HierarchyNode{},
		&model.CostLedgerEntry{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Supporting Indexes
	log.Println("Step 3: Creating Supporting Indexes...")

	postMigrationSQL := []string{
		// ANN index over answer embeddings for future similarity lookups
		`CREATE INDEX IF NOT EXISTS idx_answer_embeddings_vector
		 ON answer_embeddings USING hnsw (vector vector_cosine_ops);`,

		// Hierarchy reads always scope by job
		`CREATE INDEX IF NOT EXISTS idx_hierarchy_nodes_job_kind
		 ON hierarchy_nodes (job_id, kind);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed via GORM.")
}
