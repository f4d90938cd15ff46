package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/foodgram/backend/config"
)

// Applies the SQL files under migrations/ in filename order, tracking
// applied files in schema_migrations so reruns are safe.
func main() {
	dir := flag.String("dir", "migrations", "directory containing .sql migration files")
	flag.Parse()

	db, err := sql.Open("postgres", databaseURL())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		log.Fatalf("Failed to create schema_migrations: %v", err)
	}

	files, err := migrationFiles(*dir)
	if err != nil {
		log.Fatalf("Failed to list migrations: %v", err)
	}

	for _, file := range files {
		applied, err := isApplied(db, filepath.Base(file))
		if err != nil {
			log.Fatalf("Failed to check %s: %v", file, err)
		}
		if applied {
			continue
		}
		if err := apply(db, file); err != nil {
			log.Fatalf("Migration %s failed: %v", file, err)
		}
		log.Printf("Applied %s", filepath.Base(file))
	}
	log.Println("Migrations complete")
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func isApplied(db *sql.DB, filename string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE filename = $1`, filename).Scan(&count)
	return count > 0, err
}

func apply(db *sql.DB, file string) error {
	contents, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(contents)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, filepath.Base(file)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
